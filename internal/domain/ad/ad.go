// Package ad defines the advertisement entity evaluated by a run.
package ad

import "fmt"

// Advertisement is the immutable input to an evaluation run.
type Advertisement struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// Validate checks the fields required before a run can start.
func (a *Advertisement) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ad id is required")
	}
	if a.Content == "" {
		return fmt.Errorf("ad %s: content is required", a.ID)
	}
	return nil
}
