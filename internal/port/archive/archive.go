// Package archive defines the port interface for durable score persistence.
// The scheduler only requires the score store's atomicity contract; the
// archive is a write-behind sink for offline analytics.
package archive

import (
	"context"

	"github.com/Strob0t/AdForge/internal/domain/score"
)

// Archive persists terminal records and assembled reports.
type Archive interface {
	SaveRecord(ctx context.Context, rec score.Record) error
	SaveReport(ctx context.Context, rep *score.Report) error
	ListRecordsByAd(ctx context.Context, adID string) ([]score.Record, error)
	GetReport(ctx context.Context, runID string) (*score.Report, error)
}
