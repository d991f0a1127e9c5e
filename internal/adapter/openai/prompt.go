package openai

import (
	"fmt"
	"strings"

	"github.com/Strob0t/AdForge/internal/domain/actor"
	"github.com/Strob0t/AdForge/internal/port/scorer"
)

// systemPrompt renders the actor persona into the model's system message.
func systemPrompt(a actor.Actor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a regional advertisement evaluation agent representing %s.\n\n", a.ID)
	b.WriteString("Your profile:\n")
	fmt.Fprintf(&b, "- Region: %s\n", a.Region)
	fmt.Fprintf(&b, "- Cluster: %s\n", a.Cluster)
	fmt.Fprintf(&b, "- Population: %d\n", a.Population)
	if len(a.Preferences) > 0 {
		fmt.Fprintf(&b, "- Preferences: %s\n", strings.Join(a.Preferences, ", "))
	}
	b.WriteString("\nYou evaluate advertisements from the perspective of your regional ")
	b.WriteString("characteristics and cultural preferences. Respond with a JSON object ")
	b.WriteString(`containing "liking" (0.0-5.0), "purchase_intent" (0.0-5.0), and `)
	b.WriteString(`"commentary" (your reasoning, non-empty).`)
	return b.String()
}

// userPrompt renders the advertisement and the neighbor score snapshot into
// the model's user message.
func userPrompt(req scorer.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the following advertisement from your regional perspective as %s.\n\n", req.Actor.ID)
	fmt.Fprintf(&b, "Advertisement %s:\n%s\n", req.AdID, req.AdContent)

	if len(req.Neighbors) > 0 {
		b.WriteString("\nScores already produced by your neighboring regions, for reference:\n")
		for _, n := range req.Neighbors {
			fmt.Fprintf(&b, "- %s: liking=%.1f, purchase_intent=%.1f\n", n.ActorID, n.Liking, n.PurchaseIntent)
		}
	}

	b.WriteString("\nReturn only the JSON object.")
	return b.String()
}
