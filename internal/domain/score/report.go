package score

import "time"

// ClusterStats is the aggregate for one regional cluster.
type ClusterStats struct {
	Actors             int     `json:"actors"`
	MeanLiking         float64 `json:"mean_liking"`
	MeanPurchaseIntent float64 `json:"mean_purchase_intent"`
}

// Report is the assembled outcome of one evaluation run. It always
// enumerates failed actors explicitly: a partial run is never silent.
type Report struct {
	RunID              string                  `json:"run_id"`
	AdID               string                  `json:"ad_id"`
	Records            []Record                `json:"records"`
	FailedActors       []string                `json:"failed_actors"`
	MeanLiking         float64                 `json:"mean_liking"`
	MeanPurchaseIntent float64                 `json:"mean_purchase_intent"`
	Clusters           map[string]ClusterStats `json:"clusters,omitempty"`
	CompletedAt        time.Time               `json:"completed_at"`
}

// BuildReport assembles a report from the terminal records of a run.
// Records are expected in plan order. Means cover ok records only;
// clusterOf maps an actor ID to its cluster name (empty = unknown, skipped
// in the breakdown).
func BuildReport(runID, adID string, records []Record, clusterOf func(actorID string) string) *Report {
	rep := &Report{
		RunID:        runID,
		AdID:         adID,
		Records:      records,
		FailedActors: []string{},
		CompletedAt:  time.Now().UTC(),
	}

	type acc struct {
		n              int
		liking, intent float64
	}
	clusters := make(map[string]*acc)

	var okCount int
	for i := range records {
		r := &records[i]
		if r.Status != StatusOK {
			rep.FailedActors = append(rep.FailedActors, r.ActorID)
			continue
		}
		okCount++
		rep.MeanLiking += r.Liking
		rep.MeanPurchaseIntent += r.PurchaseIntent

		if clusterOf != nil {
			if c := clusterOf(r.ActorID); c != "" {
				a := clusters[c]
				if a == nil {
					a = &acc{}
					clusters[c] = a
				}
				a.n++
				a.liking += r.Liking
				a.intent += r.PurchaseIntent
			}
		}
	}

	if okCount > 0 {
		rep.MeanLiking /= float64(okCount)
		rep.MeanPurchaseIntent /= float64(okCount)
	}

	if len(clusters) > 0 {
		rep.Clusters = make(map[string]ClusterStats, len(clusters))
		for name, a := range clusters {
			rep.Clusters[name] = ClusterStats{
				Actors:             a.n,
				MeanLiking:         a.liking / float64(a.n),
				MeanPurchaseIntent: a.intent / float64(a.n),
			}
		}
	}

	return rep
}
