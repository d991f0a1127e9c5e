package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Strob0t/AdForge/internal/domain/actor"
	"github.com/Strob0t/AdForge/internal/domain/ad"
	"github.com/Strob0t/AdForge/internal/domain/score"
	"github.com/Strob0t/AdForge/internal/graph"
	"github.com/Strob0t/AdForge/internal/port/archive"
	"github.com/Strob0t/AdForge/internal/port/cache"
	"github.com/Strob0t/AdForge/internal/service"
)

// Handlers holds the HTTP handler dependencies. Archive and Reports are
// optional; handlers degrade to in-memory state when they are nil.
type Handlers struct {
	Evaluations *service.EvaluationService
	Registry    *actor.Registry
	Graph       *graph.Graph
	Archive     archive.Archive
	Reports     cache.Cache
	ReportTTL   time.Duration
}

// StartEvaluation handles POST /api/v1/evaluations
func (h *Handlers) StartEvaluation(w http.ResponseWriter, r *http.Request) {
	adv, ok := readJSON[ad.Advertisement](w, r)
	if !ok {
		return
	}

	run, err := h.Evaluations.StartRun(r.Context(), adv)
	if err != nil {
		writeDomainError(w, err, "run not started")
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

// GetRun handles GET /api/v1/runs/{id}
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	run, err := h.Evaluations.GetRun(id)
	if err != nil {
		writeDomainError(w, err, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetReport handles GET /api/v1/runs/{id}/report
//
// Lookup order: report cache, then the scheduler's in-memory state, then the
// archive. Completed reports are immutable, so a cache hit never goes stale.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	// Dot separator keeps the key valid for the NATS KV tier.
	key := "report." + id

	if h.Reports != nil {
		if data, ok, err := h.Reports.Get(r.Context(), key); err == nil && ok {
			var rep score.Report
			if err := json.Unmarshal(data, &rep); err == nil {
				writeJSON(w, http.StatusOK, &rep)
				return
			}
			slog.Warn("corrupt cached report evicted", "run_id", id)
			_ = h.Reports.Delete(r.Context(), key)
		}
	}

	rep, err := h.Evaluations.GetReport(id)
	if err != nil && h.Archive != nil {
		rep, err = h.Archive.GetReport(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err, "report not found")
		return
	}

	if h.Reports != nil {
		if data, merr := json.Marshal(rep); merr == nil {
			if err := h.Reports.Set(r.Context(), key, data, h.ReportTTL); err != nil {
				slog.Warn("cache report", "run_id", id, "error", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListAdRecords handles GET /api/v1/ads/{id}/records
func (h *Handlers) ListAdRecords(w http.ResponseWriter, r *http.Request) {
	if h.Archive == nil {
		writeError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}
	records, err := h.Archive.ListRecordsByAd(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if records == nil {
		records = []score.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ListActors handles GET /api/v1/actors
func (h *Handlers) ListActors(w http.ResponseWriter, r *http.Request) {
	ids := h.Registry.IDs()
	actors := make([]actor.Actor, 0, len(ids))
	for _, id := range ids {
		a, _ := h.Registry.Get(id)
		actors = append(actors, a)
	}
	writeJSON(w, http.StatusOK, actors)
}

// GetActor handles GET /api/v1/actors/{id}
func (h *Handlers) GetActor(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	a, ok := h.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "actor not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type graphNode struct {
	ID        string   `json:"id"`
	Degree    int      `json:"degree"`
	Neighbors []string `json:"neighbors"`
}

// GetGraph handles GET /api/v1/graph
func (h *Handlers) GetGraph(w http.ResponseWriter, _ *http.Request) {
	ids := h.Graph.Nodes()
	nodes := make([]graphNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, graphNode{
			ID:        id,
			Degree:    h.Graph.Degree(id),
			Neighbors: h.Graph.Neighbors(id),
		})
	}
	writeJSON(w, http.StatusOK, nodes)
}

// GetNeighbors handles GET /api/v1/graph/{id}/neighbors
func (h *Handlers) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if _, ok := h.Registry.Get(id); !ok {
		writeError(w, http.StatusNotFound, "actor not found")
		return
	}
	writeJSON(w, http.StatusOK, h.Graph.Neighbors(id))
}

// GetPlan handles GET /api/v1/graph/plan
//
// It exposes the staged processing order every run follows: degree-ascending
// stages with lexicographic order inside a stage.
func (h *Handlers) GetPlan(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Evaluations.Plan().Stages)
}
