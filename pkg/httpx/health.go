package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (Database, RedisClient, EventBus, TemporalClient all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the dependencies probed by the health endpoint. The
// database is required: without it no hierarchy operation can run. The others
// back caching, events and the integrity sweep, so their loss only degrades
// the service. Nil checkers are skipped.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
	Temporal HealthChecker
}

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "down"

	probeUnreachable = "unreachable"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type probe struct {
	name     string
	checker  HealthChecker
	required bool
}

// HealthHandler returns an http.HandlerFunc that probes all registered
// HealthCheckers concurrently. It answers 503 only when a required
// dependency is unreachable.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	probes := make([]probe, 0, 4)
	for _, p := range []probe{
		{"database", checks.Database, true},
		{"redis", checks.Redis, false},
		{"event_bus", checks.EventBus, false},
		{"temporal", checks.Temporal, false},
	} {
		if p.checker != nil {
			probes = append(probes, p)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := make([]error, len(probes))
		var wg sync.WaitGroup
		for i, p := range probes {
			wg.Go(func() { results[i] = p.checker.Ping(ctx) })
		}
		wg.Wait()

		resp := healthResponse{Status: HealthOK, Checks: make(map[string]string, len(probes))}
		for i, p := range probes {
			if results[i] == nil {
				resp.Checks[p.name] = HealthOK
				continue
			}
			resp.Checks[p.name] = probeUnreachable
			if p.required {
				resp.Status = HealthDown
			} else if resp.Status == HealthOK {
				resp.Status = HealthDegraded
			}
		}

		status := http.StatusOK
		if resp.Status == HealthDown {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
