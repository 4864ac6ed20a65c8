package workflows

import (
	"context"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// NewWorker returns a worker polling taskQueue. Tracing interceptors set on
// the client carry over to the worker.
func (tc *TemporalClient) NewWorker(taskQueue string) worker.Worker {
	return worker.New(tc.Client, taskQueue, worker.Options{})
}

// RunEvery starts workflowType on taskQueue once per interval until ctx is
// cancelled. Runs are keyed by their time window, so several replicas ticking
// together start a single execution.
func (tc *TemporalClient) RunEvery(ctx context.Context, interval time.Duration, idPrefix, taskQueue string, workflowType any, args ...any) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			tc.log.Info("periodic workflow stopped", "workflow_id_prefix", idPrefix)
			return
		case now := <-ticker.C:
			id := windowID(idPrefix, now, interval)
			run, err := tc.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
				ID:                    id,
				TaskQueue:             taskQueue,
				WorkflowRunTimeout:    interval,
				WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
			}, workflowType, args...)
			if err != nil {
				tc.log.WarnContext(ctx, "failed to start periodic workflow", "workflow_id", id, "error", err)
				continue
			}
			tc.log.InfoContext(ctx, "periodic workflow started", "workflow_id", id, "run_id", run.GetRunID())
		}
	}
}

// windowID names the interval window containing t.
func windowID(prefix string, t time.Time, interval time.Duration) string {
	return fmt.Sprintf("%s-%d", prefix, t.UTC().Truncate(interval).Unix())
}
