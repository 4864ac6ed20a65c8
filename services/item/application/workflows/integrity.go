// Package workflows runs the periodic hierarchy integrity sweep, either as a
// Temporal workflow or in-process when Temporal is disabled.
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/itemtree/pkg/logger"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

const (
	// TaskQueue is the Temporal task queue the worker polls.
	TaskQueue = "itemtree-integrity"

	// VerifyHierarchyWorkflowName is the registered workflow type name.
	VerifyHierarchyWorkflowName = "VerifyHierarchy"
)

// Verifier checks one tenant's hierarchy.
type Verifier interface {
	VerifyIntegrity(ctx context.Context, tenantID uuid.UUID) (*domainsvcs.IntegrityReport, error)
}

// IntegrityActivities are the side-effecting steps of the sweep.
type IntegrityActivities struct {
	Tenants  repositories.TenantLookup
	Verifier Verifier
	Logger   logger.Logger
}

// ListTenants returns every tenant id to sweep.
func (a *IntegrityActivities) ListTenants(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := a.Tenants.ListTenantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return ids, nil
}

// VerifyTenant verifies a single tenant and logs each violation found.
func (a *IntegrityActivities) VerifyTenant(ctx context.Context, tenantID uuid.UUID) (*domainsvcs.IntegrityReport, error) {
	report, err := a.Verifier.VerifyIntegrity(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("verify tenant %s: %w", tenantID, err)
	}
	for _, v := range report.Violations {
		a.Logger.WarnContext(ctx, "hierarchy integrity violation",
			"tenant_id", tenantID,
			"item_id", v.ItemID,
			"kind", v.Kind,
			"detail", v.Detail,
		)
	}
	if activity.IsActivity(ctx) {
		activity.RecordHeartbeat(ctx, tenantID.String())
	}
	return report, nil
}

// SweepResult summarizes one pass over all tenants.
type SweepResult struct {
	Tenants    int         `json:"tenants"`
	Checked    int         `json:"checked"`
	Violations int         `json:"violations"`
	Unhealthy  []uuid.UUID `json:"unhealthy"`
	Failed     []uuid.UUID `json:"failed"`
}

func (r *SweepResult) add(tenantID uuid.UUID, report *domainsvcs.IntegrityReport) {
	r.Tenants++
	r.Checked += report.Checked
	r.Violations += len(report.Violations)
	if !report.OK() {
		r.Unhealthy = append(r.Unhealthy, tenantID)
	}
}

func newSweepResult() *SweepResult {
	return &SweepResult{Unhealthy: []uuid.UUID{}, Failed: []uuid.UUID{}}
}

// VerifyHierarchyWorkflow sweeps every tenant. A tenant whose verification
// keeps failing after retries is recorded in Failed; the sweep goes on.
func VerifyHierarchyWorkflow(ctx workflow.Context) (*SweepResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})
	log := workflow.GetLogger(ctx)

	var a *IntegrityActivities
	var tenants []uuid.UUID
	if err := workflow.ExecuteActivity(ctx, a.ListTenants).Get(ctx, &tenants); err != nil {
		return nil, err
	}

	result := newSweepResult()
	for _, tenantID := range tenants {
		var report domainsvcs.IntegrityReport
		if err := workflow.ExecuteActivity(ctx, a.VerifyTenant, tenantID).Get(ctx, &report); err != nil {
			log.Error("tenant verification failed", "tenant_id", tenantID, "error", err)
			result.Failed = append(result.Failed, tenantID)
			continue
		}
		result.add(tenantID, &report)
	}

	log.Info("hierarchy sweep finished",
		"tenants", result.Tenants,
		"violations", result.Violations,
		"failed", len(result.Failed),
	)
	return result, nil
}

// RunSweep performs the same pass as VerifyHierarchyWorkflow directly,
// without Temporal.
func RunSweep(ctx context.Context, a *IntegrityActivities) (*SweepResult, error) {
	tenants, err := a.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	result := newSweepResult()
	for _, tenantID := range tenants {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		report, err := a.VerifyTenant(ctx, tenantID)
		if err != nil {
			a.Logger.ErrorContext(ctx, "tenant verification failed", "tenant_id", tenantID, "error", err)
			result.Failed = append(result.Failed, tenantID)
			continue
		}
		result.add(tenantID, report)
	}
	return result, nil
}
