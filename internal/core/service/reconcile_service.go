package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/ports"
	"github.com/accessdesk/project-access/internal/pkg/metrics"
)

// Reconciler re-applies access grants for APPROVED requests whose project is
// missing the client id, which happens when the process stops between the
// decision write and the grant write.
type Reconciler struct {
	requests ports.RequestRepository
	projects ports.ProjectRepository
	log      zerolog.Logger
}

func NewReconciler(requests ports.RequestRepository, projects ports.ProjectRepository, log zerolog.Logger) *Reconciler {
	return &Reconciler{requests: requests, projects: projects, log: log}
}

// ReconcileResult summarises one pass.
type ReconcileResult struct {
	Found    int
	Repaired int
	Failed   int
}

// Run performs one pass. A failed repair is logged and counted but does not
// stop the pass.
func (r *Reconciler) Run(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult

	missing, err := r.requests.ListMissingGrants(ctx)
	if err != nil {
		return res, fmt.Errorf("reconcile: list missing grants: %w", err)
	}
	res.Found = len(missing)

	for _, m := range missing {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.projects.AddClientAccess(ctx, m.ProjectID, m.ClientID); err != nil {
			res.Failed++
			metrics.GrantRepairsTotal.WithLabelValues("failed").Inc()
			r.log.Warn().Err(err).
				Str("request_id", m.RequestID).
				Str("project_id", m.ProjectID).
				Msg("grant repair failed")
			continue
		}
		res.Repaired++
		metrics.GrantRepairsTotal.WithLabelValues("repaired").Inc()
	}

	if res.Found > 0 {
		r.log.Info().Int("found", res.Found).Int("repaired", res.Repaired).Int("failed", res.Failed).Msg("access grants reconciled")
	} else {
		r.log.Debug().Msg("no missing access grants")
	}
	return res, nil
}
