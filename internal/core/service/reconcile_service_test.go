package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accessdesk/project-access/internal/core/domain"
)

func TestReconciler_RepairsOnlyMissingGrants(t *testing.T) {
	store := newMemStore()
	p1 := store.seedProject("alpha")
	p2 := store.seedProject("beta")
	by := "a1"
	// approved, grant missing
	store.requests["r1"] = &domain.AccessRequest{ID: "r1", ProjectID: p1, ClientID: "c1", Status: domain.StatusApproved, DecidedBy: &by}
	// approved, grant present
	store.requests["r2"] = &domain.AccessRequest{ID: "r2", ProjectID: p2, ClientID: "c2", Status: domain.StatusApproved, DecidedBy: &by}
	store.projects[p2].ClientsWithAccess = []string{"c2"}
	// denied and pending never grant
	store.requests["r3"] = &domain.AccessRequest{ID: "r3", ProjectID: p1, ClientID: "c3", Status: domain.StatusDenied, DecidedBy: &by}
	store.requests["r4"] = &domain.AccessRequest{ID: "r4", ProjectID: p1, ClientID: "c4", Status: domain.StatusPending}
	// approved, project deleted
	store.requests["r5"] = &domain.AccessRequest{ID: "r5", ProjectID: "project_gone", ClientID: "c5", Status: domain.StatusApproved, DecidedBy: &by}

	res, err := NewReconciler(store.requestRepo(), store.projectRepo(), discardLogger).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, ReconcileResult{Found: 1, Repaired: 1}, res)
	require.Equal(t, 1, store.accessCount(p1, "c1"))
	require.Equal(t, 0, store.accessCount(p1, "c3"))
	require.Equal(t, 0, store.accessCount(p1, "c4"))
	require.Equal(t, 1, store.accessCount(p2, "c2"))
}

func TestReconciler_CountsFailures(t *testing.T) {
	store := newMemStore()
	p1 := store.seedProject("alpha")
	by := "a1"
	store.requests["r1"] = &domain.AccessRequest{ID: "r1", ProjectID: p1, ClientID: "c1", Status: domain.StatusApproved, DecidedBy: &by}
	store.addAccessErr = errors.New("write conflict")

	res, err := NewReconciler(store.requestRepo(), store.projectRepo(), discardLogger).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, ReconcileResult{Found: 1, Failed: 1}, res)
}

func TestReconciler_ListFailure(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("no reachable servers")

	_, err := NewReconciler(store.requestRepo(), store.projectRepo(), discardLogger).Run(context.Background())
	require.Error(t, err)
}
