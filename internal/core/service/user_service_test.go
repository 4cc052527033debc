package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/accessdesk/project-access/internal/core/domain"
)

func newUserFixture() (*memStore, *memSessions, *UserService) {
	store := newMemStore()
	sessions := newMemSessions()
	svc := NewUserService(store.userRepo(), store.projectRepo(), store.requestRepo(), sessions, discardLogger)
	return store, sessions, svc
}

func TestUserService_CreateUser_Roles(t *testing.T) {
	_, _, svc := newUserFixture()
	admin := adminSession("a1")

	u, err := svc.CreateUser(context.Background(), admin, "ops", "pw", "Admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	u, err = svc.CreateUser(context.Background(), admin, "cli", "pw", "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleClient, u.Role)

	_, err = svc.CreateUser(context.Background(), admin, "x", "pw", "Root")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateUser(context.Background(), clientSession("c1"), "y", "pw", "Admin")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserService_ListUsers_AdminOnly(t *testing.T) {
	store, _, svc := newUserFixture()
	store.seedUser("a", domain.RoleClient)
	store.seedUser("b", domain.RoleClient)

	users, err := svc.ListUsers(context.Background(), adminSession("a1"))
	require.NoError(t, err)
	require.Len(t, users, 2)

	_, err = svc.ListUsers(context.Background(), clientSession("c1"))
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserService_DeleteUser_Cascades(t *testing.T) {
	store, sessions, svc := newUserFixture()
	requests := NewRequestService(store.requestRepo(), store.projectRepo(), nil, discardLogger)
	admin := adminSession("a1")

	victim := store.seedUser("victim", domain.RoleClient)
	other := store.seedUser("other", domain.RoleClient)
	p1 := store.seedProject("alpha")
	p2 := store.seedProject("beta")

	r1, _ := requests.Create(context.Background(), clientSession(victim), p1)
	_, _ = requests.Create(context.Background(), clientSession(victim), p2)
	r3, _ := requests.Create(context.Background(), clientSession(other), p1)
	_, err := requests.Decide(context.Background(), admin, r1.ID, "APPROVED")
	require.NoError(t, err)
	_, err = requests.Decide(context.Background(), admin, r3.ID, "APPROVED")
	require.NoError(t, err)
	require.NoError(t, sessions.Save(context.Background(), &domain.Session{ID: "s1", UserID: victim, ExpiresAt: time.Now().Add(time.Hour)}, time.Hour))

	require.NoError(t, svc.DeleteUser(context.Background(), admin, victim))

	for _, r := range store.requests {
		require.NotEqual(t, victim, r.ClientID, "victim's requests must be gone")
	}
	require.Len(t, store.requests, 1)
	require.Equal(t, 0, store.accessCount(p1, victim))
	require.Equal(t, 1, store.accessCount(p1, other), "other grants are untouched")
	require.Empty(t, sessions.sessions)

	_, err = store.userRepo().FindByID(context.Background(), victim)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_DeleteUser_Errors(t *testing.T) {
	_, _, svc := newUserFixture()

	require.ErrorIs(t, svc.DeleteUser(context.Background(), adminSession("a1"), "user_missing"), domain.ErrNotFound)
	require.ErrorIs(t, svc.DeleteUser(context.Background(), adminSession("a1"), "a1"), domain.ErrValidation)
	require.ErrorIs(t, svc.DeleteUser(context.Background(), clientSession("c1"), "user_1"), domain.ErrForbidden)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	store := newMemStore()
	users := store.userRepo()

	created, err := EnsureAdmin(context.Background(), users, "admin", "Pass@1234#")
	require.NoError(t, err)
	require.True(t, created)

	created, err = EnsureAdmin(context.Background(), users, "admin", "other")
	require.NoError(t, err)
	require.False(t, created)
	require.Len(t, store.users, 1)

	u, err := users.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)
	require.True(t, verifyPassword(u.PasswordHash, "Pass@1234#"))
}
