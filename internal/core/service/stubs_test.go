package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories so joins see one dataset.
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*domain.User
	projects map[string]*domain.Project
	requests map[string]*domain.AccessRequest

	addAccessErr   error // if set, AddClientAccess returns this error
	listErr        error // if set, ListMissingGrants / StreamAllJoined return this error
	setDecisionCnt int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*domain.User),
		projects: make(map[string]*domain.Project),
		requests: make(map[string]*domain.AccessRequest),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_%d", prefix, m.seq)
}

func (m *memStore) userRepo() *memUsers       { return &memUsers{m} }
func (m *memStore) projectRepo() *memProjects { return &memProjects{m} }
func (m *memStore) requestRepo() *memRequests { return &memRequests{m} }

// seedProject inserts a project directly and returns its id.
func (m *memStore) seedProject(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("project")
	m.projects[id] = &domain.Project{ID: id, Name: name, Email: name + "@example.com", Phone: "5551234567", ClientsWithAccess: []string{}}
	return id
}

// seedUser inserts a user directly and returns its id.
func (m *memStore) seedUser(username string, role domain.Role) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("user")
	m.users[id] = &domain.User{ID: id, Username: username, Role: role}
	return id
}

func (m *memStore) accessCount(projectID, clientID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range m.projects[projectID].ClientsWithAccess {
		if id == clientID {
			n++
		}
	}
	return n
}

// --- users ---

type memUsers struct{ *memStore }

func (r *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	clone := *u
	clone.ID = r.nextID("user")
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUsers) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// --- projects ---

type memProjects struct{ *memStore }

func cloneProject(p *domain.Project) *domain.Project {
	clone := *p
	clone.ClientsWithAccess = append([]string{}, p.ClientsWithAccess...)
	return &clone
}

func (r *memProjects) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneProject(p)
	clone.ID = r.nextID("project")
	r.projects[clone.ID] = clone
	return cloneProject(clone), nil
}

func (r *memProjects) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return cloneProject(p), nil
}

func (r *memProjects) Update(_ context.Context, id string, u domain.ProjectUpdate) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.StartDate != nil {
		p.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		p.EndDate = *u.EndDate
	}
	return cloneProject(p), nil
}

func (r *memProjects) Delete(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	delete(r.projects, id)
	return p, nil
}

func (r *memProjects) List(_ context.Context, clientID string) ([]*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Project
	for _, p := range r.projects {
		if clientID != "" && !p.HasAccess(clientID) {
			continue
		}
		out = append(out, cloneProject(p))
	}
	return out, nil
}

func (r *memProjects) ListForRequestAccess(_ context.Context) ([]*domain.ProjectAccessView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProjectAccessView
	for _, p := range r.projects {
		out = append(out, &domain.ProjectAccessView{ID: p.ID, Name: p.Name, Location: p.Location, ClientsWithAccess: append([]string{}, p.ClientsWithAccess...)})
	}
	return out, nil
}

func (r *memProjects) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.projects[id]
	return ok, nil
}

func (r *memProjects) AddClientAccess(_ context.Context, projectID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addAccessErr != nil {
		return r.addAccessErr
	}
	p, ok := r.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if !p.HasAccess(clientID) {
		p.ClientsWithAccess = append(p.ClientsWithAccess, clientID)
	}
	return nil
}

func (r *memProjects) RemoveClientAccess(_ context.Context, projectID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	p.ClientsWithAccess = without(p.ClientsWithAccess, clientID)
	return nil
}

func (r *memProjects) RemoveClientFromAll(_ context.Context, clientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.projects {
		if p.HasAccess(clientID) {
			p.ClientsWithAccess = without(p.ClientsWithAccess, clientID)
			n++
		}
	}
	return n, nil
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// --- requests ---

type memRequests struct{ *memStore }

func (r *memRequests) Create(_ context.Context, req *domain.AccessRequest) (*domain.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *req
	clone.ID = r.nextID("request")
	r.requests[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memRequests) SetDecision(_ context.Context, id string, status domain.RequestStatus, decidedBy string) (domain.RequestStatus, *domain.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setDecisionCnt++
	req, ok := r.requests[id]
	if !ok {
		return "", nil, domain.ErrRequestNotFound
	}
	prev := req.Status
	req.Status = status
	by := decidedBy
	req.DecidedBy = &by
	clone := *req
	return prev, &clone, nil
}

func (r *memRequests) join(req *domain.AccessRequest) *domain.JoinedRequest {
	j := &domain.JoinedRequest{
		ID:        req.ID,
		Status:    req.Status,
		DecidedBy: req.DecidedBy,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
	if p, ok := r.projects[req.ProjectID]; ok {
		j.Project = &domain.RequestProject{ID: p.ID, Name: p.Name, Email: p.Email}
	}
	if u, ok := r.users[req.ClientID]; ok {
		j.Client = &domain.RequestClient{ID: u.ID, Username: u.Username}
	}
	return j
}

func (r *memRequests) ListPendingJoined(_ context.Context) ([]*domain.JoinedRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.JoinedRequest
	for _, req := range r.requests {
		if req.Status == domain.StatusPending {
			out = append(out, r.join(req))
		}
	}
	return out, nil
}

func (r *memRequests) ListByClientJoined(_ context.Context, clientID string) ([]*domain.JoinedRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.JoinedRequest
	for _, req := range r.requests {
		if req.ClientID == clientID {
			out = append(out, r.join(req))
		}
	}
	return out, nil
}

func (r *memRequests) StreamAllJoined(_ context.Context) (ports.JoinedRequestCursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	items := make([]*domain.JoinedRequest, 0, len(r.requests))
	for _, req := range r.requests {
		items = append(items, r.join(req))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return newSliceCursor(items), nil
}

func (r *memRequests) DeleteByClient(_ context.Context, clientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, req := range r.requests {
		if req.ClientID == clientID {
			delete(r.requests, id)
			n++
		}
	}
	return n, nil
}

func (r *memRequests) ListMissingGrants(_ context.Context) ([]domain.GrantRepair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.GrantRepair
	for _, req := range r.requests {
		if req.Status != domain.StatusApproved {
			continue
		}
		p, ok := r.projects[req.ProjectID]
		if !ok || p.HasAccess(req.ClientID) {
			continue
		}
		out = append(out, domain.GrantRepair{RequestID: req.ID, ProjectID: req.ProjectID, ClientID: req.ClientID})
	}
	return out, nil
}

// --- cursor ---

type sliceCursor struct {
	items  []*domain.JoinedRequest
	pos    int
	failAt int // Current fails when pos reaches failAt (1-based); 0 disables
	closed bool
	err    error
}

func newSliceCursor(items []*domain.JoinedRequest) *sliceCursor {
	return &sliceCursor{items: items}
}

func (c *sliceCursor) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		c.err = ctx.Err()
		return false
	}
	if c.pos >= len(c.items) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Current() (*domain.JoinedRequest, error) {
	if c.failAt > 0 && c.pos == c.failAt {
		return nil, errors.New("decode failure")
	}
	return c.items[c.pos-1], nil
}

func (c *sliceCursor) Err() error { return c.err }

func (c *sliceCursor) Close(context.Context) error {
	c.closed = true
	return nil
}

// --- sessions ---

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	saveErr  error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*domain.Session)}
}

func (s *memSessions) Save(_ context.Context, sess *domain.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *memSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *memSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memSessions) DeleteByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func adminSession(id string) *domain.Session {
	return &domain.Session{ID: "sess_" + id, UserID: id, Username: "admin", Role: domain.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
}

func clientSession(id string) *domain.Session {
	return &domain.Session{ID: "sess_" + id, UserID: id, Username: "client_" + id, Role: domain.RoleClient, ExpiresAt: time.Now().Add(time.Hour)}
}
