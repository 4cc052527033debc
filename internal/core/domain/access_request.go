package domain

import "time"

// RequestStatus represents the lifecycle state of an access request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusDenied   RequestStatus = "DENIED"
)

// Decision is the subset of statuses an admin may set.
type Decision = RequestStatus

// ParseDecision accepts APPROVED or DENIED.
func ParseDecision(s string) (Decision, error) {
	switch RequestStatus(s) {
	case StatusApproved, StatusDenied:
		return RequestStatus(s), nil
	default:
		return "", ErrInvalidDecision
	}
}

// Terminal reports whether the status is a decided state.
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusApproved, StatusDenied:
		return true
	case StatusPending:
		return false
	default:
		return false
	}
}

// GrantsAccess reports whether reaching this status adds the client to the
// project's access set.
func (s RequestStatus) GrantsAccess() bool {
	switch s {
	case StatusApproved:
		return true
	case StatusPending, StatusDenied:
		return false
	default:
		return false
	}
}

// AccessRequest is a client's petition to view a project.
// DecidedBy is set if and only if Status is not PENDING.
type AccessRequest struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project"`
	ClientID  string        `json:"client"`
	Status    RequestStatus `json:"status"`
	DecidedBy *string       `json:"decidedBy"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewAccessRequest returns a PENDING request.
func NewAccessRequest(projectID, clientID string, now time.Time) *AccessRequest {
	return &AccessRequest{
		ProjectID: projectID,
		ClientID:  clientID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RequestProject is the project side of a joined request. Which fields are
// filled depends on the query's projection.
type RequestProject struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Location  string     `json:"location,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// RequestClient is the client side of a joined request.
type RequestClient struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// JoinedRequest is an access request enriched with denormalized project and
// client fields. Project or Client is nil when the referenced record has been
// deleted since the request was created.
type JoinedRequest struct {
	ID        string          `json:"id"`
	Project   *RequestProject `json:"project"`
	Client    *RequestClient  `json:"client,omitempty"`
	Status    RequestStatus   `json:"status"`
	DecidedBy *string         `json:"decidedBy"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// GrantRepair identifies an approved request whose access grant is missing.
type GrantRepair struct {
	RequestID string
	ProjectID string
	ClientID  string
}
