package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// --- Envelopes ---

// messageResponse is the base of every JSON response.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok(message string) messageResponse {
	return messageResponse{Success: true, Message: message}
}

type userIDResponse struct {
	messageResponse
	UserID string `json:"userId"`
}

type sessionUserResponse struct {
	messageResponse
	User *domain.Session `json:"user"`
}

type usersResponse struct {
	messageResponse
	Users []*domain.User `json:"users"`
	Count int            `json:"count"`
}

type projectResponse struct {
	messageResponse
	Project *domain.Project `json:"project"`
}

type projectsResponse struct {
	messageResponse
	Projects []*domain.Project `json:"projects"`
	Count    int               `json:"count"`
}

type projectViewsResponse struct {
	messageResponse
	Projects []*domain.ProjectAccessView `json:"projects"`
	Count    int                         `json:"count"`
}

type requestResponse struct {
	messageResponse
	Request *domain.AccessRequest `json:"request"`
}

type joinedRequestsResponse struct {
	messageResponse
	Requests []*domain.JoinedRequest `json:"requests"`
	Count    int                     `json:"count"`
}

// errorResponse is what the error handler renders; declared here for the
// API docs.
type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Project not found"`
}

// fetched picks the list message used across listing endpoints.
func fetched(n int, what string) string {
	if n == 0 {
		return "No " + what + " found"
	}
	return strings.ToUpper(what[:1]) + what[1:] + " fetched"
}

// --- Dates ---

// dateValue accepts RFC 3339 timestamps and plain YYYY-MM-DD dates, the two
// formats browsers send from date inputs.
type dateValue struct {
	time.Time
}

func (d *dateValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.Validation("dates must be strings")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return domain.Validation("invalid date: " + s)
}

func (d *dateValue) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
