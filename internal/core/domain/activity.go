package domain

import "time"

// ActivityEntry records a single API call for the audit trail.
type ActivityEntry struct {
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Username  string        `json:"username,omitempty"`
	Role      Role          `json:"role,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	At        time.Time     `json:"at"`
	Latency   time.Duration `json:"latency"`
}

// Actor returns the label used in log lines and for sharding.
func (e ActivityEntry) Actor() string {
	if e.Username == "" {
		return "Guest"
	}
	return e.Username + " (" + string(e.Role) + ")"
}
