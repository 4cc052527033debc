package domain

import "time"

const MaxPhoneLength = 10

// Project is a record clients can be granted access to.
type Project struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Location          string    `json:"location"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	CreatedBy         string    `json:"createdBy,omitempty"`
	ClientsWithAccess []string  `json:"clientsWithAccess"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HasAccess reports whether clientID is in the project's access set.
func (p *Project) HasAccess(clientID string) bool {
	for _, id := range p.ClientsWithAccess {
		if id == clientID {
			return true
		}
	}
	return false
}

// ProjectUpdate carries a partial update; nil fields are left untouched.
type ProjectUpdate struct {
	Name      *string
	Location  *string
	Phone     *string
	Email     *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Empty reports whether the update changes nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Location == nil && u.Phone == nil &&
		u.Email == nil && u.StartDate == nil && u.EndDate == nil
}

// ProjectAccessView is the projection shown to clients choosing a project.
type ProjectAccessView struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	ClientsWithAccess []string `json:"clientsWithAccess"`
}

// ValidatePhone enforces the phone length limit.
func ValidatePhone(phone string) error {
	if len(phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	return nil
}
