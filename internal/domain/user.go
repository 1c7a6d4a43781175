package domain

import (
	"encoding/json"
	"strings"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
)

// Role marketplace role of a user
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

// UnknownUserName is shown when a profile cannot be resolved
const UnknownUserName = "Unknown User"

// User external identity as displayed by the client
type User struct {
	Name              string `json:"name"`
	Handle            string `json:"handle,omitempty"`
	Role              Role   `json:"role,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	ID                int64  `json:"id"`
	Placeholder       bool   `json:"-"`
}

// UnknownUser returns the fallback profile for an id that could not be resolved
func UnknownUser(id int64) *User {
	return &User{ID: id, Name: UnknownUserName, Placeholder: true}
}

// DisplayName returns the best label for the user
func (u *User) DisplayName() string {
	if u == nil {
		return UnknownUserName
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if u.Handle != "" {
		return "@" + u.Handle
	}
	return UnknownUserName
}

// UserPayload user object as returned by the auth service
type UserPayload struct {
	ID                json.RawMessage `json:"id"`
	UserID            json.RawMessage `json:"userId,omitempty"`
	Name              string          `json:"name"`
	FirstName         string          `json:"firstName,omitempty"`
	LastName          string          `json:"lastName,omitempty"`
	Handle            string          `json:"handle"`
	Role              string          `json:"role"`
	ProfilePictureURL string          `json:"profilePictureUrl,omitempty"`
}

// ToUser converts the payload into a User, normalizing its id
func (p *UserPayload) ToUser() (*User, error) {
	raw := p.ID
	if len(raw) == 0 {
		raw = p.UserID
	}
	id, err := common.NormalizeInt64(raw)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	return &User{
		ID:                id,
		Name:              name,
		Handle:            p.Handle,
		Role:              Role(strings.ToLower(p.Role)),
		ProfilePictureURL: p.ProfilePictureURL,
	}, nil
}
