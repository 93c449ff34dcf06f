package models

import (
	"time"

	"github.com/slacklinehq/slackline/internal/store"
	"github.com/slacklinehq/slackline/pkg/util"
)

// User is the profile-plus-presence document keyed by uid. Presence writes
// are merge-only so they never clobber profile fields, and vice versa.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen,omitzero"`
}

func UserFromFields(f store.Fields) User {
	return User{
		ID:       fieldString(f, "id"),
		Name:     fieldString(f, "name"),
		Email:    fieldString(f, "email"),
		Online:   fieldBool(f, "online"),
		LastSeen: fieldTime(f, "lastSeen"),
	}
}

func UsersFromFields(docs []store.Fields) []User {
	return util.ConvertList(docs, UserFromFields)
}
