package models

// Session is the authenticated identity handed down to every operation that
// needs one. It is read-only after sign-in.
type Session struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Anonymous   bool   `json:"anonymous,omitempty"`
}

// Sender is the name written on outgoing messages.
func (s Session) Sender() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}
