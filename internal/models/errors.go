package models

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrNotFound = status.Errorf(codes.NotFound, "not found")

// AuthErrorCode identifies a known sign-in/sign-up failure.
type AuthErrorCode string

const (
	AuthCodeRestrictedOperation AuthErrorCode = "auth/admin-restricted-operation"
	AuthCodeInvalidEmail        AuthErrorCode = "auth/invalid-email"
	AuthCodeUserDisabled        AuthErrorCode = "auth/user-disabled"
	AuthCodeUserNotFound        AuthErrorCode = "auth/user-not-found"
	AuthCodeWrongPassword       AuthErrorCode = "auth/wrong-password"
	AuthCodeEmailInUse          AuthErrorCode = "auth/email-already-in-use"
)

// AuthError carries a failure code plus the raw detail. The code maps to a
// user-facing message; unknown codes fall back to a generic one.
type AuthError struct {
	Code   AuthErrorCode
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Message returns the text shown next to the sign-in form.
func (e *AuthError) Message() string {
	switch e.Code {
	case AuthCodeRestrictedOperation:
		return "This operation is restricted. Please use email/password sign-in."
	case AuthCodeInvalidEmail:
		return "Invalid email address. Please check and try again."
	case AuthCodeUserDisabled:
		return "This account has been disabled. Please contact support."
	case AuthCodeUserNotFound:
		return "No account found with this email. Please sign up."
	case AuthCodeWrongPassword:
		return "Incorrect password. Please try again."
	default:
		return fmt.Sprintf("An error occurred: %s", e.Detail)
	}
}

func NewAuthError(code AuthErrorCode, detail string) *AuthError {
	return &AuthError{Code: code, Detail: detail}
}
