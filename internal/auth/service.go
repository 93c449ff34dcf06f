package auth

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/slacklinehq/slackline/internal/config"
	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
)

type service struct {
	store    store.Store
	secret   []byte
	tokenTTL time.Duration

	// Anonymous entry self-disables after one observed failure and stays
	// disabled for the process lifetime.
	anonDisabled atomic.Bool
}

var _ Provider = (*service)(nil)

func NewProvider(conf *config.Config, st store.Store) Provider {
	return &service{
		store:    st,
		secret:   []byte(conf.Auth.JWTSecret),
		tokenTTL: conf.Auth.TokenTTL,
	}
}

type claims struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anon,omitempty"`
	jwt.RegisteredClaims
}

type account struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Methods      []string
	Disabled     bool
	Anonymous    bool
}

func (s *service) SignUp(ctx context.Context, email, password, displayName string) (*Credential, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, models.NewAuthError(models.AuthCodeInvalidEmail, email)
	}

	if _, err := s.findAccount(ctx, email); err == nil {
		return nil, models.NewAuthError(models.AuthCodeEmailInUse, email)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, models.NewAuthError("", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewAuthError("", err.Error())
	}

	uid := uuid.NewString()
	if displayName == "" {
		displayName = email
	}
	err = s.store.UpsertMerge(ctx, models.ContainerAccounts, uid, store.Fields{
		"email":        email,
		"passwordHash": string(hash),
		"displayName":  displayName,
		"methods":      []string{MethodPassword},
		"disabled":     false,
		"anonymous":    false,
		"createdAt":    store.ServerTimestamp,
	})
	if err != nil {
		return nil, models.NewAuthError("", err.Error())
	}

	session := models.Session{UID: uid, DisplayName: displayName, Email: email}
	return s.establish(ctx, session)
}

func (s *service) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, models.NewAuthError(models.AuthCodeInvalidEmail, email)
	}

	acc, err := s.findAccount(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewAuthError(models.AuthCodeUserNotFound, email)
	}
	if err != nil {
		return nil, models.NewAuthError("", err.Error())
	}
	if acc.Disabled {
		return nil, models.NewAuthError(models.AuthCodeUserDisabled, email)
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, models.NewAuthError(models.AuthCodeWrongPassword, email)
	}

	session := models.Session{UID: acc.ID, DisplayName: acc.DisplayName, Email: acc.Email}
	return s.establish(ctx, session)
}

func (s *service) SignInAnonymous(ctx context.Context) (*Credential, error) {
	if s.anonDisabled.Load() {
		return nil, models.NewAuthError(models.AuthCodeRestrictedOperation, "anonymous sign-in disabled")
	}

	uid := uuid.NewString()
	err := s.store.UpsertMerge(ctx, models.ContainerAccounts, uid, store.Fields{
		"displayName": "Anonymous User",
		"methods":     []string{MethodAnonymous},
		"disabled":    false,
		"anonymous":   true,
		"createdAt":   store.ServerTimestamp,
	})
	if err != nil {
		// One failure is enough to stop offering the method.
		s.anonDisabled.Store(true)
		return nil, models.NewAuthError("", err.Error())
	}

	session := models.Session{UID: uid, DisplayName: "Anonymous User", Anonymous: true}
	return s.establish(ctx, session)
}

// establish mints the token and merge-upserts the session's user profile:
// name, email, lastSeen and online, never touching other presence fields.
func (s *service) establish(ctx context.Context, session models.Session) (*Credential, error) {
	profile := store.Fields{
		"name":     session.Sender(),
		"lastSeen": store.ServerTimestamp,
		"online":   true,
	}
	if session.Email != "" {
		profile["email"] = session.Email
	}
	if err := s.store.UpsertMerge(ctx, models.ContainerUsers, session.UID, profile); err != nil {
		return nil, models.NewAuthError("", err.Error())
	}

	token, err := s.issueToken(session)
	if err != nil {
		return nil, models.NewAuthError("", err.Error())
	}
	return &Credential{Session: session, Token: token}, nil
}

func (s *service) SignOut(ctx context.Context, session models.Session) error {
	err := s.store.UpsertMerge(ctx, models.ContainerUsers, session.UID, store.Fields{
		"online":   false,
		"lastSeen": store.ServerTimestamp,
	})
	if err != nil {
		// Best effort: sign-out never fails visibly over a presence write.
		log.Errorw(ctx, "presence offline on sign-out failed", "uid", session.UID, "error", err)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, tokenString string) (models.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Session{}, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return models.Session{}, jwt.ErrSignatureInvalid
	}
	return models.Session{
		UID:         c.Subject,
		DisplayName: c.Name,
		Email:       c.Email,
		Anonymous:   c.Anonymous,
	}, nil
}

func (s *service) ProbeMethods(ctx context.Context, email string) []string {
	fallback := []string{MethodPassword}

	if email != "" {
		acc, err := s.findAccount(ctx, email)
		if err == nil && len(acc.Methods) > 0 {
			return acc.Methods
		}
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return fallback
		}
	}

	methods := []string{MethodPassword}
	if !s.anonDisabled.Load() {
		methods = append(methods, MethodAnonymous)
	}
	return methods
}

func (s *service) issueToken(session models.Session) (string, error) {
	now := time.Now()
	c := claims{
		Name:      session.DisplayName,
		Email:     session.Email,
		Anonymous: session.Anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UID,
			Issuer:    "slackline",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *service) findAccount(ctx context.Context, email string) (*account, error) {
	q := store.Query{Limit: 1}.Where("email", store.OpEqual, email)
	docs, err := s.store.Query(ctx, models.ContainerAccounts, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, models.ErrNotFound
	}
	return accountFromFields(docs[0]), nil
}

func accountFromFields(f store.Fields) *account {
	acc := &account{}
	acc.ID, _ = f["id"].(string)
	acc.Email, _ = f["email"].(string)
	acc.PasswordHash, _ = f["passwordHash"].(string)
	acc.DisplayName, _ = f["displayName"].(string)
	acc.Disabled, _ = f["disabled"].(bool)
	acc.Anonymous, _ = f["anonymous"].(bool)
	switch m := f["methods"].(type) {
	case []string:
		acc.Methods = m
	case []any:
		for _, v := range m {
			if s, ok := v.(string); ok {
				acc.Methods = append(acc.Methods, s)
			}
		}
	}
	return acc
}
