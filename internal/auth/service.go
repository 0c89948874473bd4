package auth

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Error messages double as response bodies at the HTTP boundary, so the
// wording here is user-facing. Unknown email and wrong password share one
// error on purpose: the login response must not reveal which check failed.
var (
	ErrMissingCredentials  = errors.New("Email and password are required")
	ErrInvalidEmail        = errors.New("Invalid email format")
	ErrPasswordTooShort    = errors.New("Password must be at least 8 characters long")
	ErrEmailInUse          = errors.New("Email in use")
	ErrInvalidCredentials  = errors.New("Email or password is wrong")
	ErrNotAuthorized       = errors.New("Not authorized")
	ErrForbidden           = errors.New("Unauthorized") // 403 body wording, kept distinct from ErrNotAuthorized's 401
	ErrInvalidSubscription = errors.New("Invalid subscription")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SessionJobs schedules cleanup of stored session tokens. Best-effort:
// failures are logged, never surfaced to the caller.
type SessionJobs interface {
	EnqueueSessionExpire(userID uint64, token string, runAt time.Time) error
	CancelSessionExpire(userID uint64) error
}

type Service struct {
	Store UserStore
	JWT   *JWT
	Jobs  SessionJobs
}

type LoginResult struct {
	Token string
	User  *User
}

func (s *Service) Signup(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.Store.FindVerifiedByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        email,
		PasswordHash: hash,
		Subscription: SubscriptionStarter,
		Verified:     true,
	}
	if err := s.Store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	u, err := s.Store.FindVerifiedByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !ComparePassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.JWT.Sign(u.ID)
	if err != nil {
		return nil, err
	}

	u.SessionToken = &token
	if err := s.Store.Save(ctx, u); err != nil {
		return nil, err
	}

	if s.Jobs != nil {
		if err := s.Jobs.CancelSessionExpire(u.ID); err != nil {
			log.Printf("cancel session expire: %v", err)
		}
		if err := s.Jobs.EnqueueSessionExpire(u.ID, token, time.Now().Add(TokenTTL)); err != nil {
			log.Printf("enqueue session expire: %v", err)
		}
	}

	return &LoginResult{Token: token, User: u}, nil
}

func (s *Service) Logout(ctx context.Context, userID uint64) error {
	u, err := s.Store.FindByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return ErrNotAuthorized
	}
	if err != nil {
		return err
	}

	u.SessionToken = nil
	if err := s.Store.Save(ctx, u); err != nil {
		return err
	}

	if s.Jobs != nil {
		if err := s.Jobs.CancelSessionExpire(u.ID); err != nil {
			log.Printf("cancel session expire: %v", err)
		}
	}
	return nil
}

func (s *Service) UpdateSubscription(ctx context.Context, authedID, targetID uint64, sub Subscription) (*User, error) {
	if authedID != targetID {
		return nil, ErrForbidden
	}
	if !sub.Valid() {
		return nil, ErrInvalidSubscription
	}

	u, err := s.Store.FindByID(ctx, targetID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}

	u.Subscription = sub
	if err := s.Store.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
