package identity

import (
	"context"
	"errors"
	"time"

	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidAccount     = errors.New("invalid account information")
	ErrEmailTaken         = errors.New("email has already been registered")
	ErrUnavailable        = errors.New("identity service unavailable")
)

type Session struct {
	Token     string         `json:"token"`
	ExpiredAt time.Time      `json:"expired_at"`
	Account   models.Account `json:"account"`
}

// Provider resolves who is making a request. Everything the poll service
// decides about ownership and admin rights comes from GetCurrentUser.
type Provider interface {
	GetCurrentUser(ctx context.Context, token string) (models.Account, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, name, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
}

var P Provider

// AccountDeleter is implemented by providers that own the account records.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, accountID string) error
}
