package auth

import (
	"context"
	"errors"
	"time"

	"bookcatalog/internal/platform/crypto"
	"bookcatalog/internal/user"
)

var ErrUnauthorized = errors.New("unauthorized")

// Authenticator checks a username and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (user.User, bool, error)
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type Service struct {
	secret string
	ttl    time.Duration
	users  Authenticator
}

func NewService(secret string, ttl time.Duration, users Authenticator) *Service {
	return &Service{secret: secret, ttl: ttl, users: users}
}

// Login issues a bearer token for valid credentials. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	u, ok, err := s.users.Authenticate(ctx, username, password)
	if errors.Is(err, user.ErrNotFound) {
		return Token{}, ErrUnauthorized
	}
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, ErrUnauthorized
	}

	accessToken, _, err := crypto.GenerateToken(s.secret, u.ID, u.Username, s.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
	}, nil
}
