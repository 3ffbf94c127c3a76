package session_auth

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
)

var (
	ErrInternal      = errors.New("internal error")
	ErrEmptyToken    = errors.New("empty token")
	ErrCorruptedUser = errors.New("session holds malformed user id")
)

//go:generate mockery --name=SessionCache --output=../../../../mocks/cache --filename=SessionCache.go
type SessionCache interface {
	Get(key string) (string, error)
}

// Service binds client tokens to accounts through the session cache the
// auth service fills on login.
type Service struct {
	sessionCache SessionCache
	logger       *slog.Logger
}

func New(sessionCache SessionCache) *Service {
	return &Service{
		sessionCache: sessionCache,
		logger:       slog.Default(),
	}
}

// Resolve never fails for an unknown token: the caller stays anonymous.
func (s *Service) Resolve(token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, ErrEmptyToken
	}

	identity := model.Identity{Token: token}
	raw, err := s.sessionCache.Get(token)
	if err != nil {
		s.logger.Error("session lookup", slog.String("error", err.Error()))
		return identity, errors.Join(ErrInternal, err)
	}
	if raw == "" {
		return identity, nil
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return identity, errors.Join(ErrCorruptedUser, err)
	}
	identity.UserID = userID
	return identity, nil
}
