package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

var (
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Principal is the authenticated view of a user, safe to serialize.
type Principal struct {
	ID          int     `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

func principalFromUser(u *store.User) *Principal {
	return &Principal{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
	}
}

type Service struct {
	store  store.Store
	cache  *common.Cache
	broker common.MessageProducer
	logger *slog.Logger
	ttl    time.Duration
}

func NewService(s store.Store, c *common.Cache, mb common.MessageProducer, logger *slog.Logger) *Service {
	return &Service{
		store:  s,
		cache:  c,
		broker: mb,
		logger: logger,
		ttl:    DefaultSessionTTL,
	}
}

type RegisteredEvent struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Register hashes the password, stores the user and announces the signup on
// the broker. Broker failures are logged and swallowed; registration never
// fails because the mail pipeline is down.
func (s *Service) Register(ctx context.Context, n store.NewUser) (*Principal, error) {
	hash, err := hashPassword(n.Password)
	if err != nil {
		return nil, err
	}
	n.Password = hash

	u, err := s.store.CreateUser(ctx, n)
	if err != nil {
		return nil, err
	}

	if s.broker != nil {
		msg, err := json.Marshal(RegisteredEvent{Email: u.Email, Username: u.Username})
		if err == nil {
			err = s.broker.Publish(ctx, msg, common.UserRegisteredKey, common.UserExchange)
		}
		if err != nil {
			s.logger.Error("could not publish registration event", slog.String("error", err.Error()), slog.String("username", u.Username))
		}
	}

	return principalFromUser(u), nil
}

// Login verifies the credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*Principal, *store.Session, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !verifyPassword(password, u.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.CreateSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	return principalFromUser(u), session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.DestroySession(ctx, token)
}

// principalCacheTTL bounds how long a cached principal can outlive a profile
// update made through a path that does not invalidate it.
const principalCacheTTL = time.Minute

// CurrentUser resolves a session token to its principal. Expired or unknown
// tokens and sessions pointing at deleted users all come back as
// ErrUnauthenticated. The session itself is always resolved against the
// store; only the user lookup behind it is cached.
func (s *Service) CurrentUser(ctx context.Context, token string) (*Principal, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if p, ok := s.cache.Get(common.CacheKeyPrincipal(session.UserID)); ok {
		return p.(*Principal), nil
	}

	u, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	p := principalFromUser(u)
	s.cache.Set(common.CacheKeyPrincipal(u.ID), p, principalCacheTTL)

	return p, nil
}

// SessionTTL reports how long new sessions live, for cookie max-age.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// SetSessionTTL changes the lifetime applied to sessions created from now
// on. Existing sessions keep their original expiry.
func (s *Service) SetSessionTTL(d time.Duration) {
	s.ttl = d
}
