package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hazyrose/inkwell/internal/common"
	"github.com/hazyrose/inkwell/internal/store"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}

func setupTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	s := store.NewMemStore()
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(s, cache, nil, logger), s
}

func TestRegister(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice@example.com", p.Email)

	// Plaintext never reaches the store.
	u, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pa55word!", u.Password)
	assert.True(t, verifyPassword("pa55word!", u.Password))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, store.NewUser{Username: "alice", Email: "other@example.com", Password: "pa55word!"})
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)
}

func TestRegisterPublishesEvent(t *testing.T) {
	svc, _ := setupTestService(t)
	producer := new(MockProducer)
	svc.broker = producer
	ctx := context.Background()

	producer.On("Publish", ctx, mock.Anything, common.UserRegisteredKey, common.UserExchange).Return(nil)

	_, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)

	producer.AssertExpectations(t)
}

func TestRegisterSurvivesBrokerFailure(t *testing.T) {
	svc, _ := setupTestService(t)
	producer := new(MockProducer)
	svc.broker = producer
	ctx := context.Background()

	producer.On("Publish", ctx, mock.Anything, common.UserRegisteredKey, common.UserExchange).Return(assert.AnError)

	p, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
}

func TestLogin(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid credentials", username: "alice", password: "pa55word!"},
		{name: "wrong password", username: "alice", password: "nope nope", wantErr: ErrInvalidCredentials},
		{name: "unknown username", username: "mallory", password: "pa55word!", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, session, err := svc.Login(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, p.Username)
			assert.NotEmpty(t, session.Token)
		})
	}
}

func TestCurrentUser(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)

	_, session, err := svc.Login(ctx, "alice", "pa55word!")
	require.NoError(t, err)

	p, err := svc.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered, p)

	// Second resolve hits the cache and must agree.
	again, err := svc.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, p, again)

	require.NoError(t, svc.Logout(ctx, session.Token))

	_, err = svc.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUserAcrossSessions(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)

	_, first, err := svc.Login(ctx, "alice", "pa55word!")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "alice", "pa55word!")
	require.NoError(t, err)

	// Prime the principal cache through the first session.
	p, err := svc.CurrentUser(ctx, first.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.Token))

	// Logging out one session neither blinds nor leaks into the other.
	again, err := svc.CurrentUser(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, p, again)

	_, err = svc.CurrentUser(ctx, first.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUserUnknownToken(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.CurrentUser(context.Background(), "NOSUCHTOKEN")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUserExpiredSession(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, store.NewUser{Username: "alice", Email: "alice@example.com", Password: "pa55word!"})
	require.NoError(t, err)

	stale := &store.Session{Token: "STALETOKEN", UserID: 1, Expiry: time.Now().Add(-time.Minute)}
	require.NoError(t, s.InsertSession(ctx, stale))

	_, err = svc.CurrentUser(ctx, "STALETOKEN")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUserDanglingSession(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()

	// Session points at a user id that was never created.
	dangling := &store.Session{Token: "DANGLINGTOKEN", UserID: 99, Expiry: time.Now().Add(time.Hour)}
	require.NoError(t, s.InsertSession(ctx, dangling))

	_, err := svc.CurrentUser(ctx, "DANGLINGTOKEN")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
