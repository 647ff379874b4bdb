package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserExchangeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed broker tests in short mode")
	}

	connURL := TestRabbitMQ(t)

	mb, err := NewMessageBroker(connURL)
	require.NoError(t, err)
	t.Cleanup(func() { mb.Close() })

	require.NoError(t, SetupUserExchange(mb))

	msgs, err := mb.Consume(UserRegisteredKey, UserExchange, UserRegisteredQueue)
	require.NoError(t, err)

	payload := []byte(`{"email": "alice@example.com", "username": "alice"}`)
	require.NoError(t, mb.Publish(context.Background(), payload, UserRegisteredKey, UserExchange))

	select {
	case msg := <-msgs:
		assert.Equal(t, payload, msg.Body)
		require.NoError(t, msg.Ack(false))
	case <-time.After(10 * time.Second):
		t.Fatal("no message arrived on the user registered queue")
	}
}
