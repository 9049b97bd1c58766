package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerDelivers(t *testing.T) {
	b := NewMemoryBroker(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "notifications")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "notifications", Notification{ID: "n1", Level: LevelError, Message: "Failed to create doctor."}))
	require.NoError(t, b.Publish(ctx, "other", Notification{ID: "n2"}))

	select {
	case raw := <-ch:
		var n Notification
		require.NoError(t, json.Unmarshal(raw, &n))
		assert.Equal(t, "n1", n.ID)
		assert.Equal(t, LevelError, n.Level)
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	assert.Empty(t, ch)
}

func TestMemoryBrokerUnsubscribeOnCancel(t *testing.T) {
	b := NewMemoryBroker(1)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "c")
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryBrokerClosed(t *testing.T) {
	b := NewMemoryBroker(1)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Publish(context.Background(), "c", "x"), ErrClosed)
	_, err := b.Subscribe(context.Background(), "c")
	assert.ErrorIs(t, err, ErrClosed)
}
