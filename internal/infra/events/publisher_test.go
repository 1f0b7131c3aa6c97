package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return mr, client
}

func testEvent(t *testing.T) simulation.Event {
	t.Helper()
	run, err := simulation.Create(
		simulation.Descriptor{ProjectPath: "/p/a.sim", ProjectName: "A", ToolVersion: "2.0", InputConfig: "{}"},
		simulation.Telemetry{Duration: 3},
	)
	require.NoError(t, err)
	require.NoError(t, run.MarkRunning())
	return simulation.NewEvent(simulation.EventStatusChanged, simulation.StatusPending, run)
}

func TestRedisPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	pub := NewRedisPublisher(client)
	event := testEvent(t)

	sub := client.Subscribe(ctx, Channel, RunChannel(event.RunID))
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, event))

	got := map[string]simulation.Event{}
	for i := 0; i < 2; i++ {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var decoded simulation.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
		got[msg.Channel] = decoded
	}

	for _, ch := range []string{Channel, RunChannel(event.RunID)} {
		e, ok := got[ch]
		require.True(t, ok, "no message on %s", ch)
		assert.Equal(t, simulation.EventStatusChanged, e.Type)
		assert.Equal(t, simulation.StatusPending, e.From)
		assert.Equal(t, simulation.StatusRunning, e.To)
		require.NotNil(t, e.Run)
		assert.Equal(t, event.RunID, e.Run.ID)
	}
}

func TestRedisPublisher_LastEvent(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	pub := NewRedisPublisher(client)
	event := testEvent(t)

	last, err := pub.LastEvent(ctx, event.RunID)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, pub.Publish(ctx, event))
	last, err = pub.LastEvent(ctx, event.RunID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, event.Type, last.Type)
	assert.Equal(t, lastEventTTL, mr.TTL(lastEventKey(event.RunID)))

	deleted := simulation.Event{Type: simulation.EventDeleted, RunID: event.RunID, From: event.To, To: event.To}
	require.NoError(t, pub.Publish(ctx, deleted))
	assert.False(t, mr.Exists(lastEventKey(event.RunID)))
}

func TestRedisPublisher_ServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	pub := NewRedisPublisher(client)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, pub.Publish(ctx, testEvent(t)))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewTextHandler(&buf, nil)))
	event := testEvent(t)

	require.NoError(t, pub.Publish(context.Background(), event))
	out := buf.String()
	assert.Contains(t, out, "run.status_changed")
	assert.Contains(t, out, event.RunID)
	assert.Contains(t, out, "to=RUNNING")
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, simulation.Event) error { return f.err }

func TestMultiPublisher(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	multi := MultiPublisher{
		failingPublisher{err: boom},
		NewLogPublisher(slog.New(slog.NewTextHandler(&buf, nil))),
	}

	err := multi.Publish(context.Background(), testEvent(t))
	assert.ErrorIs(t, err, boom)
	assert.NotEmpty(t, buf.String(), "later publishers still run")

	assert.NoError(t, MultiPublisher{}.Publish(context.Background(), testEvent(t)))
}
