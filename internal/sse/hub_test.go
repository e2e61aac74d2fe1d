package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadramall/seller-api/internal/models"
)

func TestHubPublishReachesAllWatchers(t *testing.T) {
	hub := NewHub()
	a := hub.Register("sub-1", "client-a")
	b := hub.Register("sub-1", "client-b")
	other := hub.Register("sub-2", "client-c")

	hub.Publish("sub-1", models.ProgressState{Stage: models.StageValidating, Percentage: 0})

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.Events:
			var ev ProgressEvent
			require.NoError(t, json.Unmarshal(data, &ev))
			assert.Equal(t, "sub-1", ev.SubmissionID)
			assert.Equal(t, models.StageValidating, ev.Progress.Stage)
		default:
			t.Fatalf("watcher %s received nothing", c.ID)
		}
	}

	select {
	case <-other.Events:
		t.Fatal("watcher of another submission must not receive the event")
	default:
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	c := hub.Register("sub-1", "client-a")
	hub.Unregister("sub-1", "client-a")

	_, open := <-c.Events
	assert.False(t, open)
	assert.Equal(t, 0, hub.WatcherCount("sub-1"))

	// Publishing to a dropped topic is a no-op.
	hub.Publish("sub-1", models.ProgressState{})
}

func TestHubDropsEventWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := hub.Register("sub-1", "client-a")

	for i := 0; i < cap(c.Events)+10; i++ {
		hub.Publish("sub-1", models.ProgressState{Current: i})
	}

	assert.Equal(t, cap(c.Events), len(c.Events), "overflow events are dropped, not blocked on")
}

func TestHubPruneIdle(t *testing.T) {
	hub := NewHub()
	c := hub.Register("stale", "client-a")

	time.Sleep(20 * time.Millisecond)
	hub.Register("fresh", "client-b")
	pruned := hub.PruneIdle(10 * time.Millisecond)

	assert.Equal(t, 1, pruned)
	assert.Equal(t, 0, hub.WatcherCount("stale"))
	_, open := <-c.Events
	assert.False(t, open)
	assert.Equal(t, 1, hub.WatcherCount("fresh"))
}
