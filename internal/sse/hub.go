package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/models"
)

// ProgressEvent is the payload streamed to submission watchers.
type ProgressEvent struct {
	SubmissionID string               `json:"submissionId"`
	Progress     models.ProgressState `json:"progress"`
	Timestamp    time.Time            `json:"timestamp"`
}

// Client represents one connected SSE watcher of a submission.
type Client struct {
	ID     string
	Events chan []byte
}

// topic groups the watchers of one submission.
type topic struct {
	clients     map[string]*Client
	lastPublish time.Time
}

// Hub manages per-submission SSE subscriptions and publishes progress
// updates to every watcher of a submission.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*topic
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]*topic)}
}

// Register adds a watcher for a submission and returns it for streaming.
func (h *Hub) Register(submissionID, clientID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[submissionID]
	if !ok {
		t = &topic{clients: make(map[string]*Client), lastPublish: time.Now()}
		h.topics[submissionID] = t
	}

	c := &Client{
		ID:     clientID,
		Events: make(chan []byte, 64),
	}
	t.clients[clientID] = c
	log.Info().Str("submission_id", submissionID).Str("client_id", clientID).Int("watchers", len(t.clients)).Msg("SSE watcher connected")
	return c
}

// Unregister removes a watcher and closes its channel. The topic itself is
// dropped once its last watcher leaves.
func (h *Hub) Unregister(submissionID, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[submissionID]
	if !ok {
		return
	}
	if c, ok := t.clients[clientID]; ok {
		close(c.Events)
		delete(t.clients, clientID)
		log.Info().Str("submission_id", submissionID).Str("client_id", clientID).Int("watchers", len(t.clients)).Msg("SSE watcher disconnected")
	}
	if len(t.clients) == 0 {
		delete(h.topics, submissionID)
	}
}

// Publish sends a progress update to every watcher of the submission.
// Non-blocking: drops the message if a watcher's buffer is full.
func (h *Hub) Publish(submissionID string, state models.ProgressState) {
	data, err := json.Marshal(&ProgressEvent{
		SubmissionID: submissionID,
		Progress:     state,
		Timestamp:    time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE progress event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[submissionID]
	if !ok {
		return
	}
	t.lastPublish = time.Now()
	for _, c := range t.clients {
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("submission_id", submissionID).Str("client_id", c.ID).Msg("SSE watcher buffer full, dropping event")
		}
	}
}

// PruneIdle closes topics that have not published within maxAge and returns
// how many were dropped. Used by the janitor to reclaim watchers of
// submissions that died without a terminal event.
func (h *Hub) PruneIdle(maxAge time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for id, t := range h.topics {
		if t.lastPublish.After(cutoff) {
			continue
		}
		for _, c := range t.clients {
			close(c.Events)
		}
		delete(h.topics, id)
		pruned++
	}
	return pruned
}

// WatcherCount returns the number of connected watchers for a submission.
func (h *Hub) WatcherCount(submissionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if t, ok := h.topics[submissionID]; ok {
		return len(t.clients)
	}
	return 0
}
