package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/cache"
	"github.com/quadramall/seller-api/internal/models"
	"github.com/quadramall/seller-api/internal/pipeline"
	"github.com/quadramall/seller-api/internal/sse"
	"github.com/quadramall/seller-api/internal/utils"
)

// SubmissionService runs product submissions in the background and fans their
// progress out to SSE watchers and the Redis snapshot. One submission per
// seller at a time; a second submit while one is running is rejected.
type SubmissionService struct {
	orchestrator *pipeline.Orchestrator
	hub          *sse.Hub
	snapshots    *cache.SubmissionCache

	resetAfterSuccess time.Duration
	resetAfterError   time.Duration

	mu     sync.Mutex
	active map[int64]string
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(orchestrator *pipeline.Orchestrator, hub *sse.Hub, snapshots *cache.SubmissionCache, resetAfterSuccess, resetAfterError time.Duration) *SubmissionService {
	return &SubmissionService{
		orchestrator:      orchestrator,
		hub:               hub,
		snapshots:         snapshots,
		resetAfterSuccess: resetAfterSuccess,
		resetAfterError:   resetAfterError,
		active:            make(map[int64]string),
	}
}

// Start launches the submission pipeline for a draft in a background
// goroutine and returns the submission id to watch. The draft's staged assets
// are released when the run finishes, whatever the outcome. Once started the
// run cannot be cancelled.
func (s *SubmissionService) Start(draft *models.ProductDraft) (string, error) {
	s.mu.Lock()
	if _, busy := s.active[draft.SellerID]; busy {
		s.mu.Unlock()
		return "", utils.ErrSubmissionBusy
	}
	submissionID := uuid.New().String()
	s.active[draft.SellerID] = submissionID
	s.mu.Unlock()

	go s.run(submissionID, draft)
	return submissionID, nil
}

func (s *SubmissionService) run(submissionID string, draft *models.ProductDraft) {
	// Detached from the request context: a closed HTTP connection must not
	// abort an in-flight submission.
	ctx := context.Background()

	defer draft.ReleaseAll()
	defer func() {
		s.mu.Lock()
		delete(s.active, draft.SellerID)
		s.mu.Unlock()
	}()

	var productID *int64
	var lastState models.ProgressState
	sink := func(state models.ProgressState) {
		lastState = state
		s.publish(ctx, submissionID, draft.SellerID, productID, state)
	}

	log.Info().Str("submission_id", submissionID).Int64("seller_id", draft.SellerID).
		Bool("editing", draft.Editing()).Msg("Submission started")

	product, err := s.orchestrator.Submit(ctx, draft, sink)
	if err != nil {
		time.AfterFunc(s.resetAfterError, func() {
			s.publish(ctx, submissionID, draft.SellerID, nil, models.IdleProgress())
		})
		return
	}

	productID = &product.ID
	// Re-publish the terminal snapshot so the cache carries the product id.
	s.publish(ctx, submissionID, draft.SellerID, productID, lastState)
	time.AfterFunc(s.resetAfterSuccess, func() {
		s.publish(ctx, submissionID, draft.SellerID, productID, models.IdleProgress())
	})
}

func (s *SubmissionService) publish(ctx context.Context, submissionID string, sellerID int64, productID *int64, state models.ProgressState) {
	s.hub.Publish(submissionID, state)
	snap := &cache.SubmissionSnapshot{
		SubmissionID: submissionID,
		SellerID:     sellerID,
		ProductID:    productID,
		Progress:     state,
	}
	if err := s.snapshots.Set(ctx, snap); err != nil {
		log.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to cache submission snapshot")
	}
}

// Status returns the latest cached snapshot for a submission.
func (s *SubmissionService) Status(ctx context.Context, submissionID string) (*cache.SubmissionSnapshot, error) {
	snap, err := s.snapshots.Get(ctx, submissionID)
	if err != nil {
		if err == cache.ErrSnapshotNotFound {
			return nil, utils.ErrSubmissionGone
		}
		return nil, err
	}
	return snap, nil
}
