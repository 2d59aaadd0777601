package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuiter/tuiter-api/internal/core/domain"
	"github.com/tuiter/tuiter-api/internal/core/ports"
	"github.com/tuiter/tuiter-api/internal/core/ranking"
)

// Candidate fetch limits for the two ranked list queries. The ranker then
// cuts the candidates down to the feed/thread sizes.
const (
	rootFeedCandidates      = 30
	commentThreadCandidates = 50
)

// TuitService implements content creation, soft deletion, feedback, and the
// relevance-ranked list queries.
type TuitService struct {
	tuits    ports.TuitRepository
	feedback ports.FeedbackRepository
	ranker   *ranking.Ranker
	logger   zerolog.Logger
}

func NewTuitService(tuits ports.TuitRepository, feedback ports.FeedbackRepository, ranker *ranking.Ranker, logger zerolog.Logger) *TuitService {
	return &TuitService{tuits: tuits, feedback: feedback, ranker: ranker, logger: logger}
}

// Create publishes a root tuit, a comment (ParentID set), or a quote
// (QuoteID set). Comments and quotes go through the feedback transaction
// manager so the referenced tuit's counter moves atomically with the insert.
func (s *TuitService) Create(ctx context.Context, input ports.CreateTuitInput) (*domain.Tuit, error) {
	body, err := domain.NormalizeBody(input.Body)
	if err != nil {
		return nil, err
	}

	if input.ParentID != nil && input.QuoteID != nil {
		return nil, domain.ValidationError(
			"A tuit cannot be a comment and a quote at once.",
			`Send either "parent_id" or "quote_id", not both.`,
		).WithLocation("SERVICE:TUIT:CREATE:PARENT_AND_QUOTE")
	}

	tuit := &domain.Tuit{
		OwnerID:  input.OwnerID,
		ParentID: input.ParentID,
		QuoteID:  input.QuoteID,
		Body:     body,
		Status:   domain.StatusPublished,
	}

	var created *domain.Tuit
	switch {
	case input.ParentID != nil:
		created, err = s.feedback.CreateComment(ctx, tuit)
	case input.QuoteID != nil:
		created, err = s.feedback.CreateQuote(ctx, tuit)
	default:
		created, err = s.tuits.Create(ctx, tuit)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tuit_id", created.ID.String()).
		Str("owner_id", created.OwnerID.String()).
		Msg("tuit created")

	return created, nil
}

func (s *TuitService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tuit, error) {
	return s.tuits.FindByID(ctx, id)
}

// Disable soft-deletes a tuit. The transition is one-way; repeating it is an
// invalid state transition, rejected here rather than in the store.
func (s *TuitService) Disable(ctx context.Context, id uuid.UUID) (*domain.Tuit, error) {
	tuit, err := s.tuits.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tuit.IsDisabled() {
		return nil, domain.UnprocessableEntityError(
			"This tuit is already disabled.",
			"Check that you are disabling the right tuit.",
		).WithLocation("SERVICE:TUIT:DISABLE:TUIT_ALREADY_DISABLED")
	}

	disabled, err := s.tuits.Disable(ctx, tuit.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("tuit_id", id.String()).Msg("tuit disabled")
	return disabled, nil
}

func (s *TuitService) RelevantFeed(ctx context.Context, userID uuid.UUID) ([]*domain.Tuit, error) {
	candidates, err := s.tuits.ListUnviewedByUser(ctx, userID, rootFeedCandidates)
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(candidates, ranking.RootFeedSize), nil
}

func (s *TuitService) CommentThread(ctx context.Context, parentID uuid.UUID, seenIDs []uuid.UUID) ([]*domain.Tuit, error) {
	candidates, err := s.tuits.ListComments(ctx, parentID, seenIDs, commentThreadCandidates)
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(candidates, ranking.CommentThreadSize), nil
}

func (s *TuitService) Feedback(ctx context.Context, kind domain.FeedbackKind, userID, tuitID uuid.UUID) (*domain.Feedback, error) {
	return s.feedback.Toggle(ctx, kind, userID, tuitID)
}
