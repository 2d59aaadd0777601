package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/api/metrics"
	"github.com/tuiter/tuiter-api/internal/api/middleware"
	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/domain"
	"github.com/tuiter/tuiter-api/internal/core/ports"
)

type TuitHandler struct {
	tuits  ports.TuitService
	engine *authorization.Engine
}

func NewTuitHandler(tuits ports.TuitService, engine *authorization.Engine) *TuitHandler {
	return &TuitHandler{tuits: tuits, engine: engine}
}

// Create publishes a tuit. A parent_id makes it a comment, a quote_id a
// quote; at most one of the two may be set.
func (h *TuitHandler) Create(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	payload, err := bindFields(c)
	if err != nil {
		return err
	}

	input, err := h.engine.FilterInput(actor, authorization.FeatureCreateTuit, payload)
	if err != nil {
		return err
	}

	req := createTuitRequest{
		Body:     stringField(input, "body"),
		ParentID: stringPtrField(input, "parent_id"),
		QuoteID:  stringPtrField(input, "quote_id"),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	parentID, err := uuidPtrField(input, "parent_id")
	if err != nil {
		return err
	}
	quoteID, err := uuidPtrField(input, "quote_id")
	if err != nil {
		return err
	}

	created, err := h.tuits.Create(c.Request().Context(), ports.CreateTuitInput{
		OwnerID:  actor.ID,
		Body:     req.Body,
		ParentID: parentID,
		QuoteID:  quoteID,
	})
	if err != nil {
		return err
	}

	metrics.TuitsCreatedTotal.WithLabelValues(tuitType(created)).Inc()

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadTuit, authorization.TuitOutput(created))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

// Get returns a single tuit. Disabled tuits keep their metadata but lose
// body and engagement in the projection.
func (h *TuitHandler) Get(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	tuit, err := h.tuits.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadTuit, authorization.TuitOutput(tuit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Feed returns the relevance-ranked root feed for the acting user.
func (h *TuitHandler) Feed(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	start := time.Now()
	feed, err := h.tuits.RelevantFeed(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	metrics.FeedBuildDuration.WithLabelValues("root").Observe(time.Since(start).Seconds())

	out, err := h.projectTuits(actor, feed)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Comments returns the ranked comment thread of a tuit. The client posts the
// ids it already rendered so pagination works by exclusion.
func (h *TuitHandler) Comments(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	parentID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req commentThreadRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError(
			"The request body is not valid JSON.",
			"Check the submitted data and try again.",
		).WithLocation("API:HANDLER:COMMENTS:BIND")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	seen := make([]uuid.UUID, 0, len(req.CommentsIDs))
	for _, raw := range req.CommentsIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.ValidationError(
				`The field "comments_ids" contains an invalid id.`,
				"Check the submitted data and try again.",
			).WithLocation("API:HANDLER:COMMENTS:INVALID_SEEN_ID").WithKey("comments_ids")
		}
		seen = append(seen, id)
	}

	start := time.Now()
	thread, err := h.tuits.CommentThread(c.Request().Context(), parentID, seen)
	if err != nil {
		return err
	}
	metrics.FeedBuildDuration.WithLabelValues("comments").Observe(time.Since(start).Seconds())

	out, err := h.projectTuits(actor, thread)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Disable soft-deletes a tuit. Owners may disable their own; update:tuit:others
// overrides ownership for moderation.
func (h *TuitHandler) Disable(c echo.Context) error {
	actor := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	tuit, err := h.tuits.FindByID(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := h.engine.Can(actor, authorization.FeatureUpdateTuit, tuit)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ForbiddenError(
			"You are not allowed to update this tuit.",
			"Check that your account has the required permissions.",
		).WithLocation("API:HANDLER:TUIT_DISABLE:FORBIDDEN")
	}

	disabled, err := h.tuits.Disable(ctx, id)
	if err != nil {
		return err
	}

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadTuit, authorization.TuitOutput(disabled))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Feedback performs a view, like, retuit, or bookmark on a tuit. A repeated
// view is a no-op; the other kinds toggle.
func (h *TuitHandler) Feedback(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	tuitID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError(
			"The request body is not valid JSON.",
			"Check the submitted data and try again.",
		).WithLocation("API:HANDLER:FEEDBACK:BIND")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	kind, err := domain.ParseFeedbackKind(req.Type)
	if err != nil {
		return err
	}

	record, err := h.tuits.Feedback(c.Request().Context(), kind, actor.ID, tuitID)
	if err != nil {
		return err
	}

	if record == nil {
		metrics.FeedbackActionsTotal.WithLabelValues(string(kind), "noop").Inc()
		return c.NoContent(http.StatusNoContent)
	}

	op := "added"
	if record.Removed {
		op = "removed"
	}
	metrics.FeedbackActionsTotal.WithLabelValues(string(kind), op).Inc()

	return c.JSON(http.StatusCreated, record)
}

func (h *TuitHandler) projectTuits(actor *domain.User, tuits []*domain.Tuit) ([]authorization.Fields, error) {
	out := make([]authorization.Fields, 0, len(tuits))
	for _, tuit := range tuits {
		projected, err := h.engine.FilterOutput(actor, authorization.FeatureReadTuit, authorization.TuitOutput(tuit))
		if err != nil {
			return nil, err
		}
		out = append(out, projected)
	}
	return out, nil
}

func tuitType(t *domain.Tuit) string {
	switch {
	case t.ParentID != nil:
		return "comment"
	case t.QuoteID != nil:
		return "quote"
	default:
		return "root"
	}
}
