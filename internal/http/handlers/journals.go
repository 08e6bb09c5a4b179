package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/widiatmoko/jurnalku/internal/config"
	"github.com/widiatmoko/jurnalku/internal/domain/journal"
	"github.com/widiatmoko/jurnalku/internal/domain/user"
	"github.com/widiatmoko/jurnalku/internal/http/middlewares"
)

type JournalsStore interface {
	List(ctx context.Context) ([]journal.Entry, error)
	GetByID(ctx context.Context, id string) (journal.Entry, error)
	Create(ctx context.Context, e journal.Entry) (journal.Entry, error)
	Update(ctx context.Context, e journal.Entry) (journal.Entry, error)
	Delete(ctx context.Context, id string) error
}

type JournalsHandler struct {
	repo JournalsStore
}

func NewJournalsHandler(repo JournalsStore) *JournalsHandler {
	return &JournalsHandler{repo: repo}
}

// List returns every entry, newest date first.
func (h *JournalsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	entries, err := h.repo.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list journals")
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

func (h *JournalsHandler) Create(ctx *gin.Context) {
	var req journal.CreateEntryRequest
	if !BindJSON(ctx, &req) {
		return
	}

	now := time.Now().UTC()
	e := journal.Entry{
		ID:        uuid.NewString(),
		StudentID: req.StudentID,
		Date:      req.Date,
		Category:  req.Category,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, e)
	if err != nil {
		RespondInternal(ctx, "Could not create journal entry")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *JournalsHandler) Update(ctx *gin.Context) {
	var req journal.UpdateEntryRequest
	if !BindJSON(ctx, &req) {
		return
	}
	if req.ID == "" {
		RespondBadRequest(ctx, "Bad request: Missing journal ID.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, req.ID)
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			RespondNotFound(ctx, "Journal entry not found")
			return
		}
		RespondInternal(ctx, "Could not update journal entry")
		return
	}

	e := journal.Entry{
		ID:         existing.ID,
		StudentID:  req.StudentID,
		Date:       req.Date,
		Category:   req.Category,
		Content:    req.Content,
		Feedback:   req.Feedback,
		FeedbackBy: existing.FeedbackBy,
		CreatedAt:  existing.CreatedAt,
		UpdatedAt:  time.Now().UTC(),
	}

	// New or changed feedback is attributed to the calling teacher when the
	// request carries an identity; the body never sets feedbackBy itself.
	if e.Feedback != existing.Feedback {
		e.FeedbackBy = ""
		if role, ok := middlewares.RoleFromContext(ctx); ok && role == user.RoleTeacher {
			if id, ok := middlewares.UserIDFromContext(ctx); ok {
				e.FeedbackBy = id
			}
		}
	}

	updated, err := h.repo.Update(cctx, e)
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			RespondNotFound(ctx, "Journal entry not found")
			return
		}
		RespondInternal(ctx, "Could not update journal entry")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *JournalsHandler) Delete(ctx *gin.Context) {
	id := ctx.Query("id")
	if id == "" {
		RespondBadRequest(ctx, "Bad request: Missing journal ID.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		RespondInternal(ctx, "Could not delete journal entry")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
