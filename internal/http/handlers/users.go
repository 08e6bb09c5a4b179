package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/widiatmoko/jurnalku/internal/config"
	"github.com/widiatmoko/jurnalku/internal/domain/user"
	"github.com/widiatmoko/jurnalku/internal/security"
)

const resetAction = "reset_application_data"

type UsersStore interface {
	List(ctx context.Context) ([]user.User, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type JournalsWiper interface {
	DeleteAll(ctx context.Context) error
	DeleteByStudent(ctx context.Context, studentID string) error
}

type UsersHandler struct {
	users    UsersStore
	journals JournalsWiper
	seed     func() ([]user.User, error)
	log      *slog.Logger
}

func NewUsersHandler(users UsersStore, journals JournalsWiper, seed func() ([]user.User, error), log *slog.Logger) *UsersHandler {
	return &UsersHandler{users: users, journals: journals, seed: seed, log: log}
}

// List returns the roster sorted by name. A first-ever list against an
// empty store seeds the fixed initial roster before returning it.
func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.ensureSeeded(cctx); err != nil {
		h.log.Error("roster seeding failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	users, err := h.users.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.CreateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u := user.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Role:     req.Role,
		NISN:     req.NISN,
		NIP:      req.NIP,
		NIK:      req.NIK,
		Username: req.Username,
		Avatar:   req.Avatar,
		ChildIDs: req.ChildIDs,
	}
	if u.LoginID() == "" {
		RespondBadRequest(ctx, "Bad request: Missing login identifier for role "+req.Role+".", nil)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}
	u.PasswordHash = hash

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.users.Create(cctx, u)
	if err != nil {
		if errors.Is(err, user.ErrLoginTaken) {
			RespondBadRequest(ctx, "Bad request: Login identifier already in use.", nil)
			return
		}
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	var req user.UpdateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}
	if req.ID == "" {
		RespondBadRequest(ctx, "Bad request: Missing user ID.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.users.GetByID(cctx, req.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update user")
		return
	}

	u := user.User{
		ID:           existing.ID,
		Name:         req.Name,
		Role:         req.Role,
		NISN:         req.NISN,
		NIP:          req.NIP,
		NIK:          req.NIK,
		Username:     req.Username,
		Avatar:       req.Avatar,
		ChildIDs:     req.ChildIDs,
		PasswordHash: existing.PasswordHash,
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	}
	if u.LoginID() == "" {
		RespondBadRequest(ctx, "Bad request: Missing login identifier for role "+req.Role+".", nil)
		return
	}
	if req.Password != "" {
		hash, err := security.HashPassword(req.Password)
		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}
		u.PasswordHash = hash
	}

	updated, err := h.users.Update(cctx, u)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrLoginTaken):
			RespondBadRequest(ctx, "Bad request: Login identifier already in use.", nil)
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// Delete handles both the single-user delete (?id=ID) and the full
// application reset (?action=reset_application_data) the admin screen uses.
func (h *UsersHandler) Delete(ctx *gin.Context) {
	if ctx.Query("action") == resetAction {
		h.reset(ctx)
		return
	}

	id := ctx.Query("id")
	if id == "" {
		RespondBadRequest(ctx, "Bad request: Missing user ID.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, id); err != nil {
		RespondInternal(ctx, "Could not delete user")
		return
	}
	// A deleted student takes their journal entries with them.
	if err := h.journals.DeleteByStudent(cctx, id); err != nil {
		RespondInternal(ctx, "Could not delete user journals")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *UsersHandler) reset(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.journals.DeleteAll(cctx); err != nil {
		RespondInternal(ctx, "Could not reset application data")
		return
	}
	if err := h.users.DeleteAll(cctx); err != nil {
		RespondInternal(ctx, "Could not reset application data")
		return
	}

	h.log.Info("application data reset")
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *UsersHandler) ensureSeeded(ctx context.Context) error {
	n, err := h.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	roster, err := h.seed()
	if err != nil {
		return err
	}
	for _, u := range roster {
		if _, err := h.users.Create(ctx, u); err != nil {
			return err
		}
	}

	h.log.Info("seeded initial roster", "users", len(roster))
	return nil
}
