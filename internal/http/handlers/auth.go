package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/widiatmoko/jurnalku/internal/config"
	"github.com/widiatmoko/jurnalku/internal/domain/user"
	"github.com/widiatmoko/jurnalku/internal/security"
)

type UserReader interface {
	GetByLogin(ctx context.Context, role, identifier string) (user.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID, name, role string) (string, error)
}

type AuthHandler struct {
	users UserReader
	jwt   TokenIssuer
}

func NewAuthHandler(users UserReader, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

// LoginResponse is the full user record plus the session token the legacy
// contract never had; clients that ignore the extra field keep working.
type LoginResponse struct {
	user.User
	Token string `json:"token,omitempty"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByLogin(cctx, req.Role, req.Identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid credentials.")
			return
		}
		RespondInternal(ctx, "Could not authenticate")
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid credentials.")
		return
	}

	token := ""
	if h.jwt != nil {
		token, err = h.jwt.GenerateToken(foundUser.ID, foundUser.Name, foundUser.Role)
		if err != nil {
			RespondInternal(ctx, "Could not generate session token")
			return
		}
	}

	ctx.JSON(http.StatusOK, LoginResponse{User: foundUser, Token: token})
}
