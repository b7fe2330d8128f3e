package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/user"
	"github.com/chancity/tournamenthub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, error)
	AccessTTL() time.Duration
}

type AuthHandler struct {
	users UserReader
	jwt   TokenIssuer
	log   *slog.Logger
}

func NewAuthHandler(users UserReader, jwt TokenIssuer, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{users: users, jwt: jwt, log: log}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

const invalidCredentials = "Email or password is incorrect."

// Login exchanges admin credentials for a bearer access token.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnauthorized(ctx, invalidCredentials)
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		h.log.WarnContext(cctx, "admin_login_failed", "email", req.Email)
		RespondUnauthorized(ctx, invalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(found.ID, found.Email, found.Role)
	if err != nil {
		h.log.ErrorContext(cctx, "access_token_failed", "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.jwt.AccessTTL().Seconds()),
	})
}
