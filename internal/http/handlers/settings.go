package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/settings"
	"github.com/gin-gonic/gin"
)

type SettingsStore interface {
	Get(ctx context.Context) (settings.Settings, error)
	SetRegistrationOpen(ctx context.Context, open bool) (settings.Settings, error)
}

type SettingsHandler struct {
	store SettingsStore
	log   *slog.Logger
}

func NewSettingsHandler(store SettingsStore, log *slog.Logger) *SettingsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SettingsHandler{store: store, log: log}
}

// PublicStatus reports whether the form is open. A store failure reports
// open so the site never locks teams out on a transient error.
func (h *SettingsHandler) PublicStatus(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	ctx.Header("Cache-Control", "no-store")

	s, err := h.store.Get(cctx)
	if err != nil {
		h.log.WarnContext(cctx, "registration_status_unavailable", "err", err)
		ctx.JSON(http.StatusOK, settings.Defaults().Public())
		return
	}

	ctx.JSON(http.StatusOK, s.Public())
}

func (h *SettingsHandler) Get(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	s, err := h.store.Get(cctx)
	if err != nil {
		h.log.ErrorContext(cctx, "settings_get_failed", "err", err)
		RespondInternal(ctx, "Failed to load settings")
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) Update(ctx *gin.Context) {
	var req settings.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	s, err := h.store.SetRegistrationOpen(cctx, *req.RegistrationOpen)
	if err != nil {
		h.log.ErrorContext(cctx, "settings_update_failed", "err", err)
		RespondInternal(ctx, "Failed to update settings")
		return
	}

	h.log.InfoContext(cctx, "settings_updated", "registration_open", s.RegistrationOpen, "actor", actor(cctx))
	ctx.JSON(http.StatusOK, s)
}
