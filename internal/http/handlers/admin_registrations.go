package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type RegistrationAdminStore interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
	List(ctx context.Context, f registration.ListFilter) ([]registration.Registration, int, error)
	UpdateStatus(ctx context.Context, id string, status registration.Status) (registration.Registration, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (registration.Stats, error)
}

type AdminRegistrationsHandler struct {
	repo RegistrationAdminStore
	log  *slog.Logger
}

func NewAdminRegistrationsHandler(repo RegistrationAdminStore, log *slog.Logger) *AdminRegistrationsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminRegistrationsHandler{repo: repo, log: log}
}

type listResponse struct {
	Items []registration.Registration `json:"items"`
	Total int                         `json:"total"`
	Page  int                         `json:"page"`
	Limit int                         `json:"limit"`
}

func parseListFilter(ctx *gin.Context) (registration.ListFilter, string) {
	f := registration.ListFilter{Page: 1, Limit: defaultPageLimit}

	if raw := ctx.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, "page must be a positive integer"
		}
		f.Page = n
	}

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			return f, "limit must be between 1 and " + strconv.Itoa(maxPageLimit)
		}
		f.Limit = n
	}

	f.Search = strings.TrimSpace(ctx.Query("search"))

	if raw := strings.TrimSpace(ctx.Query("status")); raw != "" {
		f.Status = registration.Status(strings.ToLower(raw))
		if !f.Status.IsValid() {
			return f, "status must be one of pending, approved, rejected, waitlisted"
		}
	}

	return f, ""
}

func (h *AdminRegistrationsHandler) List(ctx *gin.Context) {
	f, problem := parseListFilter(ctx)
	if problem != "" {
		RespondBadRequest(ctx, problem)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, total, err := h.repo.List(cctx, f)
	if err != nil {
		h.log.ErrorContext(cctx, "registrations_list_failed", "err", err)
		RespondInternal(ctx, "Failed to list registrations")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, listResponse{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	})
}

func (h *AdminRegistrationsHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	reg, err := h.repo.GetByID(cctx, id)
	if err != nil {
		h.respondRepoError(ctx, cctx, "registration_get_failed", id, err)
		return
	}

	ctx.JSON(http.StatusOK, reg)
}

func (h *AdminRegistrationsHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	var req registration.UpdateStatusRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	reg, err := h.repo.UpdateStatus(cctx, id, req.Status)
	if err != nil {
		h.respondRepoError(ctx, cctx, "registration_update_failed", id, err)
		return
	}

	h.log.InfoContext(cctx, "registration_status_updated", "registration_id", id, "status", reg.Status, "actor", actor(cctx))
	ctx.JSON(http.StatusOK, reg)
}

func (h *AdminRegistrationsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		h.respondRepoError(ctx, cctx, "registration_delete_failed", id, err)
		return
	}

	h.log.InfoContext(cctx, "registration_deleted", "registration_id", id, "actor", actor(cctx))
	ctx.Status(http.StatusNoContent)
}

func (h *AdminRegistrationsHandler) Stats(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	st, err := h.repo.Stats(cctx)
	if err != nil {
		h.log.ErrorContext(cctx, "registration_stats_failed", "err", err)
		RespondInternal(ctx, "Failed to load statistics")
		return
	}

	ctx.JSON(http.StatusOK, st)
}

func (h *AdminRegistrationsHandler) respondRepoError(ctx *gin.Context, cctx context.Context, event, id string, err error) {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		RespondNotFound(ctx, "Registration "+id+" not found")
	case errors.Is(err, registration.ErrInvalidStatus):
		RespondBadRequest(ctx, err.Error())
	default:
		h.log.ErrorContext(cctx, event, "err", err, "registration_id", id)
		RespondInternal(ctx, "Registration operation failed")
	}
}
