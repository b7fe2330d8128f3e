package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/chancity/tournamenthub/internal/domain/settings"
	"github.com/chancity/tournamenthub/internal/jobs"
	"github.com/gin-gonic/gin"
)

const (
	createFailedDetail = "Failed to create registration. Please try again later."
	getFailedDetail    = "Failed to retrieve registration. Please try again later."
	closedDetail       = "Registrations are currently closed"
)

// RegistrationCreator stores a registration and its follow-up jobs atomically.
type RegistrationCreator interface {
	Create(ctx context.Context, reg registration.Registration, jobReqs []job.CreateRequest) (registration.Registration, error)
	GetByID(ctx context.Context, id string) (registration.Registration, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (settings.Settings, error)
}

type RegistrationHandler struct {
	repo     RegistrationCreator
	settings SettingsReader
	log      *slog.Logger
}

func NewRegistrationHandler(repo RegistrationCreator, settings SettingsReader, log *slog.Logger) *RegistrationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RegistrationHandler{repo: repo, settings: settings, log: log}
}

func (h *RegistrationHandler) Create(ctx *gin.Context) {
	var req registration.CreateRegistrationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if h.settings != nil {
		s, err := h.settings.Get(cctx)
		switch {
		case err != nil:
			// the form stays usable when settings cannot be read
			h.log.WarnContext(cctx, "registration_status_unavailable", "err", err)
		case !s.RegistrationOpen:
			RespondForbidden(ctx, "RegistrationClosed", closedDetail)
			return
		}
	}

	reg := registration.NewFromCreateRequest(req)

	jobReqs, err := jobs.ForRegistration(reg)
	if err != nil {
		h.log.ErrorContext(cctx, "registration_jobs_build_failed", "err", err)
		RespondInternal(ctx, createFailedDetail)
		return
	}

	reg, err = h.repo.Create(cctx, reg, jobReqs)
	if err != nil {
		h.log.ErrorContext(cctx, "registration_create_failed", "err", err, "team_name", req.TeamName)
		RespondInternal(ctx, createFailedDetail)
		return
	}

	h.log.InfoContext(cctx, "registration_created",
		"registration_id", reg.ID,
		"category", reg.Category,
		"newsletter", reg.NewsletterSubscribed,
	)

	ctx.JSON(http.StatusCreated, reg.Response(registration.MessageSubmitted))
}

func (h *RegistrationHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	reg, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			RespondNotFound(ctx, "Registration "+id+" not found")
			return
		}

		h.log.ErrorContext(cctx, "registration_get_failed", "err", err, "registration_id", id)
		RespondInternal(ctx, getFailedDetail)
		return
	}

	ctx.JSON(http.StatusOK, reg.Response(registration.MessageFound))
}
