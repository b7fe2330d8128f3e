package site

import (
	"net/http"
	"strings"

	"github.com/chancity/tournamenthub/internal/backend"
	"github.com/chancity/tournamenthub/internal/form"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInProgress   = "Your registration is already being submitted. Please wait for it to finish."
	msgUnreadable   = "We could not read the submitted form. Please try again."
	resultClientVal = "client_validation"
	resultBusy      = "busy"
)

// RegisterPage shows the form, or the closed notice when the API says
// registrations are closed. A failed status check shows the form.
func (h *Handler) RegisterPage(c *gin.Context) {
	ctx := c.Request.Context()

	view := newRegisterView(uuid.NewString())

	open, err := h.backend.RegistrationOpen(ctx)
	if err != nil {
		h.log.WarnContext(ctx, "registration_status_unavailable", "err", err)
		open = true
	}
	view.Closed = !open

	c.HTML(http.StatusOK, "register.html", view)
}

// SubmitRegistration collects the posted form, checks contact details and
// forwards the submission to the API. Each form token has at most one
// submission in flight.
func (h *Handler) SubmitRegistration(c *gin.Context) {
	ctx := c.Request.Context()

	if err := c.Request.ParseForm(); err != nil {
		h.log.WarnContext(ctx, "registration_form_unreadable", "err", err)
		view := newRegisterView(uuid.NewString())
		view.Errors = []string{msgUnreadable}
		c.HTML(http.StatusBadRequest, "register.html", view)
		return
	}

	values := c.Request.PostForm
	req := form.Collect(values)

	token := strings.TrimSpace(values.Get(form.FieldToken))
	if token == "" {
		token = uuid.NewString()
	}

	view := newRegisterView(token)
	view.Form = req

	if errs := form.ValidateContact(req); len(errs) > 0 {
		h.observe(resultClientVal)
		view.Errors = errs
		c.HTML(http.StatusUnprocessableEntity, "register.html", view)
		return
	}

	release, ok := h.inflight.Acquire(token)
	if !ok {
		h.observe(resultBusy)
		view.Errors = []string{msgInProgress}
		c.HTML(http.StatusConflict, "register.html", view)
		return
	}
	defer release()

	res := h.backend.Submit(backend.WithClientIP(ctx, c.ClientIP()), req)

	if res.OK() {
		h.observe("success")
		h.log.InfoContext(ctx, "registration_submitted", "registration_id", res.RegistrationID)

		done := newRegisterView(uuid.NewString())
		done.Success = &SuccessView{DisplayID: res.DisplayID(), Message: res.Message}
		c.HTML(http.StatusOK, "register.html", done)
		return
	}

	h.observe(string(res.ErrorKind))
	view.Errors = res.Errors
	c.HTML(failureStatus(res.ErrorKind), "register.html", view)
}

func failureStatus(kind backend.ErrorKind) int {
	if kind == backend.ErrorValidation {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}
