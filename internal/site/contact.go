package site

import (
	"net/http"

	"github.com/chancity/tournamenthub/internal/form"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ContactPage(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", ContactView{Page: newPage("Contact", "contact")})
}

func (h *Handler) SubmitContact(c *gin.Context) {
	view := ContactView{Page: newPage("Contact", "contact")}

	if err := c.Request.ParseForm(); err != nil {
		view.Errors = map[string]string{"message": msgUnreadable}
		c.HTML(http.StatusBadRequest, "contact.html", view)
		return
	}

	msg := form.CollectContact(c.Request.PostForm)
	if errs := msg.Validate(); errs != nil {
		view.Form = msg
		view.Errors = errs
		c.HTML(http.StatusUnprocessableEntity, "contact.html", view)
		return
	}

	h.log.InfoContext(c.Request.Context(), "contact_message_received", "subject", msg.Subject)
	view.Sent = true
	c.HTML(http.StatusOK, "contact.html", view)
}
