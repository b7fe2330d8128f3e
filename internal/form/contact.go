package form

import (
	"net/url"
	"strings"
)

const (
	msgRequired     = "This field is required"
	msgInvalidEmail = "Please enter a valid email address"
	msgInvalidPhone = "Please enter a valid phone number"
)

// ContactMessage is a posted contact form. It is never sent anywhere; the
// site only validates it and thanks the visitor.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

func CollectContact(values url.Values) ContactMessage {
	text := func(name string) string {
		return strings.TrimSpace(values.Get(name))
	}

	return ContactMessage{
		Name:    text("name"),
		Email:   text("email"),
		Phone:   text("phone"),
		Subject: text("subject"),
		Message: text("message"),
	}
}

// Validate returns one message per offending input name, or nil.
func (m ContactMessage) Validate() map[string]string {
	errs := map[string]string{}

	required := map[string]string{"name": m.Name, "email": m.Email, "message": m.Message}
	for name, v := range required {
		if v == "" {
			errs[name] = msgRequired
		}
	}

	if m.Email != "" && !emailPattern.MatchString(m.Email) {
		errs["email"] = msgInvalidEmail
	}
	if m.Phone != "" && !phonePattern.MatchString(m.Phone) {
		errs["phone"] = msgInvalidPhone
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
