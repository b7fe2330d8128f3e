package form

import (
	"regexp"

	"github.com/chancity/tournamenthub/internal/domain/registration"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]{10,}$`)
)

// ValidateContact runs the pattern checks the form applies before anything
// is sent. Required fields and terms acceptance are left to the API.
func ValidateContact(req registration.CreateRegistrationRequest) []string {
	var errs []string

	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		errs = append(errs, "Email: Please enter a valid email address")
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		errs = append(errs, "Phone: Please enter a valid phone number")
	}
	if req.AltPhone != "" && !phonePattern.MatchString(req.AltPhone) {
		errs = append(errs, "Alt phone: Please enter a valid phone number")
	}

	return errs
}
