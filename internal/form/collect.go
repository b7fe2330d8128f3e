// Package form turns a posted registration form into a submission record.
package form

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/chancity/tournamenthub/internal/domain/registration"
)

// Input names of the registration form.
const (
	FieldTeamName    = "teamName"
	FieldCategory    = "category"
	FieldTeamSize    = "teamSize"
	FieldContactName = "contactName"
	FieldDesignation = "designation"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldAltPhone    = "altPhone"
	FieldPlayers     = "players"
	FieldTerms       = "terms"
	FieldNewsletter  = "newsletter"
	FieldToken       = "formToken"
)

// Collect builds a submission from posted form values. Every field is read
// independently and falls back to "", 0 or false when absent or malformed,
// so Collect never fails.
func Collect(values url.Values) registration.CreateRegistrationRequest {
	text := func(name string) string {
		return strings.TrimSpace(values.Get(name))
	}

	return registration.CreateRegistrationRequest{
		TeamName:             text(FieldTeamName),
		Category:             text(FieldCategory),
		TeamSize:             parseSize(text(FieldTeamSize)),
		ContactName:          text(FieldContactName),
		Designation:          text(FieldDesignation),
		Email:                text(FieldEmail),
		Phone:                text(FieldPhone),
		AltPhone:             text(FieldAltPhone),
		Players:              text(FieldPlayers),
		TermsAccepted:        checked(values, FieldTerms),
		NewsletterSubscribed: checked(values, FieldNewsletter),
	}
}

// parseSize reads a leading integer the way a browser number field would
// coerce it; anything unparseable or negative is 0.
func parseSize(raw string) int {
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return n
}

func checked(values url.Values, name string) bool {
	if !values.Has(name) {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(values.Get(name))) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
