package site

import (
	"time"

	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/chancity/tournamenthub/internal/form"
)

// Page carries what the shared header and footer need.
type Page struct {
	Title  string
	Active string
	Year   int
}

func newPage(title, active string) Page {
	return Page{Title: title, Active: active, Year: time.Now().Year()}
}

// Categories offered on the registration form.
var Categories = []string{"Men's Open", "Women's Open", "Junior (U-17)", "Veterans (35+)", "Corporate"}

type SuccessView struct {
	DisplayID string
	Message   string
}

type RegisterView struct {
	Page
	Categories []string

	// Closed replaces the form with the closed notice.
	Closed  bool
	Token   string
	Form    registration.CreateRegistrationRequest
	Success *SuccessView
	Errors  []string
}

func newRegisterView(token string) RegisterView {
	return RegisterView{
		Page:       newPage("Register", "register"),
		Categories: Categories,
		Token:      token,
	}
}

type ContactView struct {
	Page
	Form   form.ContactMessage
	Errors map[string]string
	Sent   bool
}
