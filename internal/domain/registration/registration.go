package registration

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusWaitlisted Status = "waitlisted"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusWaitlisted:
		return true
	default:
		return false
	}
}

const (
	MessageSubmitted = "Registration submitted successfully"
	MessageFound     = "Registration found"
)

var (
	ErrNotFound           = errors.New("registration not found")
	ErrRegistrationClosed = errors.New("registrations are closed")
	ErrInvalidStatus      = errors.New("invalid registration status")
)

// Registration is one team's stored tournament entry.
type Registration struct {
	ID                   string    `json:"registration_id"`
	TeamName             string    `json:"team_name"`
	Category             string    `json:"category"`
	TeamSize             int       `json:"team_size"`
	ContactName          string    `json:"contact_name"`
	Designation          string    `json:"designation"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	AltPhone             string    `json:"alt_phone"`
	Players              string    `json:"players"`
	TermsAccepted        bool      `json:"terms_accepted"`
	NewsletterSubscribed bool      `json:"newsletter_subscribed"`
	Status               Status    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CreateRegistrationRequest is the Registration Submission: the JSON record
// the site posts and the API validates.
type CreateRegistrationRequest struct {
	TeamName             string `json:"team_name" binding:"notblank,max=120"`
	Category             string `json:"category" binding:"notblank,max=60"`
	TeamSize             int    `json:"team_size" binding:"min=0"`
	ContactName          string `json:"contact_name" binding:"notblank,max=120"`
	Designation          string `json:"designation" binding:"max=80"`
	Email                string `json:"email" binding:"required,email,max=254"`
	Phone                string `json:"phone" binding:"required,phone"`
	AltPhone             string `json:"alt_phone" binding:"omitempty,phone"`
	Players              string `json:"players" binding:"max=4000"`
	TermsAccepted        bool   `json:"terms_accepted" binding:"accepted"`
	NewsletterSubscribed bool   `json:"newsletter_subscribed"`
}

// Normalize trims every free-text field in place.
func (r *CreateRegistrationRequest) Normalize() {
	r.TeamName = strings.TrimSpace(r.TeamName)
	r.Category = strings.TrimSpace(r.Category)
	r.ContactName = strings.TrimSpace(r.ContactName)
	r.Designation = strings.TrimSpace(r.Designation)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.AltPhone = strings.TrimSpace(r.AltPhone)
	r.Players = strings.TrimSpace(r.Players)
}

// A factory to build a Registration from the incoming DTO
func NewFromCreateRequest(req CreateRegistrationRequest) Registration {
	now := time.Now().UTC()
	return Registration{
		ID:                   uuid.NewString(),
		TeamName:             req.TeamName,
		Category:             req.Category,
		TeamSize:             req.TeamSize,
		ContactName:          req.ContactName,
		Designation:          req.Designation,
		Email:                req.Email,
		Phone:                req.Phone,
		AltPhone:             req.AltPhone,
		Players:              req.Players,
		TermsAccepted:        req.TermsAccepted,
		NewsletterSubscribed: req.NewsletterSubscribed,
		Status:               StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Response is the body returned for a created or looked-up registration.
type Response struct {
	RegistrationID string    `json:"registration_id"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	Message        string    `json:"message"`
}

func (r Registration) Response(message string) Response {
	return Response{
		RegistrationID: r.ID,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		Message:        message,
	}
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending approved rejected waitlisted"`
}

// ListFilter drives the admin listing; Page is 1-based.
type ListFilter struct {
	Page   int
	Limit  int
	Search string
	Status Status
}

func (f ListFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type Stats struct {
	Total        int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
	ByCategory   map[string]int `json:"by_category"`
	TotalPlayers int            `json:"total_players"`
}
