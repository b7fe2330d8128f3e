package settings

import "time"

// Settings are the site-wide switches the admin panel controls.
type Settings struct {
	RegistrationOpen bool      `json:"registration_open"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Defaults applies before an admin has ever saved settings.
func Defaults() Settings {
	return Settings{RegistrationOpen: true}
}

type UpdateRequest struct {
	RegistrationOpen *bool `json:"registration_open" binding:"required"`
}

// PublicStatus is what the public site is allowed to see.
type PublicStatus struct {
	RegistrationOpen bool `json:"registration_open"`
}

func (s Settings) Public() PublicStatus {
	return PublicStatus{RegistrationOpen: s.RegistrationOpen}
}
