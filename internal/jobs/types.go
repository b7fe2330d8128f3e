package jobs

type JobType string

const (
	JobRegistrationConfirmation JobType = "registration.confirmation"
	JobNewsletterSubscribe      JobType = "newsletter.subscribe"
)

// IsValid reports whether t is a job type the worker knows how to run.
func (t JobType) IsValid() bool {
	switch t {
	case JobRegistrationConfirmation, JobNewsletterSubscribe:
		return true
	default:
		return false
	}
}
