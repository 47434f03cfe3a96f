package mailer

// Template names understood by the email worker.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// The worker renders Template with Data; Subject/Text/HTML act as a raw
// fallback when no template is given.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
