package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text is the plain body; Template selects a canned message ("welcome") with
// Data filling its placeholders.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
