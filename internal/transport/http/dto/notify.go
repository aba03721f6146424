package dto

// NotifyRequest announces new content to every subscriber.
type NotifyRequest struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}
