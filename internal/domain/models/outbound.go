package models

// Notification is a message pushed to the operations webhook.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
