package dto

// StatusRequest is the body of POST /{channel}/status sent by channel workers.
type StatusRequest struct {
	NotificationID string `json:"notification_id" validate:"required,uuid"`
	Status         string `json:"status" validate:"required"`
	Error          string `json:"error"`
}
