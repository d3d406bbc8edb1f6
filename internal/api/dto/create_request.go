package dto

// CreateRequest is the body of POST /notifications.
type CreateRequest struct {
	RequestID    string         `json:"request_id"`
	UserID       string         `json:"user_id"`
	Channel      string         `json:"channel"`
	TemplateCode string         `json:"template_code"`
	Variables    map[string]any `json:"variables"`
	Priority     *int           `json:"priority"`
	Metadata     map[string]any `json:"metadata"`
}
