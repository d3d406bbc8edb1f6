package notification

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
	"github.com/aliskhannn/notification-gateway/internal/model"
)

// CreateRequest is the input of CreateNotification.
type CreateRequest struct {
	RequestID    string         `json:"request_id" validate:"omitempty,max=128"`
	UserID       string         `json:"user_id" validate:"required,max=128"`
	Channel      model.Channel  `json:"channel" validate:"required,oneof=email push"`
	TemplateCode string         `json:"template_code" validate:"required,max=128"`
	Variables    map[string]any `json:"variables"`
	Priority     *int           `json:"priority" validate:"omitempty,min=0,max=10"`
	Metadata     map[string]any `json:"metadata"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// ValidateCreate checks req and returns it normalized: identifiers trimmed, priority defaulted
// and variables never nil. A failure is an apperr validation error naming every bad field.
func ValidateCreate(req CreateRequest) (CreateRequest, error) {
	req.RequestID = strings.TrimSpace(req.RequestID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.TemplateCode = strings.TrimSpace(req.TemplateCode)
	req.Channel = model.Channel(strings.ToLower(strings.TrimSpace(string(req.Channel))))

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return CreateRequest{}, apperr.Validation("invalid request: %v", err)
		}

		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, describe(fe))
		}
		return CreateRequest{}, apperr.Validation("%s", strings.Join(msgs, "; "))
	}

	if req.Priority == nil {
		p := model.DefaultPriority
		req.Priority = &p
	}

	if req.Variables == nil {
		req.Variables = map[string]any{}
	}

	return req, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
