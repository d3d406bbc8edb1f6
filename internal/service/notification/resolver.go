package notification

import (
	"context"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
	"github.com/aliskhannn/notification-gateway/internal/resilience"
	"github.com/aliskhannn/notification-gateway/pkg/userservice"
)

// Circuit names of the downstream dependencies.
const (
	BreakerUserService     = "user_service"
	BreakerTemplateService = "template_service"
	BreakerBroker          = "rabbitmq"
)

type userDirectory interface {
	Contact(ctx context.Context, userID, channel string) (userservice.Contact, bool, error)
}

type templateCatalog interface {
	Exists(ctx context.Context, code string) (bool, error)
}

// Resolver checks that the recipient and the template of a request exist.
// Lookups without a configured collaborator are skipped.
type Resolver struct {
	users     userDirectory
	templates templateCatalog
	breakers  *resilience.Breakers
	backoff   resilience.Backoff
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithUsers enables the recipient lookup.
func WithUsers(u userDirectory) ResolverOption {
	return func(r *Resolver) { r.users = u }
}

// WithTemplates enables the template lookup.
func WithTemplates(t templateCatalog) ResolverOption {
	return func(r *Resolver) { r.templates = t }
}

// NewResolver creates a Resolver whose lookups run with b retries inside breakers.
func NewResolver(breakers *resilience.Breakers, b resilience.Backoff, opts ...ResolverOption) *Resolver {
	r := &Resolver{breakers: breakers, backoff: b}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a validation error for an unknown recipient or template and a
// dependency error when a collaborator cannot be reached.
func (r *Resolver) Resolve(ctx context.Context, req CreateRequest) error {
	if r.users != nil {
		found, err := resilience.Call(ctx, r.breakers, BreakerUserService, r.backoff, func(ctx context.Context) (bool, error) {
			_, found, err := r.users.Contact(ctx, req.UserID, req.Channel.String())
			return found, err
		})
		if err != nil {
			return apperr.Dependency("user service", err)
		}
		if !found {
			return apperr.Validation("user %s has no %s contact", req.UserID, req.Channel)
		}
	}

	if r.templates != nil {
		exists, err := resilience.Call(ctx, r.breakers, BreakerTemplateService, r.backoff, func(ctx context.Context) (bool, error) {
			return r.templates.Exists(ctx, req.TemplateCode)
		})
		if err != nil {
			return apperr.Dependency("template service", err)
		}
		if !exists {
			return apperr.Validation("template %s does not exist", req.TemplateCode)
		}
	}

	return nil
}
