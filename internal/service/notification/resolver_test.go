package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
	"github.com/aliskhannn/notification-gateway/internal/model"
	"github.com/aliskhannn/notification-gateway/internal/resilience"
	"github.com/aliskhannn/notification-gateway/pkg/userservice"
)

type stubUsers struct {
	found bool
	err   error
	calls int
}

func (s *stubUsers) Contact(_ context.Context, userID, channel string) (userservice.Contact, bool, error) {
	s.calls++
	if s.err != nil || !s.found {
		return userservice.Contact{}, false, s.err
	}
	return userservice.Contact{UserID: userID, Channel: channel, Address: "ann@example.com"}, true, nil
}

type stubTemplates struct {
	exists bool
	err    error
}

func (s *stubTemplates) Exists(context.Context, string) (bool, error) {
	return s.exists, s.err
}

func newTestResolver(u userDirectory, tpl templateCatalog) (*Resolver, *resilience.Breakers) {
	breakers := resilience.NewBreakers(resilience.BreakerSettings{FailureThreshold: 2, SuccessThreshold: 1, ResetTimeout: time.Minute})
	b := resilience.Backoff{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	return NewResolver(breakers, b, WithUsers(u), WithTemplates(tpl)), breakers
}

var resolveReq = CreateRequest{UserID: "u1", Channel: model.ChannelEmail, TemplateCode: "welcome"}

func TestResolver_Resolve(t *testing.T) {
	r, _ := newTestResolver(&stubUsers{found: true}, &stubTemplates{exists: true})
	assert.NoError(t, r.Resolve(context.Background(), resolveReq))
}

func TestResolver_UnknownRecipientOrTemplate(t *testing.T) {
	r, _ := newTestResolver(&stubUsers{found: false}, &stubTemplates{exists: true})
	err := r.Resolve(context.Background(), resolveReq)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	r, _ = newTestResolver(&stubUsers{found: true}, &stubTemplates{exists: false})
	err = r.Resolve(context.Background(), resolveReq)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "template welcome does not exist")
}

func TestResolver_DependencyFailureOpensCircuit(t *testing.T) {
	users := &stubUsers{err: errors.New("connection refused")}
	r, breakers := newTestResolver(users, &stubTemplates{exists: true})

	for i := 0; i < 2; i++ {
		err := r.Resolve(context.Background(), resolveReq)
		assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
	}
	assert.Equal(t, 4, users.calls)
	assert.Equal(t, resilience.StateOpen, breakers.State(BreakerUserService))

	err := r.Resolve(context.Background(), resolveReq)
	assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 4, users.calls)
}

func TestResolver_SkipsMissingCollaborators(t *testing.T) {
	r := NewResolver(resilience.NewBreakers(resilience.DefaultBreakerSettings()), resilience.Backoff{})
	assert.NoError(t, r.Resolve(context.Background(), resolveReq))
}
