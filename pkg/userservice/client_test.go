package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Contact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/u-1/contact":
			assert.Equal(t, "email", r.URL.Query().Get("type"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user_id":"u-1","type":"email","address":"ann@example.com"}`))
		case "/users/u-2/contact":
			_, _ = w.Write([]byte(`{"user_id":"u-2","type":"push","address":""}`))
		case "/users/u-3/contact":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	ctx := context.Background()

	contact, found, err := c.Contact(ctx, "u-1", "email")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ann@example.com", contact.Address)

	_, found, err = c.Contact(ctx, "u-2", "push")
	require.NoError(t, err)
	assert.False(t, found, "empty address means the user cannot be reached")

	_, found, err = c.Contact(ctx, "nobody", "email")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = c.Contact(ctx, "u-3", "email")
	assert.ErrorContains(t, err, "503")
}

func TestClient_ContactHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := NewClient(srv.URL, 0).Contact(ctx, "u-1", "email")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
