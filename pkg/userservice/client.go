// Package userservice provides a client for the user service contact lookup.
//
// The gateway only needs to know whether a recipient can be reached on a channel, so the
// client exposes a single lookup and treats a 404 as "no such contact" rather than an error.
package userservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Contact is the address of a user on one channel.
type Contact struct {
	UserID  string `json:"user_id"`
	Channel string `json:"type"`
	Address string `json:"address"` // email address or push token
}

// Client represents a user service client.
type Client struct {
	baseURL string       // e.g. http://users:8080
	client  *http.Client // HTTP client used to make requests
}

// NewClient creates a new Client. A non-positive timeout leaves the request bounded by ctx only.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Contact fetches the contact of userID for channel.
//
// found is false when the user service answers 404 or returns an empty address.
// Any other non-2xx status is an error.
func (c *Client) Contact(ctx context.Context, userID, channel string) (contact Contact, found bool, err error) {
	u := fmt.Sprintf("%s/users/%s/contact?type=%s", c.baseURL, url.PathEscape(userID), url.QueryEscape(channel))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Contact{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Contact{}, false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Contact{}, false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Contact{}, false, fmt.Errorf("user service error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&contact); err != nil {
		return Contact{}, false, fmt.Errorf("decode response: %w", err)
	}

	return contact, contact.Address != "", nil
}
