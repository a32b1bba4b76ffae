package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAuthTimeout = 10 * time.Second
	userInfoPath       = "/auth/v1/user"
)

// UserInfo is the subset of the auth server's user record the pipeline
// needs to build identity objects.
type UserInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type userInfoResponse struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Results UserInfo `json:"results"`
}

// Client fetches user records from the auth server.
type Client struct {
	client  *resty.Client
	baseURL string
}

func NewClient(baseURL string) (*Client, error) {
	client := resty.New()
	client.SetTimeout(defaultAuthTimeout)
	client.SetRetryCount(0)

	return NewClientWithResty(baseURL, client)
}

func NewClientWithResty(baseURL string, client *resty.Client) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("auth server url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid auth server url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultAuthTimeout)
	}
	client.SetRetryCount(0)

	return &Client{
		client:  client,
		baseURL: trimmed,
	}, nil
}

// UserInfo resolves first/last name and email for a user id. Failures
// are reported, never retried; callers decide whether a partially
// resolved identity is acceptable.
func (c *Client) UserInfo(ctx context.Context, userID string) (UserInfo, error) {
	if c == nil || c.client == nil {
		return UserInfo{}, fmt.Errorf("auth client is not initialized")
	}
	if strings.TrimSpace(userID) == "" {
		return UserInfo{}, fmt.Errorf("user id is required")
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("userId", strings.TrimSpace(userID)).
		SetResult(&userInfoResponse{}).
		Get(c.baseURL + userInfoPath)
	if err != nil {
		return UserInfo{}, fmt.Errorf("auth server request failed: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return UserInfo{}, fmt.Errorf("auth server returned status %d", response.StatusCode())
	}

	body, ok := response.Result().(*userInfoResponse)
	if !ok || body == nil {
		return UserInfo{}, fmt.Errorf("auth server returned an unexpected body")
	}

	return body.Results, nil
}
