package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dxgrid/acl-notify/internal/auth"
	"github.com/dxgrid/acl-notify/internal/domain"
	"github.com/dxgrid/acl-notify/internal/ratelimit"
	"github.com/dxgrid/acl-notify/internal/response"
	"github.com/gofiber/fiber/v2"
)

const testUserID = "aeb78a8c-9b4c-4f74-a3e7-2a3f7c2e0d11"

type stubService struct {
	envelope *response.Envelope
	err      error

	lastCaller domain.Identity
	calls      int
}

func (s *stubService) GetNotifications(ctx context.Context, caller domain.Identity) (*response.Envelope, error) {
	s.calls++
	s.lastCaller = caller
	return s.envelope, s.err
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s *stubLimiter) Allow(ctx context.Context, requester string) (bool, error) {
	return s.allowed, s.err
}

func (s *stubLimiter) Wait(ctx context.Context, requester string) error { return nil }

type stubUserInfo struct {
	info auth.UserInfo
	err  error

	calls int
}

func (s *stubUserInfo) UserInfo(ctx context.Context, userID string) (auth.UserInfo, error) {
	s.calls++
	return s.info, s.err
}

func newTestApp(t *testing.T, service NotificationService, limiter ratelimit.RateLimiter, users UserInfoFetcher) *fiber.App {
	t.Helper()

	app := fiber.New()
	if err := RegisterNotificationRoutes(app, service, limiter, users, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return app
}

func newNotificationRequest() *http.Request {
	req := httptest.NewRequest(fiber.MethodGet, "/v1/notifications", nil)
	req.Header.Set(HeaderUserID, testUserID)
	req.Header.Set(HeaderUserRole, "consumer")
	req.Header.Set(HeaderResourceServerURL, "rs://a")
	req.Header.Set(HeaderUserFirstName, "Ada")
	req.Header.Set(HeaderUserLastName, "Smith")
	req.Header.Set(HeaderUserEmail, "ada@x.com")
	return req
}

func decodeServiceError(t *testing.T, resp *http.Response) response.ServiceError {
	t.Helper()
	defer resp.Body.Close()

	var body response.ServiceError
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body
}

func TestGetNotificationsSuccess(t *testing.T) {
	t.Parallel()

	svc := &stubService{envelope: &response.Envelope{
		StatusCode: http.StatusOK,
		Result: response.Result{
			Type:   response.SuccessURN,
			Title:  response.SuccessTitle,
			Result: []map[string]any{{"requestId": "r1"}},
		},
	}}

	app := newTestApp(t, svc, nil, nil)

	resp, err := app.Test(newNotificationRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		StatusCode int `json:"statusCode"`
		Result     struct {
			Type   string           `json:"type"`
			Title  string           `json:"title"`
			Result []map[string]any `json:"result"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.StatusCode != http.StatusOK || body.Result.Type != response.SuccessURN {
		t.Fatalf("body = %+v, want success envelope", body)
	}
	if len(body.Result.Result) != 1 {
		t.Fatalf("records = %d, want 1", len(body.Result.Result))
	}

	if svc.lastCaller.ID != testUserID || svc.lastCaller.Role != domain.RoleConsumer {
		t.Fatalf("caller = %+v, want identity from headers", svc.lastCaller)
	}
	if svc.lastCaller.ResourceServerURL != "rs://a" {
		t.Fatalf("resourceServerURL = %s, want rs://a", svc.lastCaller.ResourceServerURL)
	}
}

func TestGetNotificationsServiceFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
	}{
		{
			name:       "not found",
			err:        response.NotFound("Access request not found, for the server : rs://a"),
			wantStatus: http.StatusNotFound,
			wantTitle:  response.ResourceNotFoundURN,
		},
		{
			name:       "database error",
			err:        response.DatabaseError("Notifications could not be fetched, Failure while executing query"),
			wantStatus: http.StatusInternalServerError,
			wantTitle:  response.DatabaseErrorURN,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t, &stubService{err: tt.err}, nil, nil)

			resp, err := app.Test(newNotificationRequest())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			body := decodeServiceError(t, resp)
			if body.Type != tt.wantStatus || body.Title != tt.wantTitle {
				t.Fatalf("body = %+v, want type %d title %s", body, tt.wantStatus, tt.wantTitle)
			}
		})
	}
}

func TestGetNotificationsRejectsBadIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"missing user id", func(r *http.Request) { r.Header.Del(HeaderUserID) }},
		{"malformed user id", func(r *http.Request) { r.Header.Set(HeaderUserID, "not-a-uuid") }},
		{"unknown role", func(r *http.Request) { r.Header.Set(HeaderUserRole, "AUDITOR") }},
		{"missing resource server url", func(r *http.Request) { r.Header.Del(HeaderResourceServerURL) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubService{}
			app := newTestApp(t, svc, nil, nil)

			req := newNotificationRequest()
			tt.mutate(req)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}

			body := decodeServiceError(t, resp)
			if body.Title != response.AuthenticationURN {
				t.Fatalf("title = %s, want %s", body.Title, response.AuthenticationURN)
			}
			if svc.calls != 0 {
				t.Fatal("service must not run for a rejected identity")
			}
		})
	}
}

func TestGetNotificationsRateLimited(t *testing.T) {
	t.Parallel()

	svc := &stubService{}
	app := newTestApp(t, svc, &stubLimiter{allowed: false}, nil)

	resp, err := app.Test(newNotificationRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}

	body := decodeServiceError(t, resp)
	if body.Title != response.LimitExceededURN {
		t.Fatalf("title = %s, want %s", body.Title, response.LimitExceededURN)
	}
	if svc.calls != 0 {
		t.Fatal("service must not run when the limiter rejects")
	}
}

func TestIdentityMiddlewareFillsMissingEmail(t *testing.T) {
	t.Parallel()

	svc := &stubService{envelope: &response.Envelope{StatusCode: http.StatusOK}}
	users := &stubUserInfo{info: auth.UserInfo{FirstName: "Jo", LastName: "Doe", Email: "jo@x.com"}}
	app := newTestApp(t, svc, nil, users)

	req := newNotificationRequest()
	req.Header.Del(HeaderUserEmail)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if users.calls != 1 {
		t.Fatalf("user info calls = %d, want 1", users.calls)
	}
	if svc.lastCaller.Email != "jo@x.com" || svc.lastCaller.FirstName != "Jo" {
		t.Fatalf("caller = %+v, want identity filled from auth server", svc.lastCaller)
	}
}

func TestIdentityMiddlewareToleratesUserInfoFailure(t *testing.T) {
	t.Parallel()

	svc := &stubService{envelope: &response.Envelope{StatusCode: http.StatusOK}}
	users := &stubUserInfo{err: errors.New("auth server down")}
	app := newTestApp(t, svc, nil, users)

	req := newNotificationRequest()
	req.Header.Del(HeaderUserEmail)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite user info failure", resp.StatusCode)
	}
	if svc.calls != 1 {
		t.Fatal("service must still run when user info lookup fails")
	}
}

func TestNewNotificationHandlerRequiresService(t *testing.T) {
	t.Parallel()

	if _, err := NewNotificationHandler(nil, nil); err != nil {
		return
	}
	t.Fatal("expected error for nil service, got nil")
}
