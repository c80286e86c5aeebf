package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/verif-backoffice/internal/api/http/handlers"
	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/config"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/feed"
	"github.com/spec-kit/verif-backoffice/internal/messaging"
	"github.com/spec-kit/verif-backoffice/internal/observability"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	"github.com/spec-kit/verif-backoffice/internal/service"
	"github.com/spec-kit/verif-backoffice/pkg/ratelimit"
)

const strongPassword = "Str0ng!pw"

type testServer struct {
	app         *fiber.App
	submissions repository.SubmissionRepository
	refunds     repository.RefundRepository
	contacts    repository.ContactRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := config.Config{
		App: config.AppConfig{Name: "verif-backoffice", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:             "router-secret",
			AccessTokenTTLMinutes: 60,
			SessionTTLMinutes:     60,
			BcryptCost:            bcrypt.MinCost,
			LookupScanFallback:    true,
			PasswordMaxAgeDays:    90,
		},
		RateLimit: config.RateLimitConfig{LoginRequests: 5, LoginWindowSeconds: 60},
	}

	store := persistence.NewMemoryDocumentStore()
	adminRepo := repository.NewAdminRepository(store)
	submissionRepo := repository.NewSubmissionRepository(store)
	refundRepo := repository.NewRefundRepository(store)
	contactRepo := repository.NewContactRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	dispatcher := events.NewInMemoryDispatcher(logger)
	sessions := auth.NewMemorySessionStore()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		AdminRepo:    adminRepo,
		SessionStore: sessions,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(cfg.Notification, service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		Feed:             feed.NewMemoryFeed(),
		Publisher:        messaging.NewLogPublisher(logger),
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	notificationService.RegisterHandlers()

	validator := handlers.NewValidator()
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil, metrics),
		Auth:   handlers.NewAuthHandler(authService, validator),
		Admins: handlers.NewAdminsHandler(service.NewAdminService(service.AdminDependencies{
			AdminRepo:    adminRepo,
			SessionStore: sessions,
			Logger:       logger,
		})),
		Submissions: handlers.NewSubmissionsHandler(service.NewSubmissionService(service.SubmissionDependencies{
			SubmissionRepo: submissionRepo,
			Dispatcher:     dispatcher,
		}), validator),
		Refunds: handlers.NewRefundsHandler(service.NewRefundService(service.RefundDependencies{
			RefundRepo: refundRepo,
			Dispatcher: dispatcher,
		}), validator),
		Contacts: handlers.NewContactsHandler(service.NewContactService(service.ContactDependencies{
			ContactRepo: contactRepo,
			Dispatcher:  dispatcher,
		})),
		Notifications: handlers.NewNotificationsHandler(notificationService, logger),
		Statistics: handlers.NewStatisticsHandler(service.NewStatisticsService(service.StatisticsDependencies{
			SubmissionRepo:   submissionRepo,
			RefundRepo:       refundRepo,
			ContactRepo:      contactRepo,
			AdminRepo:        adminRepo,
			NotificationRepo: notificationRepo,
		})),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), authService),
		Limiter:        ratelimit.NewMemoryLimiter(),
		LoginRate:      ratelimit.Rate{Requests: cfg.RateLimit.LoginRequests, Window: cfg.RateLimit.LoginWindow()},
	})

	return &testServer{app: app, submissions: submissionRepo, refunds: refundRepo, contacts: contactRepo}
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) register(t *testing.T, username string) map[string]any {
	t.Helper()
	status, body := s.call(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"name":     username,
		"password": strongPassword,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	return data(t, body)
}

func (s *testServer) login(t *testing.T, identifier string) string {
	t.Helper()
	status, body := s.call(t, fiber.MethodPost, "/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   strongPassword,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	token, _ := data(t, body)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// bootstrap registers the first admin, who becomes an authorized super admin, and logs in.
func (s *testServer) bootstrap(t *testing.T) string {
	t.Helper()
	s.register(t, "root")
	return s.login(t, "root")
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	out, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data object in %v", body)
	return out
}

func list(t *testing.T, body map[string]any) []any {
	t.Helper()
	out, ok := body["data"].([]any)
	require.True(t, ok, "missing data array in %v", body)
	return out
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.call(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.call(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	deps, _ := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	status, body = s.call(t, fiber.MethodGet, "/health/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, data(t, body)["requests"])
}

func TestRegisterLoginMeLogout(t *testing.T) {
	s := newTestServer(t)
	root := s.register(t, "root")
	assert.Equal(t, string(domain.AdminRoleSuperAdmin), root["role"])
	assert.Equal(t, string(domain.AdminStatusAuthorized), root["status"])
	assert.NotContains(t, root, "passwordHash")

	token := s.login(t, "root@example.com")

	status, body := s.call(t, fiber.MethodGet, "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	me := data(t, body)
	admin, _ := me["admin"].(map[string]any)
	assert.Equal(t, "root", admin["username"])
	pw, _ := me["password_status"].(map[string]any)
	assert.Equal(t, false, pw["must_change"])

	status, _ = s.call(t, fiber.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = s.call(t, fiber.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/submissions", "/refunds", "/contacts", "/notifications", "/statistics", "/admins"} {
		status, body := s.call(t, fiber.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, "UNAUTHORIZED", errorCode(body), path)
	}

	status, _ := s.call(t, fiber.MethodGet, "/submissions", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.call(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username": "ab",
		"name":     "Short",
		"password": strongPassword,
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details, _ := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "required", details["email"])
	assert.Equal(t, "min", details["username"])

	status, body = s.call(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username": "weak",
		"email":    "weak@example.com",
		"name":     "Weak",
		"password": "password",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	s.register(t, "dup")
	status, body = s.call(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"username": "dup",
		"email":    "other@example.com",
		"name":     "Dup",
		"password": strongPassword,
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))
}

func TestAdminAuthorizationFlow(t *testing.T) {
	s := newTestServer(t)
	rootToken := s.bootstrap(t)

	bob := s.register(t, "bob")
	assert.Equal(t, string(domain.AdminStatusPendingAuthorization), bob["status"])
	bobID, _ := bob["id"].(string)

	status, body := s.call(t, fiber.MethodPost, "/auth/login", "", map[string]string{"identifier": "bob", "password": strongPassword})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "NOT_YET_AUTHORIZED", errorCode(body))

	status, body = s.call(t, fiber.MethodGet, "/admins/pending", rootToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(t, body), 1)

	status, body = s.call(t, fiber.MethodPost, "/admins/"+bobID+"/authorize", rootToken, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, string(domain.AdminStatusAuthorized), data(t, body)["status"])

	bobToken := s.login(t, "bob")
	status, body = s.call(t, fiber.MethodGet, "/admins", bobToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(t, body), 2)

	status, _ = s.call(t, fiber.MethodPost, "/admins/"+bobID+"/deactivate", bobToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = s.call(t, fiber.MethodPost, "/admins/"+bobID+"/revoke", rootToken, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, string(domain.AdminStatusRevoked), data(t, body)["status"])

	status, _ = s.call(t, fiber.MethodGet, "/admins", bobToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status, "revocation ends live sessions")
}

func TestSubmissionReview(t *testing.T) {
	s := newTestServer(t)
	token := s.bootstrap(t)

	submission := &domain.Submission{
		Email:  "customer@example.com",
		Type:   "pcs",
		Status: domain.SubmissionStatusPending,
		Coupons: []domain.CouponItem{
			{Code: "PCS-1", Amount: decimal.NewFromInt(20), Status: domain.CouponStatusPending},
			{Code: "PCS-2", Amount: decimal.NewFromInt(50), Status: domain.CouponStatusPending},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.submissions.Create(context.Background(), submission))
	base := "/submissions/" + submission.ID

	status, body := s.call(t, fiber.MethodGet, "/submissions?status=pending&type=pcs", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(t, body), 1)

	status, body = s.call(t, fiber.MethodPut, base+"/coupons/1/status", token, map[string]string{"status": "rejected"})
	require.Equal(t, fiber.StatusOK, status, body)
	coupons, _ := data(t, body)["coupons"].([]any)
	require.Len(t, coupons, 2)
	assert.Equal(t, "rejected", coupons[1].(map[string]any)["status"])

	status, body = s.call(t, fiber.MethodPut, base+"/coupons/0/status", token, map[string]string{"status": "verified"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, string(domain.SubmissionStatusPartiallyVerified), data(t, body)["status"])

	status, body = s.call(t, fiber.MethodPut, base+"/coupons/7/status", token, map[string]string{"status": "verified"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.call(t, fiber.MethodPut, base+"/coupons/x/status", token, map[string]string{"status": "verified"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.call(t, fiber.MethodPut, base+"/coupons/0/status", token, map[string]string{"status": "partially_verified"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.call(t, fiber.MethodPut, base+"/status", token, map[string]any{"status": "verified", "admin_notes": "all good"})
	require.Equal(t, fiber.StatusOK, status, body)
	updated := data(t, body)
	assert.Equal(t, string(domain.SubmissionStatusVerified), updated["status"])
	assert.Equal(t, "all good", updated["adminNotes"])
	assert.Equal(t, "root", updated["updatedBy"])

	status, body = s.call(t, fiber.MethodPost, base+"/email-sent", token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, data(t, body)["emailSent"])

	status, body = s.call(t, fiber.MethodGet, "/submissions/missing", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRefundReview(t *testing.T) {
	s := newTestServer(t)
	token := s.bootstrap(t)

	refund := &domain.RefundRequest{
		ReferenceNumber: "RB-2001",
		Email:           "customer@example.com",
		TotalAmount:     decimal.RequireFromString("75.50"),
		Status:          domain.RefundStatusPending,
		SubmittedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.refunds.Create(context.Background(), refund))

	status, body := s.call(t, fiber.MethodGet, "/refunds/RB-2001", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, refund.ID, data(t, body)["id"])

	status, body = s.call(t, fiber.MethodPut, "/refunds/"+refund.ID+"/status", token, map[string]string{"status": "approved"})
	require.Equal(t, fiber.StatusOK, status, body)
	approved := data(t, body)
	assert.Equal(t, string(domain.RefundStatusApproved), approved["status"])
	assert.Equal(t, "root", approved["processedBy"])

	status, body = s.call(t, fiber.MethodPut, "/refunds/"+refund.ID+"/status", token, map[string]string{"status": "lost"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.call(t, fiber.MethodGet, "/refunds?status=approved", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(t, body), 1)

	status, body = s.call(t, fiber.MethodGet, "/notifications?unread=true", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var kinds []string
	for _, item := range list(t, body) {
		kinds = append(kinds, item.(map[string]any)["type"].(string))
	}
	assert.Contains(t, kinds, string(domain.NotificationRefundUpdated))
}

func TestContactInbox(t *testing.T) {
	s := newTestServer(t)
	token := s.bootstrap(t)

	msg := &domain.ContactMessage{Name: "Eve", Email: "eve@example.com", Subject: "Question", Message: "Hi", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.contacts.Create(context.Background(), msg))
	path := "/contacts/" + msg.ID

	status, body := s.call(t, fiber.MethodGet, "/contacts?unread=true", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(t, body), 1)

	status, body = s.call(t, fiber.MethodPost, path+"/read", token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, data(t, body)["isRead"])
	assert.Equal(t, "root", data(t, body)["readBy"])

	status, body = s.call(t, fiber.MethodGet, "/contacts?unread=true", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, list(t, body))

	status, body = s.call(t, fiber.MethodPost, path+"/unread", token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, false, data(t, body)["isRead"])

	status, _ = s.call(t, fiber.MethodDelete, path, token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = s.call(t, fiber.MethodGet, path, token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestNotificationsReadAll(t *testing.T) {
	s := newTestServer(t)
	token := s.bootstrap(t)
	s.register(t, "carol")

	status, body := s.call(t, fiber.MethodGet, "/notifications/count", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, data(t, body)["count"], "one admin_registered entry per registration")

	status, body = s.call(t, fiber.MethodGet, "/notifications", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	items := list(t, body)
	require.Len(t, items, 2)
	firstID, _ := items[0].(map[string]any)["id"].(string)

	status, _ = s.call(t, fiber.MethodPost, "/notifications/"+firstID+"/read", token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = s.call(t, fiber.MethodPost, "/notifications/read-all", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["count"])

	status, body = s.call(t, fiber.MethodGet, "/notifications/count", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, data(t, body)["count"])
}

func TestStatisticsEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.bootstrap(t)
	require.NoError(t, s.submissions.Create(context.Background(), &domain.Submission{
		Email:   "c@example.com",
		Type:    "transcash",
		Status:  domain.SubmissionStatusVerified,
		Coupons: []domain.CouponItem{{Code: "T-1", Amount: decimal.NewFromInt(10), Status: domain.CouponStatusVerified}},
	}))

	status, body := s.call(t, fiber.MethodGet, "/statistics", token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.NotEmpty(t, data(t, body))
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "root")

	attempt := map[string]string{"identifier": "root", "password": "Wr0ng!pass"}
	for i := 0; i < 5; i++ {
		status, _ := s.call(t, fiber.MethodPost, "/auth/login", "", attempt)
		require.Equal(t, fiber.StatusUnauthorized, status, "attempt %d", i+1)
	}
	status, body := s.call(t, fiber.MethodPost, "/auth/login", "", attempt)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", errorCode(body))
}
