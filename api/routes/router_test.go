package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/feedmill-backend/api/middleware"
	"github.com/angelmondragon/feedmill-backend/internal/auth"
	"github.com/angelmondragon/feedmill-backend/internal/customers"
	"github.com/angelmondragon/feedmill-backend/internal/feeds"
	"github.com/angelmondragon/feedmill-backend/internal/orders"
	"github.com/angelmondragon/feedmill-backend/internal/pricing"
	"github.com/angelmondragon/feedmill-backend/internal/stock"
	pkgAuth "github.com/angelmondragon/feedmill-backend/pkg/auth"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	"github.com/angelmondragon/feedmill-backend/pkg/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                    "secret",
			CustomerSecret:            "customer-secret",
			Issuer:                    "feedmill",
			ExpirationMinutes:         60,
			CustomerExpirationMinutes: 60,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 2,
			LoginIPLimit:    10,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

type testEnv struct {
	handler http.Handler
	cfg     *config.Config
	orders  *stubOrderService
	store   *fakeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	metrics.NewOrderMetrics(reg)

	env := &testEnv{cfg: cfg, orders: &stubOrderService{}, store: newFakeStore()}
	env.handler = NewRouter(cfg, logg, stubPinger{}, env.store, stubSessionChecker{}, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), Services{
		Auth:      stubAuthService{},
		Feeds:     stubFeedService{},
		Stock:     stubStockService{},
		Customers: stubCustomerService{},
		Orders:    env.orders,
	})
	return env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(e.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		AdminID: uuid.New(),
		Role:    enums.RoleAdmin,
		JTI:     uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	return token
}

func (e *testEnv) customerToken(t *testing.T) string {
	t.Helper()
	token, err := pkgAuth.MintCustomerToken(e.cfg.JWT, time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("mint customer token: %v", err)
	}
	return token
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(http.MethodGet, "/health/live", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", rec.Code)
	}
	rec := env.do(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "feedmill_order_placement_seconds") {
		t.Fatalf("expected order metrics exported, got %s", rec.Body.String())
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/feeds"},
		{http.MethodGet, "/api/v1/stock/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/customers/check"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/admin/v1/me"},
	}
	for _, p := range paths {
		if rec := env.do(p.method, p.path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", p.method, p.path, rec.Code)
		}
	}

	customerOnly := map[string]string{"Authorization": "Bearer " + env.customerToken(t)}
	if rec := env.do(http.MethodGet, "/api/v1/feeds", "", customerOnly); rec.Code != http.StatusUnauthorized {
		t.Fatalf("customer token must not pass admin auth, got %d", rec.Code)
	}

	admin := map[string]string{"Authorization": "Bearer " + env.adminToken(t)}
	if rec := env.do(http.MethodGet, "/api/v1/feeds", "", admin); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin token got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPlaceOrderNeedsCustomerTokenAndIdempotencyKey(t *testing.T) {
	env := newTestEnv(t)
	body := `{"items":[{"feedProductId":"` + uuid.NewString() + `","quantity":2}],"paymentMethod":"CASH"}`
	admin := "Bearer " + env.adminToken(t)

	rec := env.do(http.MethodPost, "/api/v1/orders", body, map[string]string{"Authorization": admin, "Idempotency-Key": "k1"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without customer token got %d", rec.Code)
	}

	customer := env.customerToken(t)
	rec = env.do(http.MethodPost, "/api/v1/orders", body, map[string]string{"Authorization": admin, middleware.CustomerTokenHeader: customer})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", rec.Code)
	}

	headers := map[string]string{"Authorization": admin, middleware.CustomerTokenHeader: customer, "Idempotency-Key": "k2"}
	first := env.do(http.MethodPost, "/api/v1/orders", body, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", first.Code, first.Body.String())
	}
	replay := env.do(http.MethodPost, "/api/v1/orders", body, headers)
	if replay.Code != http.StatusCreated || replay.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed response, got %d %s", replay.Code, replay.Body.String())
	}
	if env.orders.placed != 1 {
		t.Fatalf("expected one placement, got %d", env.orders.placed)
	}
}

func TestPreviewSkipsIdempotencyAndCustomerToken(t *testing.T) {
	env := newTestEnv(t)
	body := `{"items":[{"feedProductId":"` + uuid.NewString() + `","quantity":2}]}`

	rec := env.do(http.MethodPost, "/api/v1/orders/preview", body, map[string]string{"Authorization": "Bearer " + env.adminToken(t)})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginIsRateLimitedPerEmail(t *testing.T) {
	env := newTestEnv(t)
	body := `{"email":"owner@mill.example","password":"pw"}`

	for i := 0; i < 2; i++ {
		if rec := env.do(http.MethodPost, "/api/admin/v1/auth/login", body, nil); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, rec.Code)
		}
	}
	if rec := env.do(http.MethodPost, "/api/admin/v1/auth/login", body, nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) Active(ctx context.Context, accessID string, adminID uuid.UUID) (bool, error) {
	return true, nil
}

type fakeStore struct {
	mu       sync.Mutex
	data     map[string]string
	counters map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, counters: map[string]int64{}}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (f *fakeStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[scope]++
	return f.counters[scope] <= limit, f.counters[scope], nil
}

type stubAuthService struct{}

func (stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.AdminLoginResponse, error) {
	return &auth.AdminLoginResponse{AccessToken: "token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubAuthService) AdminLogout(ctx context.Context, accessID string) error { return nil }

func (stubAuthService) AdminInfo(ctx context.Context, adminID uuid.UUID) (*auth.AdminDTO, error) {
	return &auth.AdminDTO{ID: adminID}, nil
}

type stubFeedService struct{}

func (stubFeedService) Create(ctx context.Context, input feeds.CreateFeedInput) (*feeds.FeedDTO, error) {
	return &feeds.FeedDTO{ID: uuid.New()}, nil
}

func (stubFeedService) UpdateUnitSize(ctx context.Context, id uuid.UUID, unitSize int) (*feeds.FeedDTO, error) {
	return &feeds.FeedDTO{ID: id, UnitSize: unitSize}, nil
}

func (stubFeedService) List(ctx context.Context) ([]feeds.FeedDTO, error) {
	return []feeds.FeedDTO{}, nil
}

type stubStockService struct{}

func (stubStockService) GetBalance(ctx context.Context, id uuid.UUID) (*stock.BalanceDTO, error) {
	return &stock.BalanceDTO{FeedProductID: id}, nil
}

func (stubStockService) RecordProduction(ctx context.Context, input stock.RecordProductionInput) (*stock.MovementResult, error) {
	return &stock.MovementResult{}, nil
}

func (stubStockService) Adjust(ctx context.Context, input stock.AdjustInput) (*stock.MovementResult, error) {
	return &stock.MovementResult{}, nil
}

func (stubStockService) ListTransactions(ctx context.Context, input stock.ListTransactionsInput) (*stock.TransactionList, error) {
	return &stock.TransactionList{}, nil
}

type stubCustomerService struct{}

func (stubCustomerService) CreateOrGet(ctx context.Context, input customers.CheckInput) (*customers.CheckResult, error) {
	return &customers.CheckResult{Customer: customers.CustomerDTO{ID: uuid.New()}}, nil
}

type stubOrderService struct {
	mu     sync.Mutex
	placed int
}

func (s *stubOrderService) PreviewOrder(ctx context.Context, input orders.PreviewInput) (*pricing.Preview, error) {
	return &pricing.Preview{}, nil
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placed++
	return &orders.OrderDTO{ID: uuid.New(), CustomerID: input.CustomerID, AdminUserID: input.AdminUserID}, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: input.OrderID}, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID}, nil
}

func (s *stubOrderService) ListOrders(ctx context.Context, input orders.ListOrdersInput) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}
