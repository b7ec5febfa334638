package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/messdash/internal/dashboard"
	"github.com/hitoshi/messdash/internal/directory"
	"github.com/hitoshi/messdash/internal/middleware"
	"github.com/hitoshi/messdash/internal/model"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	var buf bytes.Buffer
	deps := &RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(&buf, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		DirectoryService: &fakeDirectoryService{
			choices: directory.Choices{
				Users:         []model.User{{ID: "u1", Username: "Arjun", WhatsappID: "911"}},
				DefaultUserID: "u1",
			},
			session: model.Session{UserName: "Arjun", WhatsappID: "911"},
		},
		DashboardService: &fakeDashboardService{
			session:    model.Session{UserName: "Arjun", WhatsappID: "911"},
			hasSession: true,
			view: dashboard.MonthView{
				Month:  model.Month{Year: 2024, Month: time.May},
				Orders: []model.Order{},
			},
		},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics"))
		}),
	}
	return NewRouter(deps)
}

func doGet(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func TestRouter_AllEndpointsReachable(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		target string
		body   string
		want   int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"GET", "/api/users", "", http.StatusOK},
		{"POST", "/api/login", `{"user_id":"u1"}`, http.StatusOK},
		{"GET", "/api/me", "", http.StatusOK},
		{"GET", "/api/orders/2024-05", "", http.StatusOK},
		{"GET", "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("ステータス = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRouter_AppliesSecurityAndCORSHeaders(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/api/users")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want http://localhost:3000", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-IDヘッダーが設定されていない")
	}
}

func TestRouter_HealthResponse(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/health")

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスがJSONではない: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestRouter_HealthSkipsRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(1, 1))
	t.Cleanup(rl.Stop)

	var buf bytes.Buffer
	deps := &RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(&buf, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		DirectoryService:  &fakeDirectoryService{},
		DashboardService:  &fakeDashboardService{hasSession: true},
		MetricsHandler:    http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	}
	router := NewRouter(deps)

	// バースト1のリミットをAPIで使い切る
	doGet(t, router, "/api/me")
	if rec := doGet(t, router, "/api/me"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("2回目のAPI: ステータス = %d, want 429", rec.Code)
	}

	// /healthはレート制限の対象外
	for i := 0; i < 5; i++ {
		if rec := doGet(t, router, "/health"); rec.Code != http.StatusOK {
			t.Fatalf("/health %d回目: ステータス = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestRouter_PanicReturns500(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	var buf bytes.Buffer
	deps := &RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(&buf, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		DirectoryService:  &fakeDirectoryService{},
		DashboardService:  &fakeDashboardService{},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("metrics exploded")
		}),
	}
	router := NewRouter(deps)

	rec := doGet(t, router, "/metrics")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("ステータス = %d, want 500", rec.Code)
	}
}
