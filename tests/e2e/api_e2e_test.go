package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/allive/internal/auth"
	"github.com/allive/internal/db"
	"github.com/allive/internal/handler"
	"github.com/allive/internal/metric"
	"github.com/allive/internal/router"
	"github.com/gin-gonic/gin"
)

type e2eSuite struct {
	handler http.Handler
	user    *localClient
	guest   *localClient
	now     time.Time
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp, nil
}

func (c *localClient) send(t *testing.T, method, path, contentType, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func (c *localClient) postJSON(t *testing.T, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, data := c.send(t, http.MethodPost, path, "application/json", body)
	return resp, decode(t, data)
}

func (c *localClient) postForm(t *testing.T, path string, values url.Values) (*http.Response, map[string]any) {
	t.Helper()
	resp, data := c.send(t, http.MethodPost, path, "application/x-www-form-urlencoded", values.Encode())
	return resp, decode(t, data)
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode %q: %v", string(data), err)
	}
	return payload
}

func TestE2E_HabitTracking(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("guard", suite.testGuard)
	t.Run("auth", suite.testAuth)
	t.Run("exercise", suite.testExercise)
	t.Run("nutrition", suite.testNutrition)
	t.Run("sleep", suite.testSleep)
	t.Run("hydration", suite.testHydration)
	t.Run("stats", suite.testStats)
	t.Run("logout", suite.testLogout)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Init(db.Options{Driver: "sqlite", URL: dsn, Silent: true})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	now := time.Date(2025, 3, 12, 21, 0, 0, 0, time.Local)
	provider := auth.NewLocalProvider(gdb, auth.NewTokenIssuer("e2e-secret", time.Hour, 24*time.Hour))
	api := handler.NewAPI(gdb, provider, metric.FixedClock(now))
	h := router.SetupRouter(api, router.Options{SessionSecret: "e2e-secret"})

	return &e2eSuite{
		handler: h,
		user:    newLocalClient(h),
		guest:   newLocalClient(h),
		now:     now,
	}
}

func (s *e2eSuite) testGuard(t *testing.T) {
	for _, path := range []string{"/", "/stats", "/exercises", "/nutrition", "/sleep", "/hydration"} {
		resp, _ := s.guest.send(t, http.MethodGet, path, "", "")
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
			t.Fatalf("GET %s as guest: expected redirect to /login, got %d %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}

	resp, _ := s.guest.send(t, http.MethodGet, "/about", "", "")
	if resp.StatusCode == http.StatusFound {
		t.Fatal("expected unclassified path to pass through")
	}
}

func (s *e2eSuite) testAuth(t *testing.T) {
	resp, body := s.user.postJSON(t, "/api/auth/signup", `{"email":"maria@example.com","password":"corto","username":"maria"}`)
	if resp.StatusCode != http.StatusBadRequest || body["ok"] != false {
		t.Fatalf("expected short password rejection, got %d %v", resp.StatusCode, body)
	}

	resp, body = s.user.postJSON(t, "/api/auth/signup", `{"email":"maria@example.com","password":"secreto123","username":"maria"}`)
	if resp.StatusCode != http.StatusCreated || body["ok"] != true {
		t.Fatalf("expected signup success, got %d %v", resp.StatusCode, body)
	}

	resp, _ = s.user.send(t, http.MethodGet, "/login", "", "")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/stats" {
		t.Fatalf("expected signed-in user to be sent to /stats, got %d", resp.StatusCode)
	}

	resp, body = s.guest.postJSON(t, "/api/auth/login", `{"email":"maria@example.com","password":"otra"}`)
	if resp.StatusCode != http.StatusUnauthorized || body["ok"] != false {
		t.Fatalf("expected login failure, got %d %v", resp.StatusCode, body)
	}
}

func (s *e2eSuite) testExercise(t *testing.T) {
	resp, body := s.user.postForm(t, "/exercises/entries", url.Values{"exerciseType": {"correr"}, "duration": {"-5"}, "intensity": {"alta"}})
	if resp.StatusCode != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("expected validation failure, got %d %v", resp.StatusCode, body)
	}

	resp, body = s.user.postForm(t, "/exercises/entries", url.Values{"exerciseType": {"correr"}, "duration": {"35"}, "intensity": {"alta"}})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("expected exercise saved, got %d %v", resp.StatusCode, body)
	}

	resp, data := s.user.send(t, http.MethodGet, "/exercises", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected exercise dashboard, got %d", resp.StatusCode)
	}
	progress := decode(t, data)["progress"].(map[string]any)
	if progress["current"] != 35.0 || progress["streak"] != 1.0 {
		t.Fatalf("unexpected exercise progress %v", progress)
	}
}

func (s *e2eSuite) testNutrition(t *testing.T) {
	resp, body := s.user.postJSON(t, "/nutrition/goals", `{"meals_per_day":2}`)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("expected goals saved, got %d %v", resp.StatusCode, body)
	}
	resp, body = s.user.postJSON(t, "/nutrition/goals", `{"meals_per_day":2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected idempotent goals save, got %d %v", resp.StatusCode, body)
	}

	for _, meal := range []string{"desayuno", "almuerzo"} {
		resp, body = s.user.postForm(t, "/nutrition/entries", url.Values{"meal_type": {meal}, "description": {"ensalada"}, "is_healthy": {"on"}})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected meal saved, got %d %v", resp.StatusCode, body)
		}
	}

	_, data := s.user.send(t, http.MethodGet, "/nutrition", "", "")
	progress := decode(t, data)["progress"].(map[string]any)
	if progress["current"] != 2.0 || progress["goal"] != 2.0 || progress["streak"] != 1.0 {
		t.Fatalf("unexpected nutrition progress %v", progress)
	}
}

func (s *e2eSuite) testSleep(t *testing.T) {
	resp, body := s.user.postForm(t, "/sleep/entries", url.Values{"bedtime": {"06:00"}, "wakeup": {"06:00"}, "quality": {"buena"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected zero-length sleep to be rejected, got %d %v", resp.StatusCode, body)
	}

	resp, body = s.user.postForm(t, "/sleep/entries", url.Values{"bedtime": {"23:00"}, "wakeup": {"06:30"}, "quality": {"buena"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected sleep saved, got %d %v", resp.StatusCode, body)
	}

	_, data := s.user.send(t, http.MethodGet, "/sleep", "", "")
	dashboard := decode(t, data)
	history := dashboard["history"].([]any)
	if len(history) != 1 || history[0].(map[string]any)["total_hours"] != 7.5 {
		t.Fatalf("unexpected sleep history %v", history)
	}

	resp, data = s.user.send(t, http.MethodGet, "/sleep/tips", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "Consejos para un Mejor Descanso") {
		t.Fatalf("unexpected sleep tips %d %s", resp.StatusCode, data)
	}
}

func (s *e2eSuite) testHydration(t *testing.T) {
	resp, body := s.user.postJSON(t, "/hydration/entries", `{"beverage_type":"agua","quantity":0}`)
	if resp.StatusCode != http.StatusBadRequest || body["message"] != "La cantidad debe ser un número positivo." {
		t.Fatalf("expected quantity rejection, got %d %v", resp.StatusCode, body)
	}

	resp, body = s.user.postJSON(t, "/hydration/entries", `{"beverage_type":"agua","quantity":9}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected hydration saved, got %d %v", resp.StatusCode, body)
	}
}

func (s *e2eSuite) testStats(t *testing.T) {
	resp, data := s.user.send(t, http.MethodGet, "/stats", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected stats overview, got %d", resp.StatusCode)
	}
	overview := decode(t, data)
	// exercise 35/30 -> 100, nutrition 2/2 healthy -> 100, sleep 7.5/8 -> 93, hydration 9/8 -> 100
	if overview["overall"] != 98.0 {
		t.Fatalf("unexpected overall completion %v", overview)
	}

	today := metric.TodayString(s.now)
	resp, data = s.user.send(t, http.MethodGet, "/stats/calendar?month="+today[:7], "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), today) {
		t.Fatalf("expected calendar to include today, got %d %s", resp.StatusCode, data)
	}

	resp, _ = s.guest.send(t, http.MethodGet, "/stats/weekly", "", "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected guest redirect from weekly stats, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testLogout(t *testing.T) {
	resp, body := s.user.postJSON(t, "/api/auth/logout", "")
	if resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Fatalf("expected logout success, got %d %v", resp.StatusCode, body)
	}

	resp, _ = s.user.send(t, http.MethodGet, "/stats", "", "")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect after logout, got %d", resp.StatusCode)
	}
}
