package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func TestCheckHealth(t *testing.T) {
	t.Run("no checks configured", func(t *testing.T) {
		s := newTestServer()
		s.Config.Observability.HealthChecks.Checks = nil
		h := NewHealthHandler(s)

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
		if err := h.CheckHealth(c); err != nil {
			t.Fatal(err)
		}

		var body healthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK || body.Status != statusHealthy || body.Environment != "test" {
			t.Errorf("unexpected response %d %+v", rec.Code, body)
		}
	})

	t.Run("redis down degrades", func(t *testing.T) {
		s := newTestServer()
		s.Redis = redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer s.Redis.Close()
		h := NewHealthHandler(s)

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
		if err := h.CheckHealth(c); err != nil {
			t.Fatal(err)
		}

		var body healthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK || body.Status != statusDegraded {
			t.Errorf("unexpected response %d %+v", rec.Code, body)
		}
		if check := body.Checks["redis"]; check.Status != statusUnhealthy || check.Error == "" {
			t.Errorf("unexpected redis check %+v", check)
		}
		if _, ok := body.Checks["database"]; ok {
			t.Error("database check must be skipped without a pool")
		}
	})
}
