package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/zma-auto/taxi-landing/internal/config"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

func TestSetupMetricsExposesLeadMetrics(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveSubmission("Hero - Получить расчет", true, 0.01)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "zma_crm_submissions_total") {
		t.Fatalf("expected submissions counter to be exported")
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected go runtime collector to be registered")
	}
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Env:                "test",
		CRMWebhookURL:      "http://127.0.0.1:1/webhook",
		CRMRetryInterval:   time.Minute,
		PromoDeadline:      appconfig.DefaultPromoDeadline,
		PromoTimezone:      "Europe/Moscow",
		SessionTTL:         time.Minute,
		SubmitRatePerSec:   1,
		SubmitRateBurst:    5,
		ContactManagerName: "Юрий Котов",
	}
}

func TestSetupAppServesLandingWithoutRedis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, m := setupMetrics()
	app := setupApp(ctx, testConfig(), m, handler, logging.New("error"))
	defer app.close()

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Юрий Котов") {
		t.Fatalf("expected contact widget to render manager name")
	}

	rr = httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}
}

func TestSetupAppWithRetryQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()
	cfg.CRMRetryEnabled = true

	handler, m := setupMetrics()
	app := setupApp(ctx, cfg, m, handler, logging.New("error"))
	defer app.close()

	body := strings.NewReader(`{"name":"Иван","phone":"+7999","telegram":"@ivan"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/forms/hero/submit", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	n, err := mr.List("crm:retry")
	if err != nil {
		t.Fatalf("expected parked lead: %v", err)
	}
	if len(n) != 1 {
		t.Fatalf("expected 1 parked lead, got %d", len(n))
	}
}
