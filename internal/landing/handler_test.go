package landing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zma-auto/taxi-landing/internal/capture"
	"github.com/zma-auto/taxi-landing/internal/countdown"
	"github.com/zma-auto/taxi-landing/internal/leads"
	"github.com/zma-auto/taxi-landing/internal/session"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

type stubGateway struct {
	mu      sync.Mutex
	records []leads.Record
	result  bool
}

func (g *stubGateway) SubmitLead(_ context.Context, rec leads.Record) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, rec)
	return g.result
}

func (g *stubGateway) calls() []leads.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]leads.Record(nil), g.records...)
}

func newTestHandler(gw *stubGateway, target time.Time) (*Handler, *session.Store) {
	sessions := session.NewStore(func() *capture.Set {
		return capture.NewSet(capture.Schemas(), gw, nil)
	}, time.Minute)
	h := NewHandler(Config{
		Sessions: sessions,
		Timer:    countdown.NewTimer(target),
		Contact:  Contact{ManagerName: "Менеджер"},
		Logger:   logging.New("error"),
	})
	return h, sessions
}

func withRouteParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestDeadlineLabelUsesGenitiveMonth(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	assert.Equal(t, "15 января", deadlineLabel(time.Date(2026, time.January, 15, 23, 59, 59, 0, msk)))
	assert.Equal(t, "1 марта", deadlineLabel(time.Date(2026, time.March, 1, 0, 0, 0, 0, msk)))
}

func TestPageReusesVisitorSession(t *testing.T) {
	h, sessions := newTestHandler(&stubGateway{}, time.Now().Add(time.Hour))

	rr := httptest.NewRecorder()
	h.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, sessions.Len())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	h.Page(rr, req)
	assert.Empty(t, rr.Result().Cookies(), "known session must not be reissued")
	assert.Equal(t, 1, sessions.Len())
	assert.Contains(t, rr.Body.String(), "Прием заказов до")
}

func TestPageRendersExpiredCountdown(t *testing.T) {
	h, _ := newTestHandler(&stubGateway{}, time.Now().Add(-time.Minute))

	rr := httptest.NewRecorder()
	h.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rr.Body.String(), `data-expired="true"`)
	assert.Contains(t, rr.Body.String(), `<b data-unit="secs">0</b>`)
}

func TestFormActionSubmitMapsModelToTelegramSlot(t *testing.T) {
	gw := &stubGateway{}
	h, _ := newTestHandler(gw, time.Now().Add(time.Hour))

	form := url.Values{"name": {"Пётр"}, "phone": {"+7888"}, "model": {"Kia K5"}}
	req := httptest.NewRequest(http.MethodPost, "/forms/bottom/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withRouteParams(req, map[string]string{"formID": "bottom", "action": "submit"})
	rr := httptest.NewRecorder()
	h.FormAction(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/#bottom", rr.Header().Get("Location"))
	calls := gw.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, leads.Record{Name: "Пётр", Phone: "+7888", Telegram: "Kia K5", Source: "Форма внизу - Получить расчет"}, calls[0])
}

func TestFormActionRejectsUnknownOption(t *testing.T) {
	gw := &stubGateway{}
	h, _ := newTestHandler(gw, time.Now().Add(time.Hour))

	form := url.Values{"name": {"Пётр"}, "phone": {"+7888"}, "model": {"Lada Vesta"}}
	req := httptest.NewRequest(http.MethodPost, "/forms/bottom/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withRouteParams(req, map[string]string{"formID": "bottom", "action": "submit"})
	rr := httptest.NewRecorder()
	h.FormAction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, gw.calls())
}

func TestFormActionUnknownTargets(t *testing.T) {
	h, _ := newTestHandler(&stubGateway{}, time.Now().Add(time.Hour))

	for _, params := range []map[string]string{
		{"formID": "footer", "action": "open"},
		{"formID": "hero", "action": "explode"},
	} {
		req := withRouteParams(httptest.NewRequest(http.MethodPost, "/forms/x/y", nil), params)
		rr := httptest.NewRecorder()
		h.FormAction(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code, params)
	}
}

func TestStatusForMapsCaptureErrors(t *testing.T) {
	cases := map[error]int{
		capture.ErrIncomplete:                      http.StatusUnprocessableEntity,
		fmt.Errorf("wrap: %w", capture.ErrNotIdle): http.StatusConflict,
		capture.ErrUnknownField:                    http.StatusBadRequest,
		capture.ErrInvalidOption:                   http.StatusBadRequest,
		capture.ErrUnknownForm:                     http.StatusNotFound,
		errors.New("boom"):                         http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestCountdownReportsTarget(t *testing.T) {
	target := time.Date(2030, time.January, 15, 23, 59, 59, 0, time.UTC)
	h, _ := newTestHandler(&stubGateway{}, target)

	rr := httptest.NewRecorder()
	h.Countdown(rr, httptest.NewRequest(http.MethodGet, "/api/countdown", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"target":"2030-01-15T23:59:59Z"`)
	assert.Contains(t, rr.Body.String(), `"expired":false`)
}

func TestPageRendersCanonicalURL(t *testing.T) {
	sessions := session.NewStore(func() *capture.Set {
		return capture.NewSet(capture.Schemas(), &stubGateway{}, nil)
	}, time.Minute)
	h := NewHandler(Config{
		PublicBaseURL: "https://zma-auto.ru/",
		Sessions:      sessions,
		Timer:         countdown.NewTimer(time.Now().Add(time.Hour)),
		Logger:        logging.New("error"),
	})

	rr := httptest.NewRecorder()
	h.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rr.Body.String(), `<link rel="canonical" href="https://zma-auto.ru/">`)

	h, _ = newTestHandler(&stubGateway{}, time.Now().Add(time.Hour))
	rr = httptest.NewRecorder()
	h.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, rr.Body.String(), `rel="canonical"`)
}

func TestSubmitActionIgnoresActionParam(t *testing.T) {
	gw := &stubGateway{}
	h, _ := newTestHandler(gw, time.Now().Add(time.Hour))

	form := url.Values{"name": {"Иван"}, "phone": {"+7999"}, "telegram": {"@ivan"}}
	req := httptest.NewRequest(http.MethodPost, "/forms/steps/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = withRouteParams(req, map[string]string{"formID": "steps"})
	rr := httptest.NewRecorder()
	h.SubmitAction(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	require.Len(t, gw.calls(), 1)
	assert.Equal(t, "Этапы - Забронировать", gw.calls()[0].Source)
}
