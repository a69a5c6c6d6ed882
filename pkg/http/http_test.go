package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestSendAndReadReturnsBodyForAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "a b" || r.Header.Get("Accept") != "application/json" {
			t.Errorf("unexpected request %s %v", r.URL.RawQuery, r.Header)
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second))
	status, body, err := c.SendAndRead(context.Background(), &RequestOptions{
		URL:         srv.URL,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: map[string][]string{"q": {"a b"}},
	})
	if err != nil {
		t.Fatalf("SendAndRead: %v", err)
	}
	if status != http.StatusBadRequest || string(body) != `{"error":"nope"}` {
		t.Fatalf("status=%d body=%q", status, body)
	}
}

func TestSendAndReadCapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()), WithMaxBodyBytes(10))
	_, body, err := c.SendAndRead(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL})
	if err != nil || len(body) != 10 {
		t.Fatalf("len=%d err=%v", len(body), err)
	}
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	appErr := DataUnavailableError("no data").WithParam("reason", "network").WithError(errors.New("timeout"))
	_ = AppErrorResponse(c, appErr)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Code != "ERR_DATA_UNAVAILABLE" || resp.Data[0].Params["reason"] != "network" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if !strings.Contains(appErr.Error(), "timeout") || !errors.Is(appErr, appErr.Err) {
		t.Fatalf("AppError must wrap its cause: %v", appErr)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = AppErrorResponse(c, errors.New("plain"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("plain error status = %d", rec.Code)
	}
}

func TestErrorConstructors(t *testing.T) {
	if BadRequestError("x").Status != http.StatusBadRequest || InternalError("x").Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status mapping")
	}
}

type indicatorRequest struct {
	Indicator string `query:"indicator" default:"GDP" validate:"oneof=GDP CPI Unemployment"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?indicator=CPI", nil), httptest.NewRecorder())
	req := &indicatorRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil || req.Indicator != "CPI" {
		t.Fatalf("verr=%v req=%+v", verr, req)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	req = &indicatorRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil || req.Indicator != "GDP" {
		t.Fatalf("default not applied: verr=%v req=%+v", verr, req)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?indicator=GOLD", nil), httptest.NewRecorder())
	verr := ReadAndValidateRequest(c, &indicatorRequest{})
	if len(verr) != 1 || verr[0].Code != "ERR_ONEOF" || verr[0].Field != "Indicator" {
		t.Fatalf("unexpected validation errors %+v", verr)
	}
}

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/api/panic", func(c echo.Context) error { panic("boom") })
}

func TestServerRoutesAndRecovery(t *testing.T) {
	s := NewServer(pingHandler{}, WithPort(0))

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "pong") {
		t.Fatalf("ping: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("panic status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "econdash_http_requests_total") {
		t.Fatalf("metrics endpoint: %d", rec.Code)
	}
}
