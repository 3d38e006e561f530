package auditlog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMetaFromRequest_ForwardedFor(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-42")

	meta := MetaFromRequest(c)

	if meta.IPAddress != "203.0.113.7" {
		t.Errorf("ip = %s, want first forwarded address", meta.IPAddress)
	}
	if meta.UserAgent != "test-agent" {
		t.Errorf("user agent = %s", meta.UserAgent)
	}
	if meta.RequestID != "req-42" {
		t.Errorf("request id = %s", meta.RequestID)
	}
}

func TestMetaFromRequest_NoForwardHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.5:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	meta := MetaFromRequest(c)
	if meta.IPAddress != "192.0.2.5" {
		t.Errorf("ip = %s, want remote address", meta.IPAddress)
	}
}
