package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareIncrementsCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/test", "200"))

	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/test", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestAuthCounters(t *testing.T) {
	InitMetrics()

	before := testutil.ToFloat64(tokenRejections.WithLabelValues("token_expired"))
	TokenRejected("token_expired")
	if got := testutil.ToFloat64(tokenRejections.WithLabelValues("token_expired")); got != before+1 {
		t.Fatalf("expected rejection counter to increase, got %v", got)
	}

	before = testutil.ToFloat64(loginAttempts.WithLabelValues("success"))
	LoginAttempt("success")
	if got := testutil.ToFloat64(loginAttempts.WithLabelValues("success")); got != before+1 {
		t.Fatalf("expected login counter to increase, got %v", got)
	}
}

func TestRegisterExposesMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()
	LoginAttempt("success")

	r := gin.New()
	Register(r, "/metrics")

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "auth_login_attempts_total") {
		t.Fatalf("expected auth metrics in exposition output")
	}
}
