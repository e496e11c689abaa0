package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func probe(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	c := NewChecker()

	rec := probe(t, http.HandlerFunc(c.LivenessHandler), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	tt := map[string]struct {
		ready        bool
		checks       map[string]CheckFunc
		expectedCode int
		expectedBody string
	}{
		"not ready by default": {
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "not ready",
		},
		"ready without checks": {
			ready:        true,
			expectedCode: http.StatusOK,
			expectedBody: "ok",
		},
		"ready with passing check": {
			ready: true,
			checks: map[string]CheckFunc{
				"audit": func(context.Context) error { return nil },
			},
			expectedCode: http.StatusOK,
			expectedBody: "ok",
		},
		"failing checks are listed": {
			ready: true,
			checks: map[string]CheckFunc{
				"audit":   func(context.Context) error { return errors.New("locked") },
				"gateway": func(context.Context) error { return errors.New("empty") },
				"fine":    func(context.Context) error { return nil },
			},
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "not ready: audit, gateway",
		},
		"checks are skipped until ready": {
			checks: map[string]CheckFunc{
				"audit": func(context.Context) error { return errors.New("locked") },
			},
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "not ready",
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			c := NewChecker()
			c.SetReady(tc.ready)
			for n, check := range tc.checks {
				c.AddReadinessCheck(n, check)
			}

			rec := probe(t, http.HandlerFunc(c.ReadinessHandler), "/readyz")

			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.Equal(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func TestRegister(t *testing.T) {
	c := NewChecker()
	mux := http.NewServeMux()
	c.Register(mux, "/live", "/ready")

	assert.Equal(t, http.StatusOK, probe(t, mux, "/live").Code)
	assert.Equal(t, http.StatusServiceUnavailable, probe(t, mux, "/ready").Code)

	c.SetReady(true)
	assert.Equal(t, http.StatusOK, probe(t, mux, "/ready").Code)

	c.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, probe(t, mux, "/ready").Code)
}

func TestReadinessHandler_ThreadSafety(t *testing.T) {
	c := NewChecker()

	var wg sync.WaitGroup
	iterations := 1000

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				rec := probe(t, http.HandlerFunc(c.ReadinessHandler), "/readyz")
				assert.True(t, rec.Code == http.StatusOK || rec.Code == http.StatusServiceUnavailable)
			}
		}()
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				c.SetReady(j%2 == 0)
				c.AddReadinessCheck("audit", func(context.Context) error { return nil })
			}
		}()
	}

	wg.Wait()
}
