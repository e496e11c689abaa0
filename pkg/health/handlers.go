package health

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// CheckFunc reports whether a dependency of the server can take traffic.
type CheckFunc func(ctx context.Context) error

type Checker interface {
	SetReady(ready bool)
	AddReadinessCheck(name string, check CheckFunc)
	Register(mux *http.ServeMux, livenessPath, readinessPath string)
	LivenessHandler(w http.ResponseWriter, r *http.Request)
	ReadinessHandler(w http.ResponseWriter, r *http.Request)
}

type checker struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

var _ Checker = &checker{}

func NewChecker() Checker {
	return &checker{checks: make(map[string]CheckFunc)}
}

func (c *checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// AddReadinessCheck adds a check consulted by the readiness probe once the
// server is marked ready. A check registered twice under one name is replaced.
func (c *checker) AddReadinessCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

func (c *checker) Register(mux *http.ServeMux, livenessPath, readinessPath string) {
	mux.HandleFunc(livenessPath, c.LivenessHandler)
	mux.HandleFunc(readinessPath, c.ReadinessHandler)
}

func (c *checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (c *checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if !c.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}

	if failed := c.failedChecks(r.Context()); len(failed) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready: " + strings.Join(failed, ", ")))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (c *checker) failedChecks(ctx context.Context) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var failed []string
	for name, check := range c.checks {
		if err := check(ctx); err != nil {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}
