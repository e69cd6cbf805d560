// Package e2e runs the guardian session scenarios against the HTTP shell,
// in process, with a stub EduRider backend.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"guardian/e2e/steps/home"
	"guardian/e2e/steps/session"
	"guardian/internal/api"
	"guardian/internal/app"
	"guardian/internal/kv"
	"guardian/internal/platform/logger"
	sessionstore "guardian/internal/session"
	httptransport "guardian/internal/transport/http"
)

// TestContext is the per-scenario world: one persisted key space, one stub
// backend, and the shell built over them.
type TestContext struct {
	kv      *kv.InMemoryStore
	backend *httptest.Server
	mux     *http.ServeMux
	alerts  *alertRecorder
	shell   http.Handler

	lastStatus int
	lastBody   []byte
}

func newTestContext() *TestContext {
	tc := &TestContext{
		kv:     kv.NewInMemory(),
		mux:    http.NewServeMux(),
		alerts: &alertRecorder{},
	}
	tc.mux.HandleFunc("GET /api/auth/parent/google-login/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"auth_url":"https://accounts.google.com/o/oauth2/auth?client_id=e2e"}`))
	})
	tc.backend = httptest.NewServer(tc.mux)
	return tc
}

func (tc *TestContext) close() {
	tc.backend.Close()
}

// Launch builds a fresh shell over the persisted keys, as a relaunch would.
func (tc *TestContext) Launch(ctx context.Context) {
	log := logger.Discard()
	store := sessionstore.New(tc.kv, sessionstore.WithLogger(log))
	a := app.New(store, api.New(tc.backend.URL, api.WithLogger(log)), dismissingBrowser{}, tc.alerts, app.WithLogger(log))
	a.Start(ctx)
	tc.shell = httptransport.NewRouter(httptransport.NewHandler(a, log))
}

func (tc *TestContext) Do(method, path, body string) error {
	if tc.shell == nil {
		return fmt.Errorf("app not launched")
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	tc.shell.ServeHTTP(rr, req)
	tc.lastStatus = rr.Code
	tc.lastBody = bytes.Clone(rr.Body.Bytes())
	return nil
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }

func (tc *TestContext) ResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", tc.lastBody, err)
	}
	var cur any = body
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q not found in %s", field, tc.lastBody)
		}
		if cur, ok = m[part]; !ok {
			return nil, nil
		}
	}
	return cur, nil
}

func (tc *TestContext) Stored() map[string]string { return tc.kv.Snapshot() }

// StubStudent makes the backend answer GET /api/students/{id}/ with status and body.
func (tc *TestContext) StubStudent(id string, status int, body string) {
	tc.mux.HandleFunc("GET /api/students/"+id+"/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (tc *TestContext) Alerts() []string { return tc.alerts.messages() }

type alertRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *alertRecorder) Alert(_ context.Context, _, message string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, message)
	r.mu.Unlock()
}

func (r *alertRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

type dismissingBrowser struct{}

func (dismissingBrowser) OpenAuthSession(context.Context, string, string) (app.BrowserResult, error) {
	return app.BrowserDismiss, nil
}

// InitializeScenario registers all step definitions from modular packages.
func InitializeScenario(sc *godog.ScenarioContext) {
	tc := newTestContext()
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.close()
		return ctx, err
	})
	session.RegisterSteps(sc, tc)
	home.RegisterSteps(sc, tc)
}
