package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/certwatch-app/cw-sslcheck/internal/checker"
	"github.com/certwatch-app/cw-sslcheck/internal/config"
	"github.com/certwatch-app/cw-sslcheck/internal/state"
)

type recordingNotifier struct {
	err   error
	calls [][]checker.Outcome
	mu    sync.Mutex
}

func (n *recordingNotifier) Notify(_ context.Context, outcomes []checker.Outcome) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, outcomes)
	return n.err
}

func testConfig(urls ...string) *config.Config {
	return &config.Config{
		URLs:        urls,
		LogLevel:    "info",
		NameMatch:   "exact",
		Timeout:     5 * time.Second,
		Interval:    time.Hour,
		WarningDays: 30,
		ErrorDays:   14,
	}
}

func TestRunOnce(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	a := New(testConfig(srv.URL, "not a url"), nil, WithNotifier(notifier))

	outcomes := a.RunOnce(context.Background())

	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
	if !outcomes[0].OK() {
		t.Errorf("outcomes[0] error = %v, want verdict", outcomes[0].Err)
	}
	if outcomes[1].Err == nil || outcomes[1].Err.Kind != checker.KindURLParse {
		t.Errorf("outcomes[1].Err = %v, want url_parse", outcomes[1].Err)
	}
	if len(notifier.calls) != 1 || len(notifier.calls[0]) != 2 {
		t.Errorf("notifier calls = %d, want 1 call with 2 outcomes", len(notifier.calls))
	}
	if got := a.LastRun(); len(got) != 2 {
		t.Errorf("LastRun() len = %d, want 2", len(got))
	}
}

func TestRunOnce_NotifierErrorIsNotFatal(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	a := New(testConfig("not a url"), nil, WithNotifier(notifier))

	outcomes := a.RunOnce(context.Background())
	if len(outcomes) != 1 {
		t.Fatalf("len(outcomes) = %d, want 1", len(outcomes))
	}
	if len(notifier.calls) != 1 {
		t.Errorf("notifier calls = %d, want 1", len(notifier.calls))
	}
}

func TestRunOnce_NoNotifierWithoutWebhook(t *testing.T) {
	a := New(testConfig("not a url"), nil)
	if a.notifier != nil {
		t.Errorf("notifier = %v, want nil without webhook", a.notifier)
	}

	cfg := testConfig("not a url")
	cfg.SlackWebhookURL = "https://hooks.slack.com/services/T/B/X"
	if New(cfg, nil).notifier == nil {
		t.Error("notifier = nil, want slack notifier when webhook configured")
	}
}

func TestRunOnce_LogsStatusTransitions(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL

	core, logs := observer.New(zapcore.InfoLevel)
	m := state.NewManagerWithStateDir(t.TempDir())
	a := New(testConfig(url), zap.New(core), WithState(m))

	a.RunOnce(context.Background())
	if logs.FilterMessage("certificate status changed").Len() != 0 {
		t.Error("first run logged a transition, want none")
	}

	srv.Close()
	a.RunOnce(context.Background())

	changed := logs.FilterMessage("certificate status changed").All()
	if len(changed) != 1 {
		t.Fatalf("transition logs = %d, want 1", len(changed))
	}
	if got := changed[0].ContextMap()["to"]; got != "failed:network" {
		t.Errorf("to = %v, want failed:network", got)
	}
	if got := m.GetStatus(url); got != "failed:network" {
		t.Errorf("GetStatus() = %q, want failed:network", got)
	}
}

func TestHandler(t *testing.T) {
	a := New(testConfig("not a url"), nil)
	h := a.Handler()

	tests := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusServiceUnavailable},
		{"/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}

	a.RunOnce(context.Background())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz after run = %d, want 200", rec.Code)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	notifier := &recordingNotifier{}
	a := New(testConfig("not a url"), nil, WithNotifier(notifier))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for a.LastRun() == nil {
		select {
		case <-deadline:
			t.Fatal("initial run did not complete")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRun_LogsStateOrigin(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()

	core, logs := observer.New(zapcore.InfoLevel)
	fresh := state.NewManagerWithStateDir(dir)
	a := New(testConfig("not a url"), zap.New(core), WithState(fresh))
	if err := a.Run(canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if logs.FilterMessage("no previous state found, starting fresh").Len() != 1 {
		t.Error("expected fresh state log entry on first run")
	}

	resumed := state.NewManagerWithStateDir(dir)
	if err := resumed.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	core, logs = observer.New(zapcore.InfoLevel)
	a = New(testConfig("not a url"), zap.New(core), WithState(resumed))
	if err := a.Run(canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	entries := logs.FilterMessage("resuming from previous state").All()
	if len(entries) != 1 {
		t.Fatalf("resume log entries = %d, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["state_file"] != resumed.Path() {
		t.Errorf("state_file = %v, want %v", ctx["state_file"], resumed.Path())
	}
	if ctx["last_run_at"] == nil {
		t.Error("last_run_at missing from resume log entry")
	}
}

func TestRunOnce_FailureLogsPreviousStatus(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := state.NewManagerWithStateDir(t.TempDir())
	a := New(testConfig("not a url"), zap.New(core), WithState(m))

	a.RunOnce(context.Background())
	first := logs.FilterMessage("certificate check failed").All()
	if len(first) != 1 {
		t.Fatalf("failure logs = %d, want 1", len(first))
	}
	if _, ok := first[0].ContextMap()["previous_status"]; ok {
		t.Error("first run logged a previous_status, want none")
	}

	a.RunOnce(context.Background())
	all := logs.FilterMessage("certificate check failed").All()
	if len(all) != 2 {
		t.Fatalf("failure logs = %d, want 2", len(all))
	}
	if got := all[1].ContextMap()["previous_status"]; got != "failed:url_parse" {
		t.Errorf("previous_status = %v, want failed:url_parse", got)
	}
}

func TestNew_WithChecker(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := checker.New(checker.Options{
		Logger: zap.NewNop(),
		Clock:  func() time.Time { return fixed },
	})

	a := New(testConfig("not a url"), nil, WithChecker(c))
	outcomes := a.RunOnce(context.Background())

	if len(outcomes) != 1 {
		t.Fatalf("len(outcomes) = %d, want 1", len(outcomes))
	}
	if !outcomes[0].CheckedAt.Equal(fixed) {
		t.Errorf("CheckedAt = %v, want %v from the injected checker", outcomes[0].CheckedAt, fixed)
	}
}
