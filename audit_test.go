package classAuth

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func auditConfig(mode ValidationMode) Config {
	cfg := testConfig(mode)
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = false
	return cfg
}

func nextEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case ev := <-sink.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event to be received")
	}
	return AuditEvent{}
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := testConfig(ModeJWTOnly)
	cfg.Audit.Enabled = false

	sink := &countingSink{}
	engine, _, done := buildTestEngine(t, cfg, newTestDirectory(), sink)

	_, _ = engine.Authenticate(context.Background(), mintToken(t, "s1", time.Minute))
	_, _ = engine.Authenticate(context.Background(), "garbage")
	done()

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditAuthenticateEvents(t *testing.T) {
	sink := NewChannelSink(16)
	engine, _, done := buildTestEngine(t, auditConfig(ModeJWTOnly), newTestDirectory(), sink)
	defer done()

	ctx := WithRequestID(WithClientIP(context.Background(), "198.51.100.33"), "req-1")
	token := mintToken(t, "s1", time.Minute)
	if _, err := engine.Authenticate(ctx, token); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	ev := nextEvent(t, sink)
	if ev.EventType != AuditAuthSuccess || !ev.Success {
		t.Fatalf("expected auth_success, got %+v", ev)
	}
	if ev.Subject != "s1" || ev.Role != RoleStudent {
		t.Fatalf("expected subject s1 as student, got %q %q", ev.Subject, ev.Role)
	}
	if ev.IP != "198.51.100.33" || ev.RequestID != "req-1" {
		t.Fatalf("expected ip and request id from context, got %q %q", ev.IP, ev.RequestID)
	}

	_, _ = engine.Authenticate(ctx, mintToken(t, "ghost", time.Minute))
	ev = nextEvent(t, sink)
	if ev.EventType != AuditAuthFailure || ev.Success {
		t.Fatalf("expected auth_failure, got %+v", ev)
	}
	if ev.Error != string(auditErrPrincipalNotFound) {
		t.Fatalf("expected principal_not_found, got %q", ev.Error)
	}

	for _, e := range []AuditEvent{ev} {
		if strings.Contains(e.Error, token) {
			t.Fatal("credential leaked in audit event")
		}
		for _, v := range e.Metadata {
			if strings.Contains(v, token) {
				t.Fatal("credential leaked in audit metadata")
			}
		}
	}
}

func TestAuditAccessDeniedAndRevocation(t *testing.T) {
	sink := NewChannelSink(16)
	engine, _, done := buildTestEngine(t, auditConfig(ModeStrict), newTestDirectory(), sink)
	defer done()
	ctx := context.Background()

	token := mintToken(t, "t1", time.Minute)
	res, err := engine.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	_ = nextEvent(t, sink)

	_ = engine.Authorize(res, RoleStudent)
	ev := nextEvent(t, sink)
	if ev.EventType != AuditAccessDenied || ev.Error != string(auditErrForbidden) {
		t.Fatalf("expected access_denied, got %+v", ev)
	}
	if ev.Metadata["required"] != "student" {
		t.Fatalf("expected required=student metadata, got %v", ev.Metadata)
	}

	if err := engine.RevokeToken(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ev = nextEvent(t, sink)
	if ev.EventType != AuditTokenRevoked || ev.TokenID != res.TokenID {
		t.Fatalf("expected token_revoked for %s, got %+v", res.TokenID, ev)
	}

	_, _ = engine.Authenticate(ctx, token)
	ev = nextEvent(t, sink)
	if ev.Error != string(auditErrRevoked) || ev.Metadata["reason"] != "token_revoked" {
		t.Fatalf("expected revoked failure with reason, got %+v", ev)
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink, nil)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink, nil)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditDispatcherCloseDrainsAndIsIdempotent(t *testing.T) {
	sink := &countingSink{}
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 8,
		DropIfFull: true,
	}, sink, nil)

	for i := 0; i < 5; i++ {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e"})
	}
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "after-close"})

	if sink.Count() != 5 {
		t.Fatalf("expected all 5 buffered events to be drained, got %d", sink.Count())
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: AuditAuthSuccess,
		Subject:   "s1",
		Role:      RoleStudent,
		Success:   true,
	})

	if !buf.Contains("auth_success") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains(`"subject":"s1"`) || !buf.Contains(`"role":"student"`) {
		t.Fatal("expected JSON log line to contain subject and role")
	}
}

func TestAuditSlogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewSlogSink(logger)

	sink.Emit(context.Background(), AuditEvent{EventType: AuditAuthSuccess, Subject: "s1", Success: true})
	sink.Emit(context.Background(), AuditEvent{EventType: AuditAuthFailure, Error: "token_expired"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"level":"INFO"`) || !strings.Contains(lines[0], `"subject":"s1"`) {
		t.Fatalf("unexpected success line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"WARN"`) || !strings.Contains(lines[1], `"error":"token_expired"`) {
		t.Fatalf("unexpected failure line: %s", lines[1])
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(string(b.buf), v)
}
