package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

type testMessage struct{}

func (testMessage) Type() string { return "sitebuilder.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "sitebuilder.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

type rejectedPayload struct{}

func (rejectedPayload) Error() string { return "payload rejected" }

func (rejectedPayload) ValidationFailure() bool { return true }

func TestHandlerCategorisesDomainValidationFailures(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return fmt.Errorf("commit: %w", rejectedPayload{})
	})

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	var payload rejectedPayload
	if !errors.As(err, &payload) {
		t.Fatalf("expected domain error to stay reachable, got %v", err)
	}
}

func TestHandlerReportsTelemetryWithMessageFields(t *testing.T) {
	var infos []TelemetryInfo
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	h := NewHandler[testMessage](
		func(ctx context.Context, msg testMessage) error { return nil },
		WithOperation[testMessage]("documents.commit"),
		WithMessageFields(func(testMessage) map[string]any {
			return map[string]any{"document_id": "contact"}
		}),
		WithClock[testMessage](func() time.Time {
			clock = clock.Add(5 * time.Millisecond)
			return clock
		}),
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			infos = append(infos, info)
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected one telemetry callback, got %d", len(infos))
	}
	info := infos[0]
	if info.Status != TelemetryStatusSuccess || info.Operation != "documents.commit" {
		t.Fatalf("unexpected telemetry %+v", info)
	}
	if info.Fields["document_id"] != "contact" || info.Fields["command"] != "sitebuilder.test.message" {
		t.Fatalf("unexpected telemetry fields %v", info.Fields)
	}
	if info.Duration != 5*time.Millisecond {
		t.Fatalf("expected 5ms duration, got %s", info.Duration)
	}
}

func TestHandlerTelemetryReceivesFailures(t *testing.T) {
	var status TelemetryStatus
	h := NewHandler[testMessage](
		func(ctx context.Context, msg testMessage) error { return errors.New("boom") },
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			status = info.Status
		}),
	)
	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected error")
	}
	if status != TelemetryStatusFailed {
		t.Fatalf("expected failed status, got %q", status)
	}
}

type telemetryEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type telemetryLogger struct {
	fields  map[string]any
	entries *[]telemetryEntry
}

func (l *telemetryLogger) record(level, msg string) {
	*l.entries = append(*l.entries, telemetryEntry{level: level, msg: msg, fields: l.fields})
}

func (l *telemetryLogger) Trace(msg string, _ ...any) { l.record("trace", msg) }
func (l *telemetryLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *telemetryLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *telemetryLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *telemetryLogger) Error(msg string, _ ...any) { l.record("error", msg) }
func (l *telemetryLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }

func (l *telemetryLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *telemetryLogger) WithFields(fields map[string]any) interfaces.Logger {
	return &telemetryLogger{fields: fields, entries: l.entries}
}

func TestDefaultTelemetryLogsWithFields(t *testing.T) {
	var entries []telemetryEntry
	logger := &telemetryLogger{entries: &entries}

	h := NewHandler[testMessage](
		func(ctx context.Context, msg testMessage) error { return errors.New("boom") },
		WithMessageFields(func(testMessage) map[string]any {
			return map[string]any{"document_id": "contact"}
		}),
		WithTelemetry(DefaultTelemetry[testMessage](logger)),
	)
	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected error")
	}

	if len(entries) != 1 {
		t.Fatalf("expected one telemetry entry, got %+v", entries)
	}
	entry := entries[0]
	if entry.level != "error" || entry.msg != "command.execute.failed" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.fields["document_id"] != "contact" || entry.fields["command"] != "sitebuilder.test.message" {
		t.Fatalf("expected message fields on the telemetry entry, got %v", entry.fields)
	}
}
