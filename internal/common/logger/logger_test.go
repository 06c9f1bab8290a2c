package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
)

func TestEntryWritesSortedFieldsAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "auth", "debug")

	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "trace-1")
	log.WithFields(ctx, Fields{"user_id": "u1", "action": "login_success"}).Info("user logged in")

	out := buf.String()
	if !strings.Contains(out, "[INFO] [auth]") {
		t.Errorf("expected level and service prefix, got %q", out)
	}
	if !strings.Contains(out, "trace_id=trace-1 action=login_success user_id=u1") {
		t.Errorf("expected trace id followed by sorted fields, got %q", out)
	}
	if !strings.Contains(out, "user logged in") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "", "warn")

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn should be written, got %q", out)
	}
	if log.ShouldLog(DEBUG) {
		t.Error("debug should not be enabled at warn level")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got != INFO {
		t.Errorf("expected INFO for unknown level, got %v", got)
	}
	if got := parseLevel(" error "); got != ERROR {
		t.Errorf("expected ERROR, got %v", got)
	}
}
