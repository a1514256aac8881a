package logx

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewAddsServiceField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Service: "concierge"})
	logger.Info().Str("session_id", "s1").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["service"] != "concierge" {
		t.Fatalf("service = %v, want concierge", entry["service"])
	}
	if entry["session_id"] != "s1" {
		t.Fatalf("session_id = %v, want s1", entry["session_id"])
	}
}

func TestNewDropsDebugUnlessEnabled(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	quietLogger := New(&quiet, Config{})
	quietLogger.Debug().Msg("hidden")
	if quiet.Len() != 0 {
		t.Fatalf("expected no debug output, got %q", quiet.String())
	}

	var loud bytes.Buffer
	loudLogger := New(&loud, Config{Debug: true})
	loudLogger.Debug().Msg("shown")
	if loud.Len() == 0 {
		t.Fatal("expected debug output when Debug is set")
	}
}
