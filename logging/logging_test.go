package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLoggerJSONCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	if err := SetupLogger(Options{Level: "info", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("SetupLogger returned error: %v", err)
	}
	defer CloseLogger()

	LogWarning("pool %s is small", "b")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if record["msg"] != "pool b is small" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["level"] != "WARN" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if record["run_id"] != RunID() || RunID() == "" {
		t.Fatalf("expected run_id %q, got %v", RunID(), record["run_id"])
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := SetupLogger(Options{Level: "info", Output: &buf}); err != nil {
		t.Fatalf("SetupLogger returned error: %v", err)
	}
	defer CloseLogger()

	DebugLog("hidden")
	LogImageProcessed("a.png", true, "")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	LogImageProcessed("b.png", false, "bad header")
	if !strings.Contains(buf.String(), "bad header") {
		t.Fatalf("expected skip record, got %q", buf.String())
	}
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framematch.log")
	var buf bytes.Buffer
	if err := SetupLogger(Options{Level: "debug", Output: &buf, LogFile: path}); err != nil {
		t.Fatalf("SetupLogger returned error: %v", err)
	}
	LogError("copy failed")
	CloseLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "copy failed") {
		t.Fatalf("log file missing record: %q", data)
	}
}

func TestSetupLoggerRejectsUnknownFormat(t *testing.T) {
	if err := SetupLogger(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRejectedSetupKeepsPreviousLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framematch.log")
	var buf bytes.Buffer
	if err := SetupLogger(Options{Output: &buf, LogFile: path}); err != nil {
		t.Fatalf("SetupLogger returned error: %v", err)
	}
	defer CloseLogger()

	if err := SetupLogger(Options{Format: "xml", Output: &buf, LogFile: path}); err == nil {
		t.Fatal("expected error for unknown format")
	}
	LogInfo("still logging after rejected setup")
	CloseLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "still logging after rejected setup") {
		t.Fatalf("record lost after rejected setup: %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
