package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

type bufferCloser struct {
	sync.Mutex
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *bufferCloser) Close() error {
	b.Lock()
	defer b.Unlock()
	b.closed = true
	return nil
}

func TestBackendLevels(t *testing.T) {
	backend := NewBackendWithFlags(0)
	all := &bufferCloser{}
	warnings := &bufferCloser{}
	if err := backend.AddLogWriter(all, LevelTrace); err != nil {
		t.Fatalf("TestBackendLevels: AddLogWriter: %s", err)
	}
	if err := backend.AddLogWriter(warnings, LevelWarn); err != nil {
		t.Fatalf("TestBackendLevels: AddLogWriter: %s", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("TestBackendLevels: Run: %s", err)
	}
	if err := backend.AddLogWriter(&bufferCloser{}, LevelTrace); err == nil {
		t.Fatalf("TestBackendLevels: adding a writer to a running backend unexpectedly succeeded")
	}

	log := backend.Logger("TEST")
	log.Infof("dropped %d", 1)
	log.SetLevel(LevelDebug)
	log.Tracef("dropped %d", 2)
	log.Debugf("kept %d", 3)
	log.Warnf("kept %d", 4)
	backend.Close()

	// Writes after close are silently dropped.
	log.Errorf("after close")

	if strings.Contains(all.String(), "dropped") {
		t.Fatalf("TestBackendLevels: entries below the logger level were written: %q", all.String())
	}
	if !strings.Contains(all.String(), "[DBG] TEST: kept 3\n") {
		t.Fatalf("TestBackendLevels: debug entry missing: %q", all.String())
	}
	if !strings.Contains(all.String(), "[WRN] TEST: kept 4\n") {
		t.Fatalf("TestBackendLevels: warn entry missing: %q", all.String())
	}
	if strings.Contains(warnings.String(), "kept 3") || !strings.Contains(warnings.String(), "kept 4") {
		t.Fatalf("TestBackendLevels: warn writer got %q", warnings.String())
	}
	if !all.closed || !warnings.closed {
		t.Fatalf("TestBackendLevels: writers were not closed")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		name     string
		expected Level
		ok       bool
	}{
		{"trace", LevelTrace, true},
		{"DBG", LevelDebug, true},
		{"Info", LevelInfo, true},
		{"wrn", LevelWarn, true},
		{"error", LevelError, true},
		{"critical", LevelCritical, true},
		{"off", LevelOff, true},
		{"loud", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.name)
		if level != test.expected || ok != test.ok {
			t.Errorf("TestLevelFromString: %q: got (%s, %t) want (%s, %t)",
				test.name, level, ok, test.expected, test.ok)
		}
	}
}

func TestParseAndSetLogLevels(t *testing.T) {
	first := RegisterSubSystem("TST1")
	second := RegisterSubSystem("TST2")
	if RegisterSubSystem("TST1") != first {
		t.Fatalf("TestParseAndSetLogLevels: registering twice returned a different logger")
	}

	if err := ParseAndSetLogLevels("debug"); err != nil {
		t.Fatalf("TestParseAndSetLogLevels: %s", err)
	}
	if first.Level() != LevelDebug || second.Level() != LevelDebug {
		t.Fatalf("TestParseAndSetLogLevels: global level not applied")
	}

	if err := ParseAndSetLogLevels("TST1=trace,TST2=error"); err != nil {
		t.Fatalf("TestParseAndSetLogLevels: %s", err)
	}
	if first.Level() != LevelTrace || second.Level() != LevelError {
		t.Fatalf("TestParseAndSetLogLevels: got %s and %s", first.Level(), second.Level())
	}

	for _, invalid := range []string{"loud", "TST1=loud", "NOPE=debug", "TST1"} {
		if err := ParseAndSetLogLevels(invalid); err == nil {
			t.Errorf("TestParseAndSetLogLevels: %q unexpectedly accepted", invalid)
		}
	}
}
