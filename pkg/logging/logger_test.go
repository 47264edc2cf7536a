package logging

import "testing"

func TestNewLoggerWithStage(t *testing.T) {
	l := NewLoggerWithStage("fetch")
	entry := l.WithField("k", "v")
	if entry == nil {
		t.Fatalf("expected non-nil entry")
	}
}
