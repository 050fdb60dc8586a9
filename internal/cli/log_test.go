package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ivrflow/pkg/document"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(5 * time.Millisecond)
	prog.done("Rendered flow")

	out := buf.String()
	if !strings.Contains(out, "Rendered flow (") {
		t.Errorf("progress output = %q, want elapsed suffix", out)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := logNotifier(newLogger(&buf, log.InfoLevel))

	n.Notify(document.LevelSuccess, "Flow saved successfully")
	n.Notify(document.LevelError, "flow name is required")

	out := buf.String()
	if !strings.Contains(out, "INFO Flow saved successfully") {
		t.Errorf("missing success line: %q", out)
	}
	if !strings.Contains(out, "ERRO flow name is required") {
		t.Errorf("missing error line: %q", out)
	}
}
