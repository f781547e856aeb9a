package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"ERROR", LogLevelError},
		{"debug", LogLevelDebug},
		{" trace ", LogLevelTrace},
		{"", LogLevelInfo},
		{"loud", LogLevelInfo},
	}

	for _, test := range tests {
		if got := ParseLogLevel(test.input, LogLevelInfo); got != test.expected {
			t.Errorf("ParseLogLevel(%q) = %d, expected %d", test.input, got, test.expected)
		}
	}
}

func TestLoggerFiltersByLevelAndPrefixes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelInfo).WithPrefix("drilldown")

	logger.Debug("hidden %d", 1)
	logger.Info("rebuilt %d rows", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug line leaked at info level: %q", out)
	}
	if !strings.Contains(out, "[INFO] [drilldown] rebuilt 3 rows") {
		t.Errorf("Unexpected log output: %q", out)
	}
}
