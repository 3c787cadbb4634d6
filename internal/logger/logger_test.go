package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %s", log.GetLevel())
	}
}

func TestNewWithOptions_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := NewWithOptions(Options{Level: tt.level, Out: &bytes.Buffer{}})
			if log.GetLevel() != tt.want {
				t.Errorf("level = %s, want %s", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewWithOptions_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithOptions(Options{Format: "json", Out: buf})

	log.Info().Str("user_id", "u1").Msg("report sent")

	output := buf.String()
	if !strings.HasPrefix(output, "{") {
		t.Errorf("Expected JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"user_id":"u1"`) {
		t.Errorf("Expected user_id field, got: %s", output)
	}
}

func TestNewWithOptions_LevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithOptions(Options{Level: "warn", Format: "json", Out: buf})

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	logWithFields := WithFields(log, map[string]interface{}{
		"user_id":   "123",
		"report_id": "r-1",
	})
	logWithFields.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, `"user_id":"123"`) {
		t.Errorf("Expected output to contain user_id field, got: %s", output)
	}
	if !strings.Contains(output, `"report_id":"r-1"`) {
		t.Errorf("Expected output to contain report_id field, got: %s", output)
	}
}
