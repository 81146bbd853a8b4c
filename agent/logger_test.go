package agent

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelNone, "NONE"},
		{LogLevelError, "ERROR"},
		{LogLevelWarn, "WARN"},
		{LogLevelInfo, "INFO"},
		{LogLevelDebug, "DEBUG"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestField(t *testing.T) {
	field := F("key", "value")
	if field.Key != "key" {
		t.Errorf("Field.Key = %v, want %v", field.Key, "key")
	}
	if field.Value != "value" {
		t.Errorf("Field.Value = %v, want %v", field.Value, "value")
	}
}

func TestNoopLogger(t *testing.T) {
	logger := &NoopLogger{}
	ctx := context.Background()

	logger.Debug(ctx, "debug message", F("key", "value"))
	logger.Info(ctx, "info message", F("key", "value"))
	logger.Warn(ctx, "warn message", F("key", "value"))
	logger.Error(ctx, "error message", F("key", "value"))
}

func TestStdLoggerLevels(t *testing.T) {
	tests := []struct {
		name          string
		level         LogLevel
		shouldLogInfo bool
		shouldLogWarn bool
		shouldLogErr  bool
		shouldLogDbg  bool
	}{
		{"None", LogLevelNone, false, false, false, false},
		{"Error", LogLevelError, false, false, true, false},
		{"Warn", LogLevelWarn, false, true, true, false},
		{"Info", LogLevelInfo, true, true, true, false},
		{"Debug", LogLevelDebug, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w

			logger := NewStdLogger(tt.level)
			ctx := context.Background()

			logger.Debug(ctx, "debug")
			logger.Info(ctx, "info")
			logger.Warn(ctx, "warn")
			logger.Error(ctx, "error")

			w.Close()
			os.Stdout = old

			var buf bytes.Buffer
			io.Copy(&buf, r)
			output := buf.String()

			hasDebug := strings.Contains(output, "DEBUG")
			hasInfo := strings.Contains(output, "INFO")
			hasWarn := strings.Contains(output, "WARN")
			hasError := strings.Contains(output, "ERROR")

			if hasDebug != tt.shouldLogDbg {
				t.Errorf("Debug logging: got %v, want %v", hasDebug, tt.shouldLogDbg)
			}
			if hasInfo != tt.shouldLogInfo {
				t.Errorf("Info logging: got %v, want %v", hasInfo, tt.shouldLogInfo)
			}
			if hasWarn != tt.shouldLogWarn {
				t.Errorf("Warn logging: got %v, want %v", hasWarn, tt.shouldLogWarn)
			}
			if hasError != tt.shouldLogErr {
				t.Errorf("Error logging: got %v, want %v", hasError, tt.shouldLogErr)
			}
		})
	}
}

func TestStdLoggerFields(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	logger := NewStdLogger(LogLevelInfo)
	ctx := context.Background()

	logger.Info(ctx, "test message",
		F("key1", "value1"),
		F("key2", 42),
		F("key3", true))

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	output := buf.String()

	expected := []string{
		"INFO: test message",
		"key1=value1",
		"key2=42",
		"key3=true",
	}

	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("Expected output to contain %q, got: %s", exp, output)
		}
	}
}

func TestStdLoggerNoFields(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	logger := NewStdLogger(LogLevelInfo)
	ctx := context.Background()

	logger.Info(ctx, "simple message")

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	output := buf.String()

	if strings.Contains(output, "simple message |") {
		t.Errorf("Expected no field separator for message without fields, got: %s", output)
	}

	if !strings.Contains(output, "INFO: simple message") {
		t.Errorf("Expected message to be logged, got: %s", output)
	}
}

func TestLoggerContextPropagation(t *testing.T) {
	ctx := context.WithValue(context.Background(), "test-key", "test-value")

	noopLogger := &NoopLogger{}
	noopLogger.Info(ctx, "test")
}

func BenchmarkNoopLogger(b *testing.B) {
	logger := &NoopLogger{}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "debug message", F("key", "value"))
		logger.Info(ctx, "info message", F("key", "value"))
	}
}

func BenchmarkStdLogger(b *testing.B) {
	old := os.Stdout
	os.Stdout, _ = os.Open(os.DevNull)
	defer func() { os.Stdout = old }()

	logger := NewStdLogger(LogLevelDebug)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "debug message", F("key", "value"))
		logger.Info(ctx, "info message", F("key", "value"))
	}
}

func BenchmarkStdLoggerFiltered(b *testing.B) {
	old := os.Stdout
	os.Stdout, _ = os.Open(os.DevNull)
	defer func() { os.Stdout = old }()

	logger := NewStdLogger(LogLevelInfo)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "debug message", F("key", "value"))
		logger.Info(ctx, "info message", F("key", "value"))
	}
}
