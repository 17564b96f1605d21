package common

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "liyu1981.xyz/tank-console/pkg/testing"
)

func TestLoggingCapture(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	logger := GetLogger()
	logger.Info("Test log message", zap.String("key", "value"))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Test log message") {
		t.Errorf("expected log output to contain message, got: %s", logOutput)
	}
}

func TestCategoryLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	GetCategoryLogger(LoggerNameApiClient, LoggerCategoryDevice).Info("Fetched devices", zap.Int("count", 3))

	logOutput := buf.String()
	for _, want := range []string{`"logger":"api_client"`, `"category":"device"`, `"count":3`} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected log output to contain %s, got: %s", want, logOutput)
		}
	}
}
