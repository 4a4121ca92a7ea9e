package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetup(t *testing.T) {
	std := logrus.StandardLogger()
	prevLevel, prevFormatter, prevOut := std.GetLevel(), std.Formatter, std.Out
	t.Cleanup(func() {
		std.SetLevel(prevLevel)
		std.SetFormatter(prevFormatter)
		std.SetOutput(prevOut)
	})

	var buf bytes.Buffer
	if err := Setup("warn", &buf); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logrus.WithField("module", "test").Info("hidden")
	logrus.WithField("module", "test").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") || !strings.Contains(out, "module=test") {
		t.Errorf("output = %q", out)
	}

	if err := Setup("loud", nil); err == nil {
		t.Error("Setup() with unknown level returned nil error")
	}
}
