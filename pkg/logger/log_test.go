package logger_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, minLevel logger.LogStatus) *bytes.Buffer {
	color.NoColor = true
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	logger.SetMinLoggingLevel(minLevel.Level())
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		logger.SetMinLoggingLevel(logger.INFO.Level())
	})

	return buf
}

func Test_Emit_FormatsNameAndStatus(t *testing.T) {
	buf := capture(t, logger.VERBOSE)

	logger.Get("Extract").Emit(logger.SUCCESS, "Saved %d record(s)", 3)
	assert.Equal(t, "[Extract] (✓) Saved 3 record(s)\n", buf.String())
}

func Test_Emit_FiltersBelowMinimumLevel(t *testing.T) {
	buf := capture(t, logger.WARNING)
	log := logger.Get("Pricing")

	log.Debugf("hidden\n")
	log.Infof("hidden\n")
	log.Warnf("shown\n")
	log.Errorf("also shown\n")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "(!) shown")
	assert.Contains(t, lines[1], "(!!) also shown")
}

func Test_Emit_PadsShorterNames(t *testing.T) {
	buf := capture(t, logger.VERBOSE)

	logger.Get("LongerName").Infof("first\n")
	logger.Get("DB").Infof("second\n")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "(I)"), strings.Index(lines[1], "(I)"), "statuses should be aligned")
}

func Test_ParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logger.LogStatus
	}{
		{"verbose", logger.VERBOSE},
		{"TRACE", logger.VERBOSE},
		{" debug ", logger.DEBUG},
		{"info", logger.INFO},
		{"warn", logger.WARNING},
		{"Warning", logger.WARNING},
		{"error", logger.ERROR},
		{"nonsense", logger.INFO},
		{"", logger.INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, logger.ParseLevel(tt.input))
		})
	}
}
