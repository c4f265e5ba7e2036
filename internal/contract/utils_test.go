package contract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/sonar-cli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSeverityLabel(t *testing.T) {
	for _, s := range schema.AllSeverities {
		t.Run(string(s), func(t *testing.T) {
			assert.Contains(t, GetSeverityLabel(s), string(s))
		})
	}
	assert.Equal(t, "ODD", GetSeverityLabel("ODD"))
}

func TestGetGateLabel(t *testing.T) {
	tests := []struct {
		status schema.GateStatus
		label  string
	}{
		{schema.GateOK, "PASSED"},
		{schema.GateWarn, "WARNING"},
		{schema.GateError, "FAILED"},
		{schema.GateNone, "FAILED"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Contains(t, GetGateLabel(tt.status), tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path unchanged", "src/a.go", 20, "src/a.go"},
		{"long path truncated", "src/internal/pkg/very/long/file.go", 12, "...g/file.go"},
		{"tiny width unchanged", "src/internal/file.go", 3, "src/internal/file.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.path, tt.maxWidth)
			assert.Equal(t, tt.expected, got)
			if tt.maxWidth > 3 {
				assert.LessOrEqual(t, len([]rune(got)), tt.maxWidth)
			}
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var quiet, verbose bytes.Buffer

	quietLog := newLogger(&quiet, false)
	quietLog.Debug().Msg("hidden")
	verboseLog := newLogger(&verbose, true)
	verboseLog.Debug().Msg("shown")

	assert.Empty(t, quiet.String())
	assert.Contains(t, verbose.String(), "shown")
}
