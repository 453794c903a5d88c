package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/GoPolymarket/xterio-checker/internal/model"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(apperrors.NewConfiguration("wallet file is empty", nil)))
	assert.Equal(t, 0, exitCode(apperrors.NewNoProxy()))
	assert.Equal(t, 0, exitCode(errors.New("plain")))
	assert.Equal(t, 0, exitCode(nil))
}

func TestWriteReport(t *testing.T) {
	summary := service.Summary{
		Results:   []model.CheckResult{model.Success("0xA", 7)},
		Total:     7,
		Succeeded: 1,
	}

	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, writeReport(path, summary))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0xA:7\n\nTotal points across all accounts: 7", string(raw))

	err = writeReport(filepath.Join(t.TempDir(), "missing", "result.txt"), summary)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}
