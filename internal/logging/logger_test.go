package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Error("replace failed", "error", errors.New("boom"))

	assert.Contains(t, buf.String(), "err=boom")
	assert.NotContains(t, buf.String(), "error=boom")
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Level(false))

	logger.Debug("occurrence", "path", "endpoint")
	assert.Empty(t, buf.String())

	logger = NewWithWriter(&buf, Level(true))
	logger.Debug("occurrence", "path", "endpoint")
	assert.Contains(t, buf.String(), "path=endpoint")
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Error("ignored", "err", errors.New("x"))
	})
}
