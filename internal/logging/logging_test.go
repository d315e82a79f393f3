// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("verbose writes debug entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(true, &buf)
		logger.Debug("segments found", zap.Int("count", 2))
		assert.Contains(t, buf.String(), "segments found")
		assert.Contains(t, buf.String(), `"count": 2`)
	})

	t.Run("quiet logger writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(false, &buf)
		logger.Info("segments found", zap.Int("count", 2))
		logger.Error("boom")
		assert.Empty(t, buf.String())
	})
}
