package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		logger := Setup(tt.level, false)
		require.NotNil(t, logger, tt.level)
		assert.Equal(t, tt.want, zerolog.GlobalLevel(), tt.level)

		// chained calls on the returned logger are the startup error path
		Setup(tt.level, true).Debug().Msg("configured")
		current := Setup(tt.level, false)
		assert.Same(t, current, zerolog.DefaultContextLogger)
	}
}
