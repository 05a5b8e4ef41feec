package logaction

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maubry/ouvra/pkg/events"
	"github.com/maubry/ouvra/pkg/models"
)

func TestExecuteLogsMessage(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   string
	}{
		{
			name:   "explicit message and level",
			config: map[string]any{"message": "Relance envoyée", "level": "warn"},
			want:   "level=WARN msg=\"Relance envoyée\"",
		},
		{
			name:   "default message",
			config: map[string]any{},
			want:   "msg=\"Action requested\"",
		},
		{
			name:   "unknown level falls back to info",
			config: map[string]any{"message": "hello", "level": "verbose"},
			want:   "level=INFO msg=hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := slog.New(slog.NewTextHandler(&buf, nil))
			executor := NewExecutor()

			err := executor.Execute(t.Context(), events.AutoActionRequested{
				BaseEvent: events.BaseEvent{InterventionID: "int-7"},
				Action:    models.AutoAction{Type: executor.Type(), Config: tt.config},
			}, logger)

			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "intervention_id=int-7")
		})
	}
}
