package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maubry/ouvra/pkg/models"
)

func TestValidateAction(t *testing.T) {
	tests := []struct {
		name    string
		action  models.AutoAction
		wantErr error
	}{
		{
			name:   "webhook with url",
			action: models.AutoAction{Type: TypeWebhook, Config: map[string]any{"url": "https://example.com/hook"}},
		},
		{
			name:    "webhook without url",
			action:  models.AutoAction{Type: TypeWebhook, Config: map[string]any{"method": "POST"}},
			wantErr: ErrActionConfigInvalid,
		},
		{
			name:    "webhook with invalid method",
			action:  models.AutoAction{Type: TypeWebhook, Config: map[string]any{"url": "https://example.com", "method": "TRACE"}},
			wantErr: ErrActionConfigInvalid,
		},
		{
			name:   "create task with title",
			action: models.AutoAction{Type: TypeCreateTask, Config: map[string]any{"title": "Relancer le client"}},
		},
		{
			name:    "create task without title",
			action:  models.AutoAction{Type: TypeCreateTask, Config: map[string]any{"assignee": "u-1"}},
			wantErr: ErrActionConfigInvalid,
		},
		{
			name:   "send email devis with nil config",
			action: models.AutoAction{Type: TypeSendEmailDevis},
		},
		{
			name:   "generate invoice if missing",
			action: models.AutoAction{Type: TypeGenerateInvoiceMissing, Config: map[string]any{}},
		},
		{
			name:    "log with invalid level",
			action:  models.AutoAction{Type: TypeLog, Config: map[string]any{"level": "verbose"}},
			wantErr: ErrActionConfigInvalid,
		},
		{
			name:    "unknown type",
			action:  models.AutoAction{Type: "teleport", Config: map[string]any{}},
			wantErr: ErrActionTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAction(tt.action)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateActions(t *testing.T) {
	err := ValidateActions([]models.AutoAction{
		{Type: TypeSendEmailDevis},
		{Type: TypeWebhook, Config: map[string]any{}},
	})
	require.ErrorIs(t, err, ErrActionConfigInvalid)

	require.NoError(t, ValidateActions(nil))
}

func TestKnownTypes(t *testing.T) {
	types := KnownTypes()
	assert.Len(t, types, 5)
	assert.True(t, IsKnownType(TypeWebhook))
	assert.False(t, IsKnownType("teleport"))
}
