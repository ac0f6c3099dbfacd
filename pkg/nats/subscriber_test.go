package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		data     string
		wantType string
		wantTime time.Time
		wantErr  bool
	}{
		{
			name:     "stamped",
			subject:  "events.chat.completed",
			data:     `{"provider":"groq","occurred_at":"2026-01-02T03:04:05Z"}`,
			wantType: "chat.completed",
			wantTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name:     "unstamped",
			subject:  "events.plan.generated",
			data:     `{"mode":"llm"}`,
			wantType: "plan.generated",
		},
		{
			name:    "garbage",
			subject: "events.x",
			data:    `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeMessage(tt.subject, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.EventType())
			assert.NotContains(t, got.Payload(), "occurred_at")
			if !tt.wantTime.IsZero() {
				assert.True(t, tt.wantTime.Equal(got.Timestamp()))
			} else {
				assert.False(t, got.Timestamp().IsZero())
			}
		})
	}
}
