package hearing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHearingData(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	future := "2024-03-01T09:00:00Z"
	futureEnd := "2024-03-01T10:00:00Z"
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name  string
		draft Draft
		want  []string
	}{
		{"valid", Draft{StartAt: future, EndAt: futureEnd, Status: StatusScheduled, Duration: intPtr(60)}, nil},
		{"missing both", Draft{}, []string{"startAt is required", "endAt is required"}},
		{"unparseable", Draft{StartAt: "soon", EndAt: "later"}, []string{"Invalid startAt date", "Invalid endAt date"}},
		{"inverted", Draft{StartAt: futureEnd, EndAt: future}, []string{"endAt must be after startAt"}},
		{"zero length", Draft{StartAt: future, EndAt: future}, []string{"endAt must be after startAt"}},
		{"past scheduled", Draft{StartAt: "2024-01-31T09:00:00Z", Status: StatusScheduled},
			[]string{"endAt is required", "Hearing date cannot be in the past while status is scheduled"}},
		{"past completed", Draft{StartAt: "2024-01-31T09:00:00Z", EndAt: "2024-01-31T10:00:00Z", Status: StatusCompleted}, nil},
		{"duration zero", Draft{StartAt: future, EndAt: futureEnd, Duration: intPtr(0)}, []string{"Duration must be between 1 and 1440 minutes"}},
		{"duration too long", Draft{StartAt: future, EndAt: futureEnd, Duration: intPtr(1441)}, []string{"Duration must be between 1 and 1440 minutes"}},
		{"duration bound", Draft{StartAt: future, EndAt: futureEnd, Duration: intPtr(1440)}, nil},
		{"partial minute", Draft{StartAt: future, EndAt: "2024-03-01T09:00:30Z"}, []string{"endAt must be a whole number of minutes after startAt"}},
		{"span matches", Draft{StartAt: future, EndAt: futureEnd, Duration: intPtr(60), MatchSpan: true}, nil},
		{"span mismatch", Draft{StartAt: future, EndAt: futureEnd, Duration: intPtr(45), MatchSpan: true},
			[]string{"Duration must match the interval between startAt and endAt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateHearingData(tt.draft, now)
			if tt.want == nil {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Errors)
				assert.NoError(t, res.Err())
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.want, res.Errors)

			var vErr *ValidationError
			require.ErrorAs(t, res.Err(), &vErr)
			assert.Equal(t, tt.want, vErr.Errors)
		})
	}
}
