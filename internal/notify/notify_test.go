package notify

import (
	"context"
	"testing"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		spent float64
		limit float64
		want  Level
	}{
		{name: "well below", spent: 10, limit: 100},
		{name: "just below nearing", spent: 79.99, limit: 100},
		{name: "nearing threshold", spent: 80, limit: 100, want: LevelNearing},
		{name: "at limit", spent: 100, limit: 100, want: LevelExceeded},
		{name: "over limit", spent: 150, limit: 100, want: LevelExceeded},
		{name: "no limit", spent: 150, limit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := Evaluate(&models.Budget{Category: "Food", Spent: tt.spent, Limit: tt.limit}, now)
			if tt.want == "" {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tt.want, alert.Level)
			assert.Contains(t, alert.Message, "Food")
			assert.Equal(t, now, alert.Timestamp)
		})
	}
}

func TestEvaluateNilBudget(t *testing.T) {
	assert.Nil(t, Evaluate(nil, time.Now()))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), BudgetAlert{}))
	assert.NoError(t, p.Close())
}
