package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/restaurant-dashboard/models"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		want   int
	}{
		{models.StatusPending, 17},
		{models.StatusPreparing, 33},
		{models.StatusReady, 50},
		{models.StatusCompleted, 67},
		{models.StatusDelivered, 83},
		{models.StatusBilled, 100},
		{models.OrderStatus("cancelled"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.status))
		})
	}
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 1, Priority(models.StatusPending))
	assert.Equal(t, 6, Priority(models.StatusBilled))
	assert.Equal(t, 7, Priority(models.OrderStatus("mystery")))
}

func TestIsForwardAndLater(t *testing.T) {
	assert.True(t, IsForward(models.StatusPending, models.StatusReady))
	assert.False(t, IsForward(models.StatusReady, models.StatusPreparing))
	assert.False(t, IsForward(models.StatusReady, models.StatusReady))

	assert.Equal(t, models.StatusDelivered, Later(models.StatusDelivered, models.StatusPending))
	assert.Equal(t, models.StatusBilled, Later(models.StatusReady, models.StatusBilled))
	assert.Equal(t, models.StatusReady, Later(models.StatusReady, models.StatusReady))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"just now", 0, "0 seconds ago"},
		{"one second", time.Second, "1 second ago"},
		{"under a minute", 59 * time.Second, "59 seconds ago"},
		{"one minute", 60 * time.Second, "1 minute ago"},
		{"under an hour", 59*time.Minute + 59*time.Second, "59 minutes ago"},
		{"hours", 3 * time.Hour, "3 hours ago"},
		{"under a day", 23*time.Hour + 59*time.Minute, "23 hours ago"},
		{"days", 50 * time.Hour, "2 days ago"},
		{"future clamps", -time.Minute, "0 seconds ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeAgo(now, now.Add(-tt.ago)))
		})
	}
}

func TestTimeInStatusFallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	order := models.Order{CreatedAt: now.Add(-2 * time.Minute)}
	assert.Equal(t, "2 minutes ago", TimeInStatus(now, order))

	order.UpdatedAt = now.Add(-10 * time.Second)
	assert.Equal(t, "10 seconds ago", TimeInStatus(now, order))
}
