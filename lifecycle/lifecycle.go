// Package lifecycle derives display values from an order's status and
// timestamps. Everything here is a pure function of its inputs.
package lifecycle

import (
	"fmt"
	"math"
	"time"

	"github.com/yeremiapane/restaurant-dashboard/models"
)

// unknownPriority puts statuses outside the lifecycle after billed.
const unknownPriority = 7

// Index returns the 0-based position of s in models.StatusFlow, or -1.
func Index(s models.OrderStatus) int {
	for i, st := range models.StatusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// Priority -> urutan default sort: pending=1 ... billed=6
func Priority(s models.OrderStatus) int {
	idx := Index(s)
	if idx < 0 {
		return unknownPriority
	}
	return idx + 1
}

// Progress returns the completion percentage for s.
func Progress(s models.OrderStatus) int {
	idx := Index(s)
	if idx < 0 {
		return 0
	}
	return int(math.Round(float64(idx+1) / float64(len(models.StatusFlow)) * 100))
}

// IsForward reports whether moving from -> to advances the lifecycle.
func IsForward(from, to models.OrderStatus) bool {
	return Index(to) > Index(from)
}

// Later returns whichever status sits further along the lifecycle.
// Ties favour a.
func Later(a, b models.OrderStatus) models.OrderStatus {
	if Index(b) > Index(a) {
		return b
	}
	return a
}

// TimeAgo renders the distance between now and ts as "N unit(s) ago".
func TimeAgo(now, ts time.Time) string {
	secs := int64(now.Sub(ts) / time.Second)
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < 60:
		return plural(secs, "second")
	case secs < 3600:
		return plural(secs/60, "minute")
	case secs < 86400:
		return plural(secs/3600, "hour")
	default:
		return plural(secs/86400, "day")
	}
}

// TimeInStatus -> berapa lama order berada di status sekarang
func TimeInStatus(now time.Time, o models.Order) string {
	ts := o.UpdatedAt
	if ts.IsZero() {
		ts = o.CreatedAt
	}
	return TimeAgo(now, ts)
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
