package analytics

import (
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"time"
)

// HeatmapDays are the weekday labels in heatmap order
var HeatmapDays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// HeatmapPoint is the relative activity of one weekday hour
type HeatmapPoint struct {
	Day       string  `json:"day"`
	Hour      int     `json:"hour"`
	Intensity float64 `json:"intensity"`
}

// BuildHeatmap counts the non-idle heartbeats per local weekday and hour and scales them by the busiest slot.
// It always returns 168 points, Monday 0:00 first.
func BuildHeatmap(heartbeats []tracking.Heartbeat, location *time.Location) []HeatmapPoint {
	var counts [7][24]int
	highest := 0

	for _, heartbeat := range heartbeats {
		if heartbeat.IsIdle {
			continue
		}

		local := heartbeat.Timestamp.In(location)
		day := (int(local.Weekday()) + 6) % 7
		counts[day][local.Hour()]++

		if counts[day][local.Hour()] > highest {
			highest = counts[day][local.Hour()]
		}
	}

	points := make([]HeatmapPoint, 0, 7*24)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			points = append(points, HeatmapPoint{
				Day:       HeatmapDays[day],
				Hour:      hour,
				Intensity: round(ratio(float64(counts[day][hour]), float64(highest)), 4),
			})
		}
	}

	return points
}
