package weather

import (
	"slices"
	"time"
)

// mergeCutoff is how far past the last hourly entry three-hourly entries start to count.
const mergeCutoff = int64(time.Hour / time.Millisecond)

// Merge appends the three-hourly entries at or after the last hourly timestamp plus
// one hour to the hourly series. Either side being empty returns the other unchanged.
func Merge(hourly, threeHourly []Forecast) []Forecast {
	if len(hourly) == 0 {
		return threeHourly
	}
	if len(threeHourly) == 0 {
		return hourly
	}

	cutoff := hourly[len(hourly)-1].Timestamp + mergeCutoff
	merged := make([]Forecast, 0, len(hourly)+len(threeHourly))
	merged = append(merged, hourly...)
	for _, f := range threeHourly {
		if f.Timestamp >= cutoff {
			merged = append(merged, f)
		}
	}

	slices.SortStableFunc(merged, func(a, b Forecast) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return merged
}
