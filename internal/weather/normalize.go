package weather

import (
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
)

const providerURLPrefix = "https://www.metoffice.gov.uk/weather/forecast/"

// Met Office timestamps usually omit seconds, e.g. 2024-03-01T13:00Z.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// Normalize converts one raw time-series entry. ok is false when the entry has no
// parsable timestamp or no determinable temperature; the caller skips it.
func Normalize(entry metoffice.TimeSeries, location, provider string, geometry *metoffice.Geometry) (f Forecast, ok bool) {
	ts, ok := parseTimestamp(entry.Time)
	if !ok {
		return Forecast{}, false
	}
	temp := resolveTemperature(entry)
	if temp == nil {
		return Forecast{}, false
	}

	cond := MapCode(entry.SignificantWeatherCode)

	return Forecast{
		Timestamp:       ts,
		Temperature:     *temp,
		MinTemp:         Celsius(entry.MinScreenAirTemp),
		MaxTemp:         Celsius(entry.MaxScreenAirTemp),
		Condition:       cond.Text,
		Icon:            cond.Icon,
		Night:           cond.Night,
		Pressure:        PressureFromPascals(entry.Mslp),
		Humidity:        Humidity(entry.ScreenRelativeHumidity),
		WindSpeed:       MetresPerSecond(entry.WindSpeed10m),
		WindDirection:   entry.WindDirectionFrom10m,
		Precipitation:   Millimetres(entry.TotalPrecipAmount),
		RainProbability: RainProbability(entry.ProbOfPrecipitation),
		Location:        location,
		Provider:        provider,
		ProviderURL:     ProviderURL(geometry),
	}, true
}

// ProviderURL builds the public forecast page URL from the response geometry.
// Coordinates arrive as [lon, lat]; the geohash takes (lat, lon).
func ProviderURL(geometry *metoffice.Geometry) *string {
	if geometry == nil || len(geometry.Coordinates) < 2 {
		return nil
	}
	u := providerURLPrefix + geohash.Encode(geometry.Coordinates[1], geometry.Coordinates[0])
	return &u
}

func resolveTemperature(entry metoffice.TimeSeries) *Temperature {
	if entry.ScreenTemperature != nil {
		return Celsius(entry.ScreenTemperature)
	}
	if entry.MinScreenAirTemp != nil && entry.MaxScreenAirTemp != nil {
		mean := (*entry.MinScreenAirTemp + *entry.MaxScreenAirTemp) / 2
		return Celsius(&mean)
	}
	return nil
}

func parseTimestamp(s *string) (int64, bool) {
	if s == nil {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
