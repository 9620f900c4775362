package weather

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
)

func sp(s string) *string { return &s }

var londonGeometry = &metoffice.Geometry{Coordinates: []float64{-0.1278, 51.5074, 11}}

func TestNormalize_FullEntry(t *testing.T) {
	entry := metoffice.TimeSeries{
		Time:                   sp("2024-03-01T13:00Z"),
		ScreenTemperature:      fp(9.4),
		MinScreenAirTemp:       fp(8.1),
		MaxScreenAirTemp:       fp(10.2),
		Mslp:                   fp(101210),
		ScreenRelativeHumidity: fp(76.4),
		WindSpeed10m:           fp(5.1),
		WindDirectionFrom10m:   fp(230),
		TotalPrecipAmount:      fp(0.2),
		ProbOfPrecipitation:    ip(13),
		SignificantWeatherCode: code(metoffice.LightRainShowerDay),
	}

	f, ok := Normalize(entry, "London", "Met Office", londonGeometry)
	require.True(t, ok)

	assert.Equal(t, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC).UnixMilli(), f.Timestamp)
	assert.Equal(t, Temperature(9.4), f.Temperature)
	assert.Equal(t, Temperature(8.1), *f.MinTemp)
	assert.Equal(t, Temperature(10.2), *f.MaxTemp)
	assert.Equal(t, "light rain shower day", f.Condition)
	assert.Equal(t, IconShowers, f.Icon)
	assert.False(t, f.Night)
	assert.Equal(t, Pressure(1012.1), *f.Pressure)
	assert.Equal(t, 76, *f.Humidity)
	assert.Equal(t, WindSpeed(5.1), *f.WindSpeed)
	assert.Equal(t, 230.0, *f.WindDirection)
	assert.Equal(t, Precipitation(0.2), *f.Precipitation)
	assert.Equal(t, 20, *f.RainProbability)
	assert.Equal(t, "London", f.Location)
	assert.Equal(t, "Met Office", f.Provider)
	require.NotNil(t, f.ProviderURL)
	assert.Equal(t, providerURLPrefix+geohash.Encode(51.5074, -0.1278), *f.ProviderURL)
}

func TestNormalize_OptionalFieldsStayNil(t *testing.T) {
	f, ok := Normalize(metoffice.TimeSeries{
		Time:              sp("2024-03-01T13:00:00Z"),
		ScreenTemperature: fp(1),
	}, "", "Met Office", nil)
	require.True(t, ok)

	assert.Nil(t, f.MinTemp)
	assert.Nil(t, f.MaxTemp)
	assert.Nil(t, f.Pressure)
	assert.Nil(t, f.Humidity)
	assert.Nil(t, f.WindSpeed)
	assert.Nil(t, f.WindDirection)
	assert.Nil(t, f.Precipitation)
	assert.Nil(t, f.RainProbability)
	assert.Nil(t, f.ProviderURL)
	assert.Equal(t, "Unknown", f.Condition)
	assert.Equal(t, IconUnknown, f.Icon)
}

func TestNormalize_TemperatureResolution(t *testing.T) {
	ts := sp("2024-03-01T13:00Z")

	f, ok := Normalize(metoffice.TimeSeries{Time: ts, MinScreenAirTemp: fp(4), MaxScreenAirTemp: fp(10)}, "", "", nil)
	require.True(t, ok)
	assert.Equal(t, Temperature(7), f.Temperature)

	f, ok = Normalize(metoffice.TimeSeries{Time: ts, ScreenTemperature: fp(2), MinScreenAirTemp: fp(4), MaxScreenAirTemp: fp(10)}, "", "", nil)
	require.True(t, ok)
	assert.Equal(t, Temperature(2), f.Temperature)

	_, ok = Normalize(metoffice.TimeSeries{Time: ts, MaxScreenAirTemp: fp(10)}, "", "", nil)
	assert.False(t, ok)

	_, ok = Normalize(metoffice.TimeSeries{Time: ts, MinScreenAirTemp: fp(4)}, "", "", nil)
	assert.False(t, ok)

	_, ok = Normalize(metoffice.TimeSeries{Time: ts}, "", "", nil)
	assert.False(t, ok)
}

func TestNormalize_Timestamps(t *testing.T) {
	tests := []struct {
		in   *string
		want time.Time
		ok   bool
	}{
		{sp("2024-03-01T13:00Z"), time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), true},
		{sp("2024-03-01T13:00:30Z"), time.Date(2024, 3, 1, 13, 0, 30, 0, time.UTC), true},
		{sp("2024-03-01T14:00+01:00"), time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), true},
		{sp("2024-03-01T13:00:00.250-02:00"), time.Date(2024, 3, 1, 15, 0, 0, 250e6, time.UTC), true},
		{sp("2024-03-01 13:00"), time.Time{}, false},
		{sp(""), time.Time{}, false},
		{nil, time.Time{}, false},
	}
	for _, tt := range tests {
		name := "<nil>"
		if tt.in != nil {
			name = *tt.in
		}
		t.Run(name, func(t *testing.T) {
			f, ok := Normalize(metoffice.TimeSeries{Time: tt.in, ScreenTemperature: fp(1)}, "", "", nil)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want.UnixMilli(), f.Timestamp)
				assert.True(t, time.UnixMilli(f.Timestamp).Equal(tt.want))
			}
		})
	}
}

func TestNormalize_UnknownCodeKeepsEntry(t *testing.T) {
	f, ok := Normalize(metoffice.TimeSeries{
		Time:                   sp("2024-03-01T13:00Z"),
		ScreenTemperature:      fp(1),
		SignificantWeatherCode: code(metoffice.WeatherCode(4)),
	}, "", "", nil)
	require.True(t, ok)
	assert.Equal(t, IconUnknown, f.Icon)
	assert.Equal(t, "Unknown", f.Condition)
	assert.False(t, f.Night)
}

func TestProviderURL(t *testing.T) {
	assert.Nil(t, ProviderURL(nil))
	assert.Nil(t, ProviderURL(&metoffice.Geometry{}))
	assert.Nil(t, ProviderURL(&metoffice.Geometry{Coordinates: []float64{-0.12}}))

	u := ProviderURL(&metoffice.Geometry{Coordinates: []float64{-3.5275, 50.7236}})
	require.NotNil(t, u)
	assert.True(t, strings.HasPrefix(*u, "https://www.metoffice.gov.uk/weather/forecast/gcj"))
	assert.Len(t, strings.TrimPrefix(*u, providerURLPrefix), 12)
}
