package metoffice

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// WeatherCode is the Met Office significant weather code.
// https://www.metoffice.gov.uk/services/data/datapoint/code-definitions
type WeatherCode int

const (
	TraceRain            WeatherCode = -1
	ClearNight           WeatherCode = 0
	SunnyDay             WeatherCode = 1
	PartlyCloudyNight    WeatherCode = 2
	PartlyCloudyDay      WeatherCode = 3
	Mist                 WeatherCode = 5 // 4 is not used
	Fog                  WeatherCode = 6
	Cloudy               WeatherCode = 7
	Overcast             WeatherCode = 8
	LightRainShowerNight WeatherCode = 9
	LightRainShowerDay   WeatherCode = 10
	Drizzle              WeatherCode = 11
	LightRain            WeatherCode = 12
	HeavyRainShowerNight WeatherCode = 13
	HeavyRainShowerDay   WeatherCode = 14
	HeavyRain            WeatherCode = 15
	SleetShowerNight     WeatherCode = 16
	SleetShowerDay       WeatherCode = 17
	Sleet                WeatherCode = 18
	HailShowerNight      WeatherCode = 19
	HailShowerDay        WeatherCode = 20
	Hail                 WeatherCode = 21
	LightSnowShowerNight WeatherCode = 22
	LightSnowShowerDay   WeatherCode = 23
	LightSnow            WeatherCode = 24
	HeavySnowShowerNight WeatherCode = 25
	HeavySnowShowerDay   WeatherCode = 26
	HeavySnow            WeatherCode = 27
	ThunderShowerNight   WeatherCode = 28
	ThunderShowerDay     WeatherCode = 29
	Thunder              WeatherCode = 30

	// unrecognized stands in for enumeration names the API may add later.
	unrecognized WeatherCode = -99
)

var codeNames = map[WeatherCode]string{
	TraceRain:            "TRACE_RAIN",
	ClearNight:           "CLEAR_NIGHT",
	SunnyDay:             "SUNNY_DAY",
	PartlyCloudyNight:    "PARTLY_CLOUDY_NIGHT",
	PartlyCloudyDay:      "PARTLY_CLOUDY_DAY",
	Mist:                 "MIST",
	Fog:                  "FOG",
	Cloudy:               "CLOUDY",
	Overcast:             "OVERCAST",
	LightRainShowerNight: "LIGHT_RAIN_SHOWER_NIGHT",
	LightRainShowerDay:   "LIGHT_RAIN_SHOWER_DAY",
	Drizzle:              "DRIZZLE",
	LightRain:            "LIGHT_RAIN",
	HeavyRainShowerNight: "HEAVY_RAIN_SHOWER_NIGHT",
	HeavyRainShowerDay:   "HEAVY_RAIN_SHOWER_DAY",
	HeavyRain:            "HEAVY_RAIN",
	SleetShowerNight:     "SLEET_SHOWER_NIGHT",
	SleetShowerDay:       "SLEET_SHOWER_DAY",
	Sleet:                "SLEET",
	HailShowerNight:      "HAIL_SHOWER_NIGHT",
	HailShowerDay:        "HAIL_SHOWER_DAY",
	Hail:                 "HAIL",
	LightSnowShowerNight: "LIGHT_SNOW_SHOWER_NIGHT",
	LightSnowShowerDay:   "LIGHT_SNOW_SHOWER_DAY",
	LightSnow:            "LIGHT_SNOW",
	HeavySnowShowerNight: "HEAVY_SNOW_SHOWER_NIGHT",
	HeavySnowShowerDay:   "HEAVY_SNOW_SHOWER_DAY",
	HeavySnow:            "HEAVY_SNOW",
	ThunderShowerNight:   "THUNDER_SHOWER_NIGHT",
	ThunderShowerDay:     "THUNDER_SHOWER_DAY",
	Thunder:              "THUNDER",
}

var codesByName = func() map[string]WeatherCode {
	m := make(map[string]WeatherCode, len(codeNames))
	for c, n := range codeNames {
		m[n] = c
	}
	return m
}()

// FromCode returns the enumeration member for code. ok is false for codes the
// enumeration does not know; the returned value then still carries the raw integer.
func FromCode(code int) (c WeatherCode, ok bool) {
	c = WeatherCode(code)
	_, ok = codeNames[c]
	return c, ok
}

// Known reports whether c is a member of the enumeration.
func (c WeatherCode) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// Name returns the enumeration name, or "" for unknown codes.
func (c WeatherCode) Name() string {
	return codeNames[c]
}

func (c WeatherCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return strconv.Itoa(int(c))
}

// UnmarshalJSON accepts the integer form used by the site-specific API and the
// enumeration name form. Unrecognised integers are kept as raw values, never an error.
func (c *WeatherCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if code, ok := codesByName[name]; ok {
			*c = code
			return nil
		}
		if n, err := strconv.Atoi(name); err == nil {
			*c = WeatherCode(n)
			return nil
		}
		*c = unrecognized
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c, _ = FromCode(int(n))
	return nil
}

func (c WeatherCode) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(c))), nil
}
