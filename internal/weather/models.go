package weather

// Icon is the unified weather icon vocabulary exposed to the host.
type Icon string

const (
	IconUnknown              Icon = "unknown"
	IconClear                Icon = "clear"
	IconPartlyCloudy         Icon = "partly_cloudy"
	IconHaze                 Icon = "haze"
	IconFog                  Icon = "fog"
	IconCloudy               Icon = "cloudy"
	IconMostlyCloudy         Icon = "mostly_cloudy"
	IconShowers              Icon = "showers"
	IconDrizzle              Icon = "drizzle"
	IconThunderstorm         Icon = "thunderstorm"
	IconThunderstormWithRain Icon = "thunderstorm_with_rain"
	IconHeavyThunderstorm    Icon = "heavy_thunderstorm"
	IconSleet                Icon = "sleet"
	IconHail                 Icon = "hail"
	IconSnow                 Icon = "snow"
	IconWind                 Icon = "wind"
)

// Condition is the mapped representation of a significant weather code.
type Condition struct {
	Text  string `json:"text"`
	Icon  Icon   `json:"icon"`
	Night bool   `json:"night"`
}

// Location is a point to forecast. Name is optional; when empty the name reported by
// the upstream response is used.
type Location struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.Name != "" {
		return l.Name
	}
	return formatCoord(l.Lat) + "," + formatCoord(l.Lon)
}

// Forecast is one normalized forecast entry. Optional measurements are nil when the
// upstream entry did not carry them.
type Forecast struct {
	Timestamp       int64          `json:"timestamp"` // epoch milliseconds
	Temperature     Temperature    `json:"temperature"`
	MinTemp         *Temperature   `json:"minTemp,omitempty"`
	MaxTemp         *Temperature   `json:"maxTemp,omitempty"`
	Condition       string         `json:"condition"`
	Icon            Icon           `json:"icon"`
	Night           bool           `json:"night"`
	Pressure        *Pressure      `json:"pressure,omitempty"`
	Humidity        *int           `json:"humidity,omitempty"`
	WindSpeed       *WindSpeed     `json:"windSpeed,omitempty"`
	WindDirection   *float64       `json:"windDirection,omitempty"`
	Precipitation   *Precipitation `json:"precipitation,omitempty"`
	RainProbability *int           `json:"rainProbability,omitempty"`
	Location        string         `json:"location"`
	Provider        string         `json:"provider"`
	ProviderURL     *string        `json:"providerUrl,omitempty"`
}

// GeoResult is a location-search candidate.
type GeoResult struct {
	Name    string     `json:"name"`
	Area    string     `json:"area,omitempty"`
	LatLon  [2]float64 `json:"latLon"` // [latitude, longitude]
	Country string     `json:"country,omitempty"`
}

// Location converts the candidate into a forecastable location.
func (g GeoResult) Location() Location {
	return Location{Name: g.Name, Lat: g.LatLon[0], Lon: g.LatLon[1]}
}

// State is the host-facing readiness of the provider.
type State string

const (
	StateReady         State = "ready"
	StateSetupRequired State = "setup_required"
)
