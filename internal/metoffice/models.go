package metoffice

// ForecastResponse is the site-specific point forecast payload. Every level is optional.
type ForecastResponse struct {
	Features []Feature `json:"features"`
}

type Feature struct {
	Geometry   *Geometry   `json:"geometry"`
	Properties *Properties `json:"properties"`
}

// Geometry coordinates are ordered [longitude, latitude, altitude].
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

type Properties struct {
	Location     *Location    `json:"location"`
	ModelRunDate *string      `json:"modelRunDate"`
	TimeSeries   []TimeSeries `json:"timeSeries"`
}

type Location struct {
	Name *string `json:"name"`
}

// TimeSeries is one instant of raw measurements. Fields the host does not consume are
// decoded anyway so the payload stays inspectable in logs.
type TimeSeries struct {
	Time                      *string      `json:"time"`
	ScreenTemperature         *float64     `json:"screenTemperature"`
	MaxScreenAirTemp          *float64     `json:"maxScreenAirTemp"`
	MinScreenAirTemp          *float64     `json:"minScreenAirTemp"`
	ScreenDewPointTemperature *float64     `json:"screenDewPointTemperature"`
	FeelsLikeTemperature      *float64     `json:"feelsLikeTemperature"`
	WindSpeed10m              *float64     `json:"windSpeed10m"`
	WindDirectionFrom10m      *float64     `json:"windDirectionFrom10m"`
	WindGustSpeed10m          *float64     `json:"windGustSpeed10m"`
	Max10mWindGust            *float64     `json:"max10mWindGust"`
	Visibility                *int64       `json:"visibility"`
	ScreenRelativeHumidity    *float64     `json:"screenRelativeHumidity"`
	Mslp                      *float64     `json:"mslp"`
	UVIndex                   *int         `json:"uvIndex"`
	SignificantWeatherCode    *WeatherCode `json:"significantWeatherCode"`
	PrecipitationRate         *float64     `json:"precipitationRate"`
	TotalPrecipAmount         *float64     `json:"totalPrecipAmount"`
	TotalSnowAmount           *float64     `json:"totalSnowAmount"`
	ProbOfPrecipitation       *int         `json:"probOfPrecipitation"`
}

// Geo is one location-search candidate. LatLong is [latitude, longitude].
type Geo struct {
	Name    *string   `json:"name"`
	Area    *string   `json:"area"`
	LatLong []float64 `json:"latLong"`
	Country *string   `json:"country"`
}
