package weather

import (
	"math"
	"strconv"
)

// Temperature in degrees Celsius.
type Temperature float64

// Pressure in hectopascals.
type Pressure float64

// WindSpeed in metres per second.
type WindSpeed float64

// Precipitation in millimetres.
type Precipitation float64

// Celsius tags a raw screen temperature. nil stays nil.
func Celsius(v *float64) *Temperature {
	if v == nil {
		return nil
	}
	t := Temperature(*v)
	return &t
}

// PressureFromPascals converts mean-sea-level pressure in Pa to hPa.
func PressureFromPascals(v *float64) *Pressure {
	if v == nil {
		return nil
	}
	p := Pressure(*v / 100)
	return &p
}

// MetresPerSecond tags a raw 10m wind speed.
func MetresPerSecond(v *float64) *WindSpeed {
	if v == nil {
		return nil
	}
	w := WindSpeed(*v)
	return &w
}

// Millimetres tags a raw precipitation amount.
func Millimetres(v *float64) *Precipitation {
	if v == nil {
		return nil
	}
	p := Precipitation(*v)
	return &p
}

// RainProbability rounds a 0-100 probability up to the next multiple of ten.
func RainProbability(v *int) *int {
	if v == nil {
		return nil
	}
	p := int(math.Ceil(float64(*v)/10) * 10)
	p = min(max(p, 0), 100)
	return &p
}

// Humidity rounds relative humidity to a whole percent.
func Humidity(v *float64) *int {
	if v == nil {
		return nil
	}
	h := int(math.Round(*v))
	return &h
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
