// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package weather defines the provider-independent weather data model.
package weather

import (
	"context"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/vartype"
)

// Provider is implemented by each weather API backend.
type Provider interface {
	Name() string
	GetWeather(ctx context.Context, coords geobus.Coordinate) (*Data, error)
}

// Data is the current weather at a location. Fields that not every
// provider delivers are wrapped in vartype variables.
type Data struct {
	GeneratedAt  time.Time
	Coordinates  geobus.Coordinate
	LocationName string

	Temperature         float64
	ApparentTemperature vartype.VarFloat64
	RelativeHumidity    vartype.VarFloat64
	PressureMSL         vartype.VarFloat64
	Condition           string
	ConditionCode       int
	WindSpeed           float64
	WindDirection       float64
	IsDay               bool

	// Sun times as Unix epochs, zero when the provider has none.
	SunriseEpoch int64
	SunsetEpoch  int64

	// UTC offset of the location's timezone, when reported.
	UTCOffsetSeconds int
	HasUTCOffset     bool

	Units Units
}

// Units holds the display units matching the requested unit system.
type Units struct {
	Temperature string
	WindSpeed   string
	Humidity    string
	Pressure    string
}

// UnitsFor returns the display units for a unit system ("imperial" or
// "metric").
func UnitsFor(system string) Units {
	if system == "imperial" {
		return Units{
			Temperature: "°F",
			WindSpeed:   "mph",
			Humidity:    "%",
			Pressure:    "hPa",
		}
	}
	return Units{
		Temperature: "°C",
		WindSpeed:   "km/h",
		Humidity:    "%",
		Pressure:    "hPa",
	}
}

func NewData() *Data {
	return &Data{GeneratedAt: time.Now()}
}

// IsStale reports whether the data is older than the given maximum age.
func (d *Data) IsStale(maxAge time.Duration) bool {
	return time.Since(d.GeneratedAt) > maxAge
}
