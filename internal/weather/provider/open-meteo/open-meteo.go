// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package open_meteo retrieves weather data from the Open-Meteo API via
// the omgo client. Open-Meteo needs no API key.
package open_meteo

import (
	"context"
	"fmt"
	"time"

	"github.com/hectormalot/omgo"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
	"github.com/wmarchant13/RealWeatherApp/internal/weather"
)

var hourlyMetrics = []string{
	"temperature_2m", "apparent_temperature", "weather_code", "wind_speed_10m", "is_day",
	"wind_direction_10m", "relative_humidity_2m", "pressure_msl",
}

// OpenMeteo is a weather Provider backed by the Open-Meteo API.
type OpenMeteo struct {
	unit   string
	log    *logger.Logger
	client omgo.Client
}

// New returns an Open-Meteo provider for the given unit system.
func New(log *logger.Logger, unit string) (*OpenMeteo, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	client, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}

	return &OpenMeteo{unit: unit, log: log, client: client}, nil
}

func (o *OpenMeteo) Name() string {
	return "open-meteo"
}

// GetWeather fetches the current conditions for the given coordinates.
// Humidity, pressure and apparent temperature come from the hourly series
// since Open-Meteo's current weather block does not carry them.
func (o *OpenMeteo) GetWeather(ctx context.Context, coords geobus.Coordinate) (*weather.Data, error) {
	location, err := omgo.NewLocation(coords.Lat, coords.Lon)
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo location from coordinates: %w", err)
	}

	opts := &omgo.Options{
		Timezone:      "auto",
		PastDays:      1,
		HourlyMetrics: hourlyMetrics,
	}
	switch o.unit {
	case "imperial":
		opts.TemperatureUnit = "fahrenheit"
		opts.WindspeedUnit = "mph"
		opts.PrecipitationUnit = "inch"
	default:
		opts.TemperatureUnit = "celsius"
		opts.WindspeedUnit = "kmh"
		opts.PrecipitationUnit = "mm"
	}

	forecast, err := o.client.Forecast(ctx, location, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve weather data from Open-Meteo API: %w", err)
	}

	data := weather.NewData()
	data.Coordinates = coords
	data.Units = weather.UnitsFor(o.unit)

	current := forecast.CurrentWeather
	data.Temperature = current.Temperature
	data.ConditionCode = int(current.WeatherCode)
	data.Condition = weather.DescribeWMO(data.ConditionCode)
	data.WindSpeed = current.WindSpeed
	data.WindDirection = current.WindDirection

	if idx, ok := nearestHour(forecast.HourlyTimes, time.Now()); ok {
		if v, ok := hourlyValue(forecast.HourlyMetrics, "apparent_temperature", idx); ok {
			data.ApparentTemperature.Set(v)
		}
		if v, ok := hourlyValue(forecast.HourlyMetrics, "relative_humidity_2m", idx); ok {
			data.RelativeHumidity.Set(v)
		}
		if v, ok := hourlyValue(forecast.HourlyMetrics, "pressure_msl", idx); ok {
			data.PressureMSL.Set(v)
		}
		if v, ok := hourlyValue(forecast.HourlyMetrics, "is_day", idx); ok {
			data.IsDay = v == 1
		}
	}

	return data, nil
}

// nearestHour returns the index of the hourly slot containing now.
func nearestHour(times []time.Time, now time.Time) (int, bool) {
	slot := now.Truncate(time.Hour)
	for i, t := range times {
		if t.Equal(slot) {
			return i, true
		}
	}
	return 0, false
}

func hourlyValue(metrics map[string][]float64, key string, idx int) (float64, bool) {
	series, ok := metrics[key]
	if !ok || idx >= len(series) {
		return 0, false
	}
	return series[idx], true
}
