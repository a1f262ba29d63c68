// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package openweathermap retrieves current weather data from the
// OpenWeatherMap API. An API key is required.
package openweathermap

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unicode"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/http"
	"github.com/wmarchant13/RealWeatherApp/internal/weather"
)

const (
	DefaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	apiTimeout      = time.Second * 10
)

var ErrMissingAPIKey = errors.New("OpenWeatherMap requires an API key")

// OpenWeatherMap is a weather Provider backed by the OpenWeatherMap API.
type OpenWeatherMap struct {
	endpoint string
	apiKey   string
	unit     string
	http     *http.Client
}

type response struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	DT  int64 `json:"dt"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	TimezoneOffset int    `json:"timezone"`
	Name           string `json:"name"`
}

// New returns an OpenWeatherMap provider using the given HTTP client,
// API key and unit system.
func New(client *http.Client, apiKey, unit string) (*OpenWeatherMap, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &OpenWeatherMap{
		endpoint: DefaultEndpoint,
		apiKey:   apiKey,
		unit:     unit,
		http:     client,
	}, nil
}

func (o *OpenWeatherMap) Name() string {
	return "openweathermap"
}

// GetWeather fetches the current conditions for the given coordinates.
func (o *OpenWeatherMap) GetWeather(ctx context.Context, coords geobus.Coordinate) (*weather.Data, error) {
	res := new(response)

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	query.Set("appid", o.apiKey)
	if o.unit == "imperial" {
		query.Set("units", "imperial")
	} else {
		query.Set("units", "metric")
	}

	code, err := o.http.GetWithTimeout(ctx, o.endpoint, res, query, nil, apiTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve weather data from OpenWeatherMap API: %w", err)
	}
	if code != 200 {
		return nil, fmt.Errorf("OpenWeatherMap API returned unexpected response code: %d", code)
	}

	data := weather.NewData()
	data.Coordinates = coords
	data.LocationName = res.Name
	data.Units = weather.UnitsFor(o.unit)

	data.Temperature = res.Main.Temp
	data.ApparentTemperature.Set(res.Main.FeelsLike)
	data.RelativeHumidity.Set(res.Main.Humidity)
	data.PressureMSL.Set(res.Main.Pressure)
	data.WindSpeed = res.Wind.Speed
	data.WindDirection = res.Wind.Deg

	if len(res.Weather) > 0 {
		data.Condition = capitalize(res.Weather[0].Description)
		data.ConditionCode = conditionToWMO(res.Weather[0].ID)
	}

	data.SunriseEpoch = res.Sys.Sunrise
	data.SunsetEpoch = res.Sys.Sunset
	data.UTCOffsetSeconds = res.TimezoneOffset
	data.HasUTCOffset = true

	now := time.Now().Unix()
	data.IsDay = res.Sys.Sunrise > 0 && now >= res.Sys.Sunrise && now < res.Sys.Sunset

	return data, nil
}

// conditionToWMO maps an OpenWeatherMap condition ID onto the closest
// WMO weather code, so icon and description lookups work for both
// providers.
func conditionToWMO(id int) int {
	switch {
	case id >= 200 && id < 300:
		return 95
	case id >= 300 && id < 400:
		return 53
	case id == 500:
		return 61
	case id == 501:
		return 63
	case id >= 502 && id <= 504:
		return 65
	case id == 511:
		return 66
	case id >= 520 && id < 600:
		return 80
	case id == 600:
		return 71
	case id == 601:
		return 73
	case id == 602:
		return 75
	case id >= 611 && id < 700:
		return 85
	case id >= 700 && id < 800:
		return 45
	case id == 800:
		return 0
	case id == 801:
		return 1
	case id == 802:
		return 2
	case id == 803 || id == 804:
		return 3
	default:
		return 0
	}
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
