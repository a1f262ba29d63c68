// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package openweathermap

import (
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/http"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
	"github.com/wmarchant13/RealWeatherApp/internal/testhelper"
)

const currentJSON = `{
  "coord": {"lon": -78.8784, "lat": 42.8864},
  "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
  "main": {"temp": 54.3, "feels_like": 53.1, "pressure": 1012, "humidity": 81},
  "wind": {"speed": 8.05, "deg": 230},
  "dt": 1756500000,
  "sys": {"sunrise": 1756462800, "sunset": 1756510800},
  "timezone": -14400,
  "name": "Buffalo",
  "cod": 200
}`

func testClient(body string, code int, fail bool) *http.Client {
	client := http.New(logger.New(slog.LevelError))
	client.Transport = testhelper.MockRoundTripper{Fn: func(req *stdhttp.Request) (*stdhttp.Response, error) {
		if fail {
			return nil, errors.New("intentionally failing")
		}
		return &stdhttp.Response{
			StatusCode: code,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(stdhttp.Header),
		}, nil
	}}
	return client
}

func TestNew(t *testing.T) {
	t.Run("new OpenWeatherMap provider succeeds", func(t *testing.T) {
		provider, err := New(testClient("{}", 200, false), "secret-key", "imperial")
		if err != nil {
			t.Fatalf("failed to create OpenWeatherMap provider: %s", err)
		}
		if !strings.EqualFold(provider.Name(), "openweathermap") {
			t.Errorf("expected provider name to be openweathermap, got %s", provider.Name())
		}
	})
	t.Run("new OpenWeatherMap provider fails without API key", func(t *testing.T) {
		if _, err := New(testClient("{}", 200, false), "", "imperial"); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("expected ErrMissingAPIKey, got %s", err)
		}
	})
	t.Run("new OpenWeatherMap provider fails without HTTP client", func(t *testing.T) {
		if _, err := New(nil, "secret-key", "imperial"); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
}

func TestOpenWeatherMap_GetWeather(t *testing.T) {
	coords := geobus.Coordinate{Lat: 42.8864, Lon: -78.8784, Acc: geobus.AccuracyZip}
	t.Run("current conditions are parsed", func(t *testing.T) {
		provider, err := New(testClient(currentJSON, 200, false), "secret-key", "imperial")
		if err != nil {
			t.Fatalf("failed to create OpenWeatherMap provider: %s", err)
		}
		data, err := provider.GetWeather(t.Context(), coords)
		if err != nil {
			t.Fatalf("failed to get weather data: %s", err)
		}
		if data.Temperature != 54.3 {
			t.Errorf("expected temperature to be 54.3, got %f", data.Temperature)
		}
		if !data.ApparentTemperature.IsSet() || data.ApparentTemperature.Value() != 53.1 {
			t.Errorf("expected apparent temperature to be 53.1, got %s", data.ApparentTemperature.String())
		}
		if !data.RelativeHumidity.IsSet() || data.RelativeHumidity.Value() != 81 {
			t.Errorf("expected relative humidity to be 81, got %s", data.RelativeHumidity.String())
		}
		if !data.PressureMSL.IsSet() || data.PressureMSL.Value() != 1012 {
			t.Errorf("expected pressure to be 1012, got %s", data.PressureMSL.String())
		}
		if data.WindSpeed != 8.05 {
			t.Errorf("expected wind speed to be 8.05, got %f", data.WindSpeed)
		}
		if data.WindDirection != 230 {
			t.Errorf("expected wind direction to be 230, got %f", data.WindDirection)
		}
		if data.Condition != "Light rain" {
			t.Errorf("expected condition to be Light rain, got %s", data.Condition)
		}
		if data.ConditionCode != 61 {
			t.Errorf("expected condition code to be 61, got %d", data.ConditionCode)
		}
		if data.LocationName != "Buffalo" {
			t.Errorf("expected location name to be Buffalo, got %s", data.LocationName)
		}
		if data.SunriseEpoch != 1756462800 || data.SunsetEpoch != 1756510800 {
			t.Errorf("expected sun epochs 1756462800/1756510800, got %d/%d", data.SunriseEpoch, data.SunsetEpoch)
		}
		if !data.HasUTCOffset || data.UTCOffsetSeconds != -14400 {
			t.Errorf("expected UTC offset to be -14400, got %d", data.UTCOffsetSeconds)
		}
		if data.Units.Temperature != "°F" {
			t.Errorf("expected temperature unit to be °F, got %s", data.Units.Temperature)
		}
	})
	t.Run("metric units are requested for non-imperial systems", func(t *testing.T) {
		var gotUnits string
		client := http.New(logger.New(slog.LevelError))
		client.Transport = testhelper.MockRoundTripper{Fn: func(req *stdhttp.Request) (*stdhttp.Response, error) {
			gotUnits = req.URL.Query().Get("units")
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(currentJSON)),
				Header:     make(stdhttp.Header),
			}, nil
		}}
		provider, err := New(client, "secret-key", "metric")
		if err != nil {
			t.Fatalf("failed to create OpenWeatherMap provider: %s", err)
		}
		if _, err = provider.GetWeather(t.Context(), coords); err != nil {
			t.Fatalf("failed to get weather data: %s", err)
		}
		if gotUnits != "metric" {
			t.Errorf("expected units query parameter to be metric, got %s", gotUnits)
		}
	})
	t.Run("get weather fails on HTTP error", func(t *testing.T) {
		provider, err := New(testClient("", 200, true), "secret-key", "imperial")
		if err != nil {
			t.Fatalf("failed to create OpenWeatherMap provider: %s", err)
		}
		if _, err = provider.GetWeather(t.Context(), coords); err == nil {
			t.Error("expected weather retrieval to fail")
		}
	})
	t.Run("get weather fails on unexpected response code", func(t *testing.T) {
		provider, err := New(testClient(`{"cod":401}`, 401, false), "invalid-key", "imperial")
		if err != nil {
			t.Fatalf("failed to create OpenWeatherMap provider: %s", err)
		}
		if _, err = provider.GetWeather(t.Context(), coords); err == nil {
			t.Error("expected weather retrieval to fail")
		}
	})
}

func TestConditionToWMO(t *testing.T) {
	tests := []struct {
		name string
		id   int
		want int
	}{
		{"thunderstorm maps to WMO thunderstorm", 211, 95},
		{"drizzle maps to WMO moderate drizzle", 301, 53},
		{"light rain maps to WMO slight rain", 500, 61},
		{"moderate rain maps to WMO moderate rain", 501, 63},
		{"heavy rain maps to WMO heavy rain", 502, 65},
		{"freezing rain maps to WMO freezing rain", 511, 66},
		{"shower rain maps to WMO rain showers", 521, 80},
		{"light snow maps to WMO slight snow", 600, 71},
		{"snow maps to WMO moderate snow", 601, 73},
		{"heavy snow maps to WMO heavy snow", 602, 75},
		{"sleet maps to WMO snow showers", 611, 85},
		{"mist maps to WMO fog", 701, 45},
		{"fog maps to WMO fog", 741, 45},
		{"clear sky maps to WMO clear", 800, 0},
		{"few clouds map to WMO mainly clear", 801, 1},
		{"scattered clouds map to WMO partly cloudy", 802, 2},
		{"overcast maps to WMO overcast", 804, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := conditionToWMO(tc.id); got != tc.want {
				t.Errorf("expected condition %d to map to WMO code %d, got %d", tc.id, tc.want, got)
			}
		})
	}
}
