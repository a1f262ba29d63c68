// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "REALWEATHER"

	DefaultTextTpl    = "{{.ConditionIcon}} {{floatFormat .Temperature 0}}{{.TempUnit}}"
	DefaultAltTextTpl = "{{if .DewPoint.IsSet}}Dew point: {{floatFormat .DewPoint.Value 0}}{{.TempUnit}} {{end}}" +
		"Wind: {{.WindCompass}} {{floatFormat .WindSpeed 0}}{{.WindUnit}}"
	DefaultTooltipTpl = "Condition: {{.Condition}}\nLocation: {{.Address.City}}, {{.Address.Country}}\n" +
		"Sunrise: {{timeFormat .SunriseTime \"15:04\"}}\nSunset: {{timeFormat .SunsetTime \"15:04\"}}\n" +
		"Sun: {{floatFormat .SolarElevation 1}} ({{.SkyPhase}})\n" +
		"Moonphase: {{.MoonphaseIcon}} {{.Moonphase}}"
)

// Config represents the application's configuration structure.
type Config struct {
	// Allowed values: metric, imperial
	Units    string     `fig:"units" default:"imperial"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Weather struct {
		// Allowed values: openweathermap, open-meteo
		Provider string `fig:"provider" default:"openweathermap"`

		// Thresholds are in the configured temperature unit. The
		// defaults assume imperial units.
		HotThreshold  float64 `fig:"hot_threshold" default:"86"`
		ColdThreshold float64 `fig:"cold_threshold" default:"32"`
	} `fig:"weather"`

	Intervals struct {
		WeatherUpdate time.Duration `fig:"weather_update" default:"10m"`
		Output        time.Duration `fig:"output" default:"1s"`
	} `fig:"intervals"`

	Templates struct {
		Text    string `fig:"text"`
		AltText string `fig:"alt_text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`

	GeoLocation struct {
		File           string `fig:"file"`
		DisableGPSD    bool   `fig:"disable_gpsd"`
		DisableGeoClue bool   `fig:"disable_geoclue"`
		DisableICHNAEA bool   `fig:"disable_ichnaea"`
		DisableGeoIP   bool   `fig:"disable_geoip"`

		// DefaultCity is the last resort of the location fallback chain.
		DefaultCity struct {
			Name      string  `fig:"name" default:"Buffalo"`
			Latitude  float64 `fig:"latitude" default:"42.88"`
			Longitude float64 `fig:"longitude" default:"-78.88"`
		} `fig:"default_city"`
	} `fig:"geolocation"`

	GeoCoder struct {
		Language string `fig:"language" default:"en"`
	} `fig:"geocoder"`

	Keystore struct {
		File string `fig:"file"`
	} `fig:"keystore"`
}

// NewFromFile loads the configuration from the given path and file,
// applying environment overrides on top.
func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// New loads the configuration from defaults and environment only.
func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Units != "metric" && c.Units != "imperial" {
		return fmt.Errorf("invalid units: %s", c.Units)
	}
	if c.Weather.Provider != "openweathermap" && c.Weather.Provider != "open-meteo" {
		return fmt.Errorf("invalid weather provider: %s", c.Weather.Provider)
	}
	if c.Intervals.Output <= 0 || c.Intervals.WeatherUpdate <= 0 {
		return fmt.Errorf("invalid intervals: output and weather_update must be positive")
	}
	city := c.GeoLocation.DefaultCity
	if city.Latitude < -90 || city.Latitude > 90 {
		return fmt.Errorf("invalid default city latitude: %f", city.Latitude)
	}
	if city.Longitude < -180 || city.Longitude > 180 {
		return fmt.Errorf("invalid default city longitude: %f", city.Longitude)
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.AltText == "" {
		c.Templates.AltText = DefaultAltTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}
	if c.GeoLocation.File == "" {
		home, _ := os.UserHomeDir()
		c.GeoLocation.File = filepath.Join(home, ".config", "realweather", "geolocation")
	}
	if c.Keystore.File == "" {
		home, _ := os.UserHomeDir()
		c.Keystore.File = filepath.Join(home, ".config", "realweather", "apikey")
	}

	return nil
}
