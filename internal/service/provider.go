// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/geobus/provider/geoclue"
	"github.com/wmarchant13/RealWeatherApp/internal/geobus/provider/geoip"
	"github.com/wmarchant13/RealWeatherApp/internal/geobus/provider/geolocation_file"
	"github.com/wmarchant13/RealWeatherApp/internal/geobus/provider/gpsd"
	"github.com/wmarchant13/RealWeatherApp/internal/geobus/provider/ichnaea"
	"github.com/wmarchant13/RealWeatherApp/internal/geobus/provider/static"
	"github.com/wmarchant13/RealWeatherApp/internal/geocode"
	nominatim "github.com/wmarchant13/RealWeatherApp/internal/geocode/provider/osm-nominatim"
	"github.com/wmarchant13/RealWeatherApp/internal/http"
	"github.com/wmarchant13/RealWeatherApp/internal/keystore"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
	"github.com/wmarchant13/RealWeatherApp/internal/weather"
	open_meteo "github.com/wmarchant13/RealWeatherApp/internal/weather/provider/open-meteo"
	"github.com/wmarchant13/RealWeatherApp/internal/weather/provider/openweathermap"
)

const (
	cacheHitTTL  = time.Hour * 6
	cacheMissTTL = time.Minute * 15
)

// selectGeobusProviders assembles the geolocation fallback chain. The
// static default city is always appended last, so the bus never stays
// silent even with every other provider disabled or failing.
func (s *Service) selectGeobusProviders() ([]geobus.Provider, error) {
	httpClient := http.New(s.logger)
	var provider []geobus.Provider

	if s.config.GeoLocation.File != "" {
		provider = append(provider, geolocation_file.New(s.config.GeoLocation.File))
	}

	if !s.config.GeoLocation.DisableGPSD {
		provider = append(provider, gpsd.New(s.logger))
	}

	if !s.config.GeoLocation.DisableGeoClue {
		provider = append(provider, geoclue.New(s.logger))
	}

	if !s.config.GeoLocation.DisableICHNAEA {
		mls, err := ichnaea.New(httpClient)
		if err != nil {
			s.logger.Error("failed to create ICHNAEA provider", logger.Err(err))
		} else {
			provider = append(provider, mls)
		}
	}

	if !s.config.GeoLocation.DisableGeoIP {
		provider = append(provider, geoip.New(httpClient))
	}

	city := s.config.GeoLocation.DefaultCity
	fallback, err := static.New(city.Name, city.Latitude, city.Longitude, s.geocoder)
	if err != nil {
		s.logger.Warn("no usable default city configured, skipping static fallback", logger.Err(err))
	} else {
		provider = append(provider, fallback)
	}

	if len(provider) == 0 {
		return nil, fmt.Errorf("no geolocation providers enabled")
	}

	return provider, nil
}

func (s *Service) selectGeocodeProvider() (geocode.Geocoder, error) {
	lang, err := language.Parse(s.config.GeoCoder.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geocoder language %q: %w", s.config.GeoCoder.Language, err)
	}
	return geocode.NewCachedGeocoder(nominatim.New(http.New(s.logger), lang), cacheHitTTL, cacheMissTTL), nil
}

func (s *Service) selectWeatherProvider() (provider weather.Provider, err error) {
	switch strings.ToLower(s.config.Weather.Provider) {
	case "openweathermap":
		key, err := keystore.New(s.config.Keystore.File).Key()
		if err != nil {
			return nil, fmt.Errorf("failed to read OpenWeatherMap API key: %w", err)
		}
		provider, err = openweathermap.New(http.New(s.logger), key, s.config.Units)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenWeatherMap weather provider: %w", err)
		}
		return provider, nil
	case "open-meteo":
		provider, err = open_meteo.New(s.logger, s.config.Units)
		if err != nil {
			return provider, fmt.Errorf("failed to create Open-Meteo weather provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported weather provider: %s", s.config.Weather.Provider)
	}
}
