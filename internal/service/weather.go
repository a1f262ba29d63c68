// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/astro"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
)

const FetchTimeout = time.Second * 10

// fetchWeather retrieves fresh weather data for the current coordinate
// and replaces the weather and sun time snapshots.
func (s *Service) fetchWeather(ctx context.Context) {
	s.locationLock.RLock()
	coords, hasCoords := s.coords, s.hasCoords
	s.locationLock.RUnlock()
	if !hasCoords {
		s.logger.Debug("no location available yet, skipping weather update")
		return
	}

	ctxFetch, cancelFetch := context.WithTimeout(ctx, FetchTimeout)
	defer cancelFetch()

	data, err := s.weatherProv.GetWeather(ctxFetch, coords)
	if err != nil {
		s.logger.Error("failed to fetch weather data", logger.Err(err),
			slog.String("source", s.weatherProv.Name()))
		return
	}

	// Sun times come from the provider when it delivers them, otherwise
	// they are computed for the coordinate.
	var st astro.SunTimes
	if data.SunriseEpoch > 0 && data.SunsetEpoch > 0 {
		st = astro.NewSunTimes(data.SunriseEpoch, data.SunsetEpoch, data.UTCOffsetSeconds, data.HasUTCOffset)
	} else {
		st = astro.ComputeSunTimes(coords.Lat, coords.Lon, time.Now())
	}

	s.weatherLock.Lock()
	defer s.weatherLock.Unlock()
	s.weather = data
	s.sunTimes = st
	s.weatherIsSet = true
}
