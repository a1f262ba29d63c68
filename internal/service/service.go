// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package service wires the location bus, the weather provider, the sky
// engine and the output templates into the long-running display loop.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	moonphase "github.com/wneessen/go-moonphase"

	"github.com/wmarchant13/RealWeatherApp/internal/astro"
	"github.com/wmarchant13/RealWeatherApp/internal/config"
	"github.com/wmarchant13/RealWeatherApp/internal/conv"
	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/geocode"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
	"github.com/wmarchant13/RealWeatherApp/internal/sky"
	"github.com/wmarchant13/RealWeatherApp/internal/template"
	"github.com/wmarchant13/RealWeatherApp/internal/weather"
)

const (
	// OutputClass is always the first CSS class of the JSON payload.
	OutputClass = "realweather"
	// HotOutputClass is appended when the temperature exceeds the
	// configured hot threshold.
	HotOutputClass = "hot"
	// ColdOutputClass is appended when the temperature falls below the
	// configured cold threshold.
	ColdOutputClass = "cold"

	subscribeBuffer = 32
)

type backgroundData struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

type outputData struct {
	Text       string         `json:"text"`
	Tooltip    string         `json:"tooltip"`
	Classes    []string       `json:"class"`
	Background backgroundData `json:"background"`
}

type Service struct {
	config       *config.Config
	logger       *logger.Logger
	bus          *geobus.Bus
	orchestrator *geobus.Orchestrator
	scheduler    gocron.Scheduler
	templates    *template.Templates
	weatherProv  weather.Provider
	geocoder     geocode.Geocoder
	output       io.Writer

	SignalSrc signalSource

	locationLock sync.RWMutex
	coords       geobus.Coordinate
	hasCoords    bool
	address      geocode.Address

	weatherLock  sync.RWMutex
	weatherIsSet bool
	weather      *weather.Data
	sunTimes     astro.SunTimes

	displayAltLock sync.RWMutex
	displayAltText bool
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	tpls, err := template.New(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	service := &Service{
		config:    conf,
		bus:       geobus.New(log),
		logger:    log,
		scheduler: scheduler,
		templates: tpls,
		output:    os.Stdout,
		SignalSrc: stdLibSignalSource{},
	}
	return service, nil
}

func (s *Service) Run(ctx context.Context) error {
	geocoder, err := s.selectGeocodeProvider()
	if err != nil {
		return fmt.Errorf("failed to create geocode provider: %w", err)
	}
	s.geocoder = geocoder

	weatherProv, err := s.selectWeatherProvider()
	if err != nil {
		return fmt.Errorf("failed to create weather provider: %w", err)
	}
	s.weatherProv = weatherProv

	geoProviders, err := s.selectGeobusProviders()
	if err != nil {
		return fmt.Errorf("failed to create geobus orchestrator: %w", err)
	}
	s.orchestrator = s.bus.NewOrchestrator(geoProviders)

	// Start scheduled jobs
	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.printWeather,
		"weatherdata_output_job"); err != nil {
		return err
	}
	if err := s.createScheduledJob(ctx, s.config.Intervals.WeatherUpdate, s.fetchWeather,
		"weather_update_job"); err != nil {
		return err
	}
	s.scheduler.Start()

	// Subscribe to geolocation updates from the geobus
	sub, unsub := s.bus.Subscribe(subscribeBuffer)
	go s.processLocationUpdates(ctx, sub)
	go s.orchestrator.Track(ctx)
	go s.monitorSleepResume(ctx)

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer s.SignalSrc.Stop(sigChan)
		s.HandleSignals(ctx, sigChan)
	}()

	// Wait for the context to cancel
	<-ctx.Done()
	if unsub != nil {
		unsub()
	}
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// printWeather renders the templates against the current weather and sky
// state and writes the JSON payload to the output writer.
func (s *Service) printWeather(context.Context) {
	s.weatherLock.RLock()
	isSet := s.weatherIsSet
	s.weatherLock.RUnlock()
	if !isSet {
		return
	}

	displayData := new(template.DisplayData)
	gradient := s.fillDisplayData(displayData, time.Now())

	s.displayAltLock.RLock()
	altMode := s.displayAltText
	s.displayAltLock.RUnlock()
	textTpl := s.templates.Text
	if altMode {
		textTpl = s.templates.AltText
	}

	textBuf := bytes.NewBuffer(nil)
	if err := textTpl.Execute(textBuf, displayData); err != nil {
		s.logger.Error("failed to render weather template",
			logger.Err(fmt.Errorf("failed to render text template: %w", err)))
		return
	}
	tooltipBuf := bytes.NewBuffer(nil)
	if err := s.templates.Tooltip.Execute(tooltipBuf, displayData); err != nil {
		s.logger.Error("failed to render weather template",
			logger.Err(fmt.Errorf("failed to render tooltip template: %w", err)))
		return
	}

	output := outputData{
		Text:    textBuf.String(),
		Tooltip: tooltipBuf.String(),
		Classes: s.outputClasses(displayData),
		Background: backgroundData{
			Top:    gradient.Top.Hex(),
			Bottom: gradient.Bottom.Hex(),
		},
	}

	if err := json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode weather data", logger.Err(err))
	}
}

// outputClasses assembles the CSS class list: the base class, the current
// sky phase and an optional hot/cold marker.
func (s *Service) outputClasses(display *template.DisplayData) []string {
	classes := []string{OutputClass}
	if display.SkyPhase != "" {
		classes = append(classes, display.SkyPhase)
	}
	switch {
	case display.Temperature >= s.config.Weather.HotThreshold:
		classes = append(classes, HotOutputClass)
	case display.Temperature <= s.config.Weather.ColdThreshold:
		classes = append(classes, ColdOutputClass)
	}
	return classes
}

// fillDisplayData populates the template context from the weather and
// location snapshots and returns the background gradient for the current
// instant. It locks both snapshots for the duration of the fill.
func (s *Service) fillDisplayData(target *template.DisplayData, now time.Time) sky.Gradient {
	s.locationLock.RLock()
	defer s.locationLock.RUnlock()
	s.weatherLock.RLock()
	defer s.weatherLock.RUnlock()

	if s.weather == nil {
		s.logger.Debug("no weather data available yet, geo location might not have returned a location yet")
		return sky.ComposeElapsed(0.5)
	}

	// Coordinate data
	target.Latitude = s.weather.Coordinates.Lat
	target.Longitude = s.weather.Coordinates.Lon
	target.Address = s.address

	// Sun times: prefer the provider snapshot, fall back to computing
	// them from the coordinate.
	st := s.sunTimes
	if st.IsZero() && s.hasCoords {
		st = astro.ComputeSunTimes(s.coords.Lat, s.coords.Lon, now)
	}
	target.SunriseTime = st.Sunrise
	target.SunsetTime = st.Sunset

	// Moon phase
	m := moonphase.New(now)
	target.Moonphase = m.PhaseName()
	target.MoonphaseIcon = template.MoonPhaseIcon[target.Moonphase]

	// Weather data
	target.UpdateTime = s.weather.GeneratedAt
	target.TempUnit = s.weather.Units.Temperature
	target.WindUnit = s.weather.Units.WindSpeed
	target.HumidityUnit = s.weather.Units.Humidity
	target.PressureUnit = s.weather.Units.Pressure
	target.Temperature = s.weather.Temperature
	target.ApparentTemperature = s.weather.ApparentTemperature
	target.Humidity = s.weather.RelativeHumidity
	target.Pressure = s.weather.PressureMSL
	target.WindSpeed = s.weather.WindSpeed
	target.WindDirection = s.weather.WindDirection
	target.WindCompass = conv.WindCompass(s.weather.WindDirection)
	target.WindCompassIcon = template.WindDirIcon(target.WindCompass)
	target.Condition = s.weather.Condition
	if s.weather.RelativeHumidity.IsSet() && s.weather.RelativeHumidity.Value() > 0 {
		target.DewPoint.Set(s.dewPoint(s.weather.Temperature, s.weather.RelativeHumidity.Value()))
	}

	target.IsDaytime = s.weather.IsDay
	if !st.IsZero() {
		target.IsDaytime = now.After(st.Sunrise) && now.Before(st.Sunset)
	}
	target.ConditionIcon = template.ConditionIcon(s.weather.ConditionCode, target.IsDaytime)
	target.ConditionIconWithSpace = template.EmojiWithSpace(target.ConditionIcon)

	// Sky state
	frac := st.DayFraction(now)
	if !s.hasCoords {
		return sky.ComposeElapsed(frac)
	}
	pos := astro.SunPosition(s.coords.Lat, s.coords.Lon, now.UTC())
	target.SolarElevation = pos.ElevationDeg
	target.SolarAzimuth = pos.AzimuthDeg
	phase, blend := sky.Classify(pos.ElevationDeg, frac)
	target.SkyPhase = phase.String()
	return sky.Compose(phase, blend)
}

// dewPoint converts through Fahrenheit, where the Magnus-Tetens helper
// operates, and back to the configured unit.
func (s *Service) dewPoint(temp, humidityPct float64) float64 {
	if s.config.Units == "imperial" {
		return conv.DewPointF(temp, humidityPct)
	}
	dewF := conv.DewPointF(temp*9/5+32, humidityPct)
	return (dewF - 32) * 5 / 9
}

// updateLocation stores a new coordinate, resolves its address and
// triggers an immediate weather refresh.
func (s *Service) updateLocation(ctx context.Context, coords geobus.Coordinate) error {
	if !coords.Valid() {
		return fmt.Errorf("invalid coordinates: %f, %f", coords.Lat, coords.Lon)
	}

	address, err := s.geocoder.Reverse(ctx, coords)
	if err != nil {
		return fmt.Errorf("failed reverse geocode coordinates: %w", err)
	}

	s.locationLock.Lock()
	s.coords = coords
	s.hasCoords = true
	s.address = address
	s.locationLock.Unlock()
	s.logger.Debug("address successfully resolved", slog.String("address", address.DisplayName),
		slog.Float64("latitude", coords.Lat), slog.Float64("longitude", coords.Lon))

	s.fetchWeather(ctx)
	s.printWeather(ctx)

	return nil
}

// processLocationUpdates consumes geolocation results from the bus
// subscription and applies them to the service state.
func (s *Service) processLocationUpdates(ctx context.Context, sub <-chan geobus.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-sub:
			if !ok {
				return
			}
			s.logger.Debug("received geolocation update",
				slog.Float64("lat", r.Lat), slog.Float64("lon", r.Lon), slog.String("source", r.Source))
			if err := s.updateLocation(ctx, r.Coordinate()); err != nil {
				s.logger.Error("failed to apply geo update", logger.Err(err), slog.String("source", r.Source))
			}
		}
	}
}
