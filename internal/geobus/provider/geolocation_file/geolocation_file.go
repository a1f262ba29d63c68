// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package geolocation_file reads a fixed location from a user-maintained
// file. The file holds one "lat,lon" pair, with optional comment lines
// starting with "#".
package geolocation_file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
)

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// Provider reads geolocation data from a file and emits updates when the
// coordinates in the file change.
type Provider struct {
	path     string
	period   time.Duration
	ttl      time.Duration
	locateFn func() (geobus.Coordinate, error)
}

// New initializes a file-based geolocation provider with default update
// interval and TTL settings.
func New(path string) *Provider {
	provider := &Provider{
		path:   path,
		period: time.Minute * 2,
		ttl:    time.Hour * 1,
	}
	provider.locateFn = provider.readFile
	return provider
}

func (p *Provider) Name() string {
	return "geolocation_file"
}

// LookupStream continuously streams geolocation results from the file,
// emitting updates when its content changes, until the context ends.
func (p *Provider) LookupStream(ctx context.Context) <-chan geobus.Result {
	out := make(chan geobus.Result)
	go func() {
		defer close(out)
		state := geobus.GeolocationState{}
		firstRun := true

		for {
			if !firstRun {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.period):
				}
			}
			firstRun = false

			coord, err := p.locateFn()
			if err != nil {
				continue
			}

			if state.HasChanged(coord) {
				state.Update(coord)
				r := geobus.Result{
					Lat:            coord.Lat,
					Lon:            coord.Lon,
					AccuracyMeters: coord.Acc,
					Source:         p.Name(),
					At:             time.Now(),
					TTL:            p.ttl,
				}
				select {
				case <-ctx.Done():
					return
				case out <- r:
				}
			}
		}
	}()
	return out
}

// readFile parses the first valid "lat,lon" line of the configured file.
func (p *Provider) readFile() (geobus.Coordinate, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to read geolocation file %q: %w", p.path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		coords := strings.Split(line, ",")
		if len(coords) != 2 {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			continue
		}
		return geobus.Coordinate{Lat: lat, Lon: lon, Acc: geobus.AccuracyZip}, nil
	}
	return geobus.Coordinate{}, ErrNoCoordinates
}
