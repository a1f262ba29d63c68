// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package static serves the configured default city as the last resort
// of the location fallback chain. Its results never expire and carry the
// worst possible accuracy, so any live source immediately wins.
package static

import (
	"context"
	"errors"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/geocode"
)

var ErrNoCity = errors.New("no default city configured")

// Provider emits the configured default city once per stream.
type Provider struct {
	city  string
	coord geobus.Coordinate
	coder geocode.Geocoder
}

// New returns a static provider for the given city. When lat and lon are
// both zero the city name is resolved through the geocoder on first use.
func New(city string, lat, lon float64, coder geocode.Geocoder) (*Provider, error) {
	if city == "" && lat == 0 && lon == 0 {
		return nil, ErrNoCity
	}
	return &Provider{
		city:  city,
		coord: geobus.Coordinate{Lat: lat, Lon: lon, Acc: geobus.AccuracyUnknown},
		coder: coder,
	}, nil
}

func (p *Provider) Name() string {
	return "static"
}

// LookupStream emits the default city coordinates once and then keeps
// the stream open until the context ends.
func (p *Provider) LookupStream(ctx context.Context) <-chan geobus.Result {
	out := make(chan geobus.Result)
	go func() {
		defer close(out)

		coord, err := p.resolve(ctx)
		if err != nil {
			return
		}
		r := geobus.Result{
			Lat:            coord.Lat,
			Lon:            coord.Lon,
			AccuracyMeters: coord.Acc,
			Source:         p.Name(),
			At:             time.Now(),
		}
		select {
		case <-ctx.Done():
			return
		case out <- r:
		}

		<-ctx.Done()
	}()
	return out
}

// resolve returns the configured coordinates, forward-geocoding the city
// name when none are set.
func (p *Provider) resolve(ctx context.Context) (geobus.Coordinate, error) {
	if p.coord.Lat != 0 || p.coord.Lon != 0 {
		return p.coord, nil
	}
	if p.coder == nil {
		return geobus.Coordinate{}, ErrNoCity
	}
	coord, err := p.coder.Search(ctx, p.city)
	if err != nil {
		return geobus.Coordinate{}, err
	}
	coord.Acc = geobus.AccuracyUnknown
	return coord, nil
}
