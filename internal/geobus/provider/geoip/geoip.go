// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package geoip estimates the device location from its public IP
// address. The result is coarse, so it mostly serves as a fallback when
// no better source is available.
package geoip

import (
	"context"
	"fmt"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/http"
)

const (
	DefaultEndpoint = "https://reallyfreegeoip.org/json/"
	lookupTimeout   = time.Second * 5
)

// Provider looks up the device location via a GeoIP web service.
type Provider struct {
	endpoint string
	http     *http.Client
	period   time.Duration
	ttl      time.Duration
}

type apiResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	Region      string  `json:"region_name,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MetroCode   int     `json:"metro_code"`
}

// New returns a GeoIP provider using the given HTTP client.
func New(client *http.Client) *Provider {
	return &Provider{
		endpoint: DefaultEndpoint,
		http:     client,
		period:   30 * time.Minute,
		ttl:      60 * time.Minute,
	}
}

func (p *Provider) Name() string {
	return "geoip"
}

// LookupStream periodically queries the GeoIP service and emits a result
// whenever the reported position changes, until the context ends.
func (p *Provider) LookupStream(ctx context.Context) <-chan geobus.Result {
	out := make(chan geobus.Result)
	go func() {
		defer close(out)
		state := geobus.GeolocationState{}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			coord, err := p.locate(ctx)
			if err == nil && state.HasChanged(coord) {
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

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.period):
			}
		}
	}()
	return out
}

func (p *Provider) locate(ctx context.Context) (geobus.Coordinate, error) {
	ctxHTTP, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	result := new(apiResult)
	if _, err := p.http.Get(ctxHTTP, p.endpoint, result, nil, nil); err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}

	acc := geobus.AccuracyUnknown
	if result.CountryCode != "" {
		acc = geobus.AccuracyCountry
	}
	if result.RegionCode != "" {
		acc = geobus.AccuracyRegion
	}
	if result.City != "" {
		acc = geobus.AccuracyCity
	}
	if result.ZipCode != "" {
		acc = geobus.AccuracyZip
	}

	return geobus.Coordinate{
		Lat: geobus.Truncate(result.Latitude, geobus.TruncPrecision),
		Lon: geobus.Truncate(result.Longitude, geobus.TruncPrecision),
		Acc: acc,
	}, nil
}
