// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package gpsd streams position fixes from a local gpsd daemon. It is
// the most accurate source when a GPS receiver is attached.
package gpsd

import (
	"context"
	"net"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"

	"github.com/stratoberry/go-gpsd"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "2947"

	// fallbackAccuracy is assumed when gpsd reports a fix without
	// position error estimates.
	fallbackAccuracy = 10.0
)

// Provider streams position fixes from gpsd.
type Provider struct {
	addr   string
	logger *logger.Logger
	period time.Duration
	ttl    time.Duration
}

// New returns a gpsd provider connecting to the default local socket.
func New(log *logger.Logger) *Provider {
	return &Provider{
		addr:   net.JoinHostPort(DefaultHost, DefaultPort),
		logger: log,
		period: time.Second * 30,
		ttl:    time.Minute * 2,
	}
}

func (p *Provider) Name() string {
	return "gpsd"
}

// LookupStream connects to gpsd and emits a result for every TPV report
// with at least a 2D fix whose position changed, reconnecting with a
// delay when the connection drops, until the context ends.
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

			session, err := gpsd.Dial(p.addr)
			if err != nil {
				p.logger.Debug("failed to connect to gpsd", "address", p.addr,
					logger.Err(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.period):
					continue
				}
			}

			session.AddFilter("TPV", func(r interface{}) {
				tpv, ok := r.(*gpsd.TPVReport)
				if !ok {
					return
				}

				// Need at least a 2D fix
				if tpv.Mode < gpsd.Mode2D {
					return
				}

				coord := geobus.Coordinate{
					Lat: geobus.Truncate(tpv.Lat, geobus.TruncPrecision),
					Lon: geobus.Truncate(tpv.Lon, geobus.TruncPrecision),
					Acc: fixAccuracy(tpv),
				}
				if !state.HasChanged(coord) {
					return
				}
				state.Update(coord)

				res := geobus.Result{
					Lat:            coord.Lat,
					Lon:            coord.Lon,
					AccuracyMeters: coord.Acc,
					Source:         p.Name(),
					At:             time.Now(),
					TTL:            p.ttl,
				}
				select {
				case <-ctx.Done():
					// Caller is done; just stop sending.
					return
				case out <- res:
				}
			})

			// Watch() returns a channel that closes when the watch ends,
			// e.g. when the connection is lost.
			done := session.Watch()

			select {
			case <-ctx.Done():
				// The process exiting tears down the gpsd connection;
				// go-gpsd itself has no Close().
				return
			case <-done:
				// gpsd connection ended; reconnect after a short delay
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

// fixAccuracy derives an accuracy estimate in meters from the position
// error estimates of a TPV report.
func fixAccuracy(tpv *gpsd.TPVReport) float64 {
	acc := tpv.Epx
	if tpv.Epy > acc {
		acc = tpv.Epy
	}
	if acc <= 0 {
		return fallbackAccuracy
	}
	return geobus.Truncate(acc, geobus.TruncPrecision)
}
