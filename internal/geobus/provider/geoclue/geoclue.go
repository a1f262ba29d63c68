// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package geoclue streams location updates from the GeoClue2 system
// service over DBus.
package geoclue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
)

const (
	busName       = "org.freedesktop.GeoClue2"
	managerPath   = "/org/freedesktop/GeoClue2/Manager"
	managerIface  = "org.freedesktop.GeoClue2.Manager"
	clientIface   = "org.freedesktop.GeoClue2.Client"
	locationIface = "org.freedesktop.GeoClue2.Location"

	// DesktopID identifies this application towards the GeoClue agent.
	DesktopID = "realweather"

	// accuracyLevelExact requests the best fix GeoClue can deliver.
	accuracyLevelExact = uint32(8)

	// fallbackAccuracy is assumed when GeoClue reports a location
	// without an accuracy value.
	fallbackAccuracy = geobus.AccuracyCity
)

var ErrNoLocation = errors.New("location update carried no location object")

// Provider streams location updates from GeoClue2.
type Provider struct {
	logger *logger.Logger
	ttl    time.Duration
}

// New returns a GeoClue2 provider.
func New(log *logger.Logger) *Provider {
	return &Provider{
		logger: log,
		ttl:    time.Minute * 30,
	}
}

func (p *Provider) Name() string {
	return "geoclue"
}

// LookupStream registers a GeoClue client on the system bus and emits a
// result for every LocationUpdated signal until the context ends. The
// stream closes when the bus connection fails, letting the caller
// restart it.
func (p *Provider) LookupStream(ctx context.Context) <-chan geobus.Result {
	out := make(chan geobus.Result)
	go func() {
		defer close(out)

		conn, clientPath, signals, err := p.register(ctx)
		if err != nil {
			p.logger.Debug("failed to register with GeoClue", logger.Err(err))
			return
		}
		defer func() {
			client := conn.Object(busName, clientPath)
			_ = client.Call(clientIface+".Stop", 0).Err
			if err := conn.Close(); err != nil {
				p.logger.Error("failed to close DBus connection", logger.Err(err))
			}
		}()

		state := geobus.GeolocationState{}
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				coord, err := p.parseLocationUpdated(conn, sig)
				if err != nil {
					p.logger.Debug("failed to parse GeoClue location update", logger.Err(err))
					continue
				}
				if !state.HasChanged(coord) {
					continue
				}
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

// register connects to the system bus, requests a GeoClue client and
// subscribes to its LocationUpdated signal.
func (p *Provider) register(ctx context.Context) (*dbus.Conn, dbus.ObjectPath, chan *dbus.Signal, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	manager := conn.Object(busName, managerPath)
	var clientPath dbus.ObjectPath
	if err = manager.CallWithContext(ctx, managerIface+".GetClient", 0).Store(&clientPath); err != nil {
		_ = conn.Close()
		return nil, "", nil, fmt.Errorf("failed to get GeoClue client: %w", err)
	}

	client := conn.Object(busName, clientPath)
	if err = client.SetProperty(clientIface+".DesktopId", dbus.MakeVariant(DesktopID)); err != nil {
		_ = conn.Close()
		return nil, "", nil, fmt.Errorf("failed to set desktop id: %w", err)
	}
	if err = client.SetProperty(clientIface+".RequestedAccuracyLevel",
		dbus.MakeVariant(accuracyLevelExact)); err != nil {
		_ = conn.Close()
		return nil, "", nil, fmt.Errorf("failed to set requested accuracy level: %w", err)
	}

	if err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(clientIface),
		dbus.WithMatchMember("LocationUpdated"),
	); err != nil {
		_ = conn.Close()
		return nil, "", nil, fmt.Errorf("failed to subscribe to location updates: %w", err)
	}
	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	if err = client.CallWithContext(ctx, clientIface+".Start", 0).Err; err != nil {
		_ = conn.Close()
		return nil, "", nil, fmt.Errorf("failed to start GeoClue client: %w", err)
	}

	return conn, clientPath, signals, nil
}

// parseLocationUpdated reads the location object referenced by a
// LocationUpdated signal.
func (p *Provider) parseLocationUpdated(conn *dbus.Conn, sig *dbus.Signal) (geobus.Coordinate, error) {
	if len(sig.Body) < 2 {
		return geobus.Coordinate{}, ErrNoLocation
	}
	locationPath, ok := sig.Body[1].(dbus.ObjectPath)
	if !ok {
		return geobus.Coordinate{}, ErrNoLocation
	}
	location := conn.Object(busName, locationPath)

	lat, err := locationProperty(location, "Latitude")
	if err != nil {
		return geobus.Coordinate{}, err
	}
	lon, err := locationProperty(location, "Longitude")
	if err != nil {
		return geobus.Coordinate{}, err
	}
	acc, err := locationProperty(location, "Accuracy")
	if err != nil || acc <= 0 {
		acc = fallbackAccuracy
	}

	return geobus.Coordinate{
		Lat: geobus.Truncate(lat, geobus.TruncPrecision),
		Lon: geobus.Truncate(lon, geobus.TruncPrecision),
		Acc: geobus.Truncate(acc, geobus.TruncPrecision),
	}, nil
}

func locationProperty(location dbus.BusObject, name string) (float64, error) {
	variant, err := location.GetProperty(locationIface + "." + name)
	if err != nil {
		return 0, fmt.Errorf("failed to get location property %s: %w", name, err)
	}
	value, ok := variant.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("location property %s has unexpected type %T", name, variant.Value())
	}
	return value, nil
}
