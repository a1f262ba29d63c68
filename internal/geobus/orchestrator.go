// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"fmt"
	"sync"
)

// Orchestrator runs the configured providers and publishes their results
// on the bus.
type Orchestrator struct {
	Bus       *Bus
	Providers []Provider
}

// Track starts one goroutine per provider, restarting a provider's
// stream with exponential backoff when it closes. It blocks until the
// context is cancelled.
func (o *Orchestrator) Track(ctx context.Context) {
	var wg sync.WaitGroup
	for _, provider := range o.Providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			o.runProvider(ctx, p)
		}(provider)
	}
	wg.Wait()
}

func (o *Orchestrator) runProvider(ctx context.Context, p Provider) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		stream, err := o.safeLookup(ctx, p)
		if err != nil {
			o.Bus.logger.Debug("geolocation provider failed to start",
				"provider", p.Name(), "error", err)
		} else {
			delivered := false
			for result := range stream {
				o.Bus.Publish(result)
				delivered = true
			}
			if delivered {
				backoff = initialBackoff
			}
		}
		if ctx.Err() != nil {
			return
		}
		o.Bus.logger.Debug("geolocation provider stream ended, restarting",
			"provider", p.Name(), "backoff", backoff.String())
		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// safeLookup guards against panicking providers so one misbehaving
// source cannot take the whole location tracking down.
func (o *Orchestrator) safeLookup(ctx context.Context, p Provider) (stream <-chan Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", p.Name(), r)
		}
	}()
	stream = p.LookupStream(ctx)
	if stream == nil {
		return nil, fmt.Errorf("provider %s returned no stream", p.Name())
	}
	return stream, nil
}
