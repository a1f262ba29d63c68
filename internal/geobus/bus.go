// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package geobus coordinates geolocation results between a set of
// providers and the weather service. Providers stream results of varying
// accuracy; the bus keeps the best unexpired one and notifies
// subscribers when it changes significantly.
package geobus

import (
	"context"
	"sync"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/logger"
)

const (
	accuracyEpsilon = 1e-6
	initialBackoff  = time.Second
	maxBackoff      = 30 * time.Second
)

// Provider is implemented by each geolocation source.
type Provider interface {
	Name() string
	LookupStream(ctx context.Context) <-chan Result
}

// Result represents a geolocation result with associated metadata.
type Result struct {
	Lat, Lon       float64
	AccuracyMeters float64
	Source         string
	At             time.Time
	TTL            time.Duration
}

// Coordinate converts the result into a Coordinate value.
func (r Result) Coordinate() Coordinate {
	return Coordinate{Lat: r.Lat, Lon: r.Lon, Acc: r.AccuracyMeters}
}

// BetterThan reports whether this result should replace prev. A more
// accurate result wins; at equal accuracy the newer one does not replace
// an unexpired previous result.
func (r Result) BetterThan(prev Result) bool {
	if prev.Source == "" {
		return true
	}
	if r.At.Before(prev.At) {
		return false
	}
	return r.AccuracyMeters < prev.AccuracyMeters-accuracyEpsilon
}

// IsExpired checks if the Result has exceeded its time-to-live (TTL).
func (r Result) IsExpired() bool {
	return r.TTL > 0 && time.Since(r.At) > r.TTL
}

// Bus fans geolocation results out to its subscribers.
type Bus struct {
	mu          sync.RWMutex
	logger      *logger.Logger
	best        Result
	haveBest    bool
	subscribers map[chan Result]struct{}
}

// New initializes and returns a new Bus.
func New(log *logger.Logger) *Bus {
	return &Bus{
		logger:      log,
		subscribers: make(map[chan Result]struct{}),
	}
}

// NewOrchestrator returns an Orchestrator publishing to this bus.
func (b *Bus) NewOrchestrator(provider []Provider) *Orchestrator {
	return &Orchestrator{
		Bus:       b,
		Providers: provider,
	}
}

// Subscribe adds a subscriber with the given buffer size and returns the
// result channel plus an unsubscribe function. The current best result is
// delivered immediately if one is known and unexpired.
func (b *Bus) Subscribe(size int) (<-chan Result, func()) {
	resultChan := make(chan Result, size)
	b.mu.Lock()
	b.subscribers[resultChan] = struct{}{}
	if b.haveBest && !b.best.IsExpired() {
		resultChan <- b.best
	}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.subscribers, resultChan)
		b.mu.Unlock()
		close(resultChan)
	}

	return resultChan, unsub
}

// Publish offers a result to the bus. It is broadcast when it beats the
// current best, the best has expired, or the position moved
// significantly.
func (b *Bus) Publish(r Result) {
	if r.AccuracyMeters == 0 || !r.Coordinate().Valid() {
		return
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}

	b.mu.Lock()
	prev, have := b.best, b.haveBest

	switch {
	case !have, prev.IsExpired():
		b.best, b.haveBest = r, true
		b.broadcast(r)
	case r.BetterThan(prev), r.Coordinate().PosHasSignificantChange(prev.Coordinate()):
		b.best = r
		b.broadcast(r)
	case prev.Source == r.Source:
		// Same source, same place: just refresh the TTL clock.
		b.best.At = r.At
	}
	b.mu.Unlock()
}

func (b *Bus) broadcast(r Result) {
	for ch := range b.subscribers {
		select {
		case ch <- r:
		default:
		}
	}
}

// Best returns the current best result, if any.
func (b *Bus) Best() (Result, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.best, b.haveBest && !b.best.IsExpired()
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > maxBackoff {
		return maxBackoff
	}
	return d
}
