// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package ichnaea

import (
	"context"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/http"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
	"github.com/wmarchant13/RealWeatherApp/internal/testhelper"
)

const (
	testResponse = `{"location":{"lat":40.7185,"lng":-74.0025},"accuracy":2000}`
	testLat      = 40.7185
	testLon      = -74.0025
	testAcc      = 2000.0
)

func jsonClient(body string) *http.Client {
	client := http.New(logger.New(slog.LevelInfo))
	client.Transport = testhelper.MockRoundTripper{Fn: func(req *stdhttp.Request) (*stdhttp.Response, error) {
		return &stdhttp.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(stdhttp.Header),
		}, nil
	}}
	return client
}

func TestNew(t *testing.T) {
	t.Run("new ICHNAEA provider succeeds", func(t *testing.T) {
		testRequiresWiFi(t)
		provider, err := New(http.New(logger.New(slog.LevelInfo)))
		if err != nil {
			t.Fatalf("failed to create ICHNAEA provider: %s", err)
		}
		if provider == nil {
			t.Fatal("expected provider to be non-nil")
		}
	})
	t.Run("ICHNAEA without http client fails", func(t *testing.T) {
		provider, err := New(nil)
		if err == nil {
			t.Fatal("expected provider to fail")
		}
		if provider != nil {
			t.Fatal("expected provider to be nil")
		}
	})
}

func TestProvider_Name(t *testing.T) {
	testRequiresWiFi(t)
	provider, err := New(http.New(logger.New(slog.LevelInfo)))
	if err != nil {
		t.Fatalf("failed to create ICHNAEA provider: %s", err)
	}
	if !strings.EqualFold(provider.Name(), "ichnaea") {
		t.Errorf("expected provider name to be ichnaea, got %s", provider.Name())
	}
}

// This test is very flaky, since it depends on the WiFi hardware
func TestProvider_wifiAccessPoints(t *testing.T) {
	testRequiresWiFi(t)
	provider, err := New(http.New(logger.New(slog.LevelInfo)))
	if err != nil {
		t.Fatalf("failed to create ICHNAEA provider: %s", err)
	}
	list, err := provider.wifiAccessPoints()
	if err != nil {
		t.Fatalf("failed to get WiFi list: %s", err)
	}
	if len(list) == 0 {
		t.Skip("no WiFi access points found, test results are meaningless")
	}
}

func TestProvider_locate(t *testing.T) {
	testRequiresWiFi(t)
	t.Run("locate succeeds", func(t *testing.T) {
		provider, err := New(jsonClient(testResponse))
		if err != nil {
			t.Fatalf("failed to create ICHNAEA provider: %s", err)
		}

		coord, err := provider.locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate coordinates via ICHNAEA: %s", err)
		}
		if coord.Lat != testLat {
			t.Errorf("expected latitude to be %f, got %f", testLat, coord.Lat)
		}
		if coord.Lon != testLon {
			t.Errorf("expected longitude to be %f, got %f", testLon, coord.Lon)
		}
		if coord.Acc != testAcc {
			t.Errorf("expected accuracy to be %f, got %f", testAcc, coord.Acc)
		}
	})
	t.Run("locate fails with broken JSON", func(t *testing.T) {
		provider, err := New(jsonClient("NOT_JSON"))
		if err != nil {
			t.Fatalf("failed to create ICHNAEA provider: %s", err)
		}

		if _, err = provider.locate(t.Context()); err == nil {
			t.Fatal("expected locate to fail")
		}
	})
}

func TestProvider_LookupStream(t *testing.T) {
	testRequiresWiFi(t)
	t.Run("lookup stream succeeds", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			provider, err := New(jsonClient(testResponse))
			if err != nil {
				t.Fatalf("failed to create ICHNAEA provider: %s", err)
			}
			provider.ttl = time.Millisecond * 10
			provider.period = time.Millisecond * 10

			out := provider.LookupStream(ctx)
			if out == nil {
				t.Fatal("expected stream to be non-nil")
			}

			var results []geobus.Result
			for len(results) < 1 {
				select {
				case r := <-out:
					results = append(results, r)
					cancel()
				default:
					// Block until all goroutines are durably blocked, then advance
					// fake time to the next wakeup (e.g. time.After/ Sleep).
					synctest.Wait()
				}
			}

			synctest.Wait()
			result := results[0]
			if result.Lat != testLat {
				t.Errorf("expected latitude to be %f, got %f", testLat, result.Lat)
			}
			if result.Lon != testLon {
				t.Errorf("expected longitude to be %f, got %f", testLon, result.Lon)
			}
			if result.AccuracyMeters != testAcc {
				t.Errorf("expected accuracy to be %f, got %f", testAcc, result.AccuracyMeters)
			}
			if result.Source != provider.Name() {
				t.Errorf("expected source to be %s, got %s", provider.Name(), result.Source)
			}
		})
	})
	t.Run("lookup stream fails during lookup", func(t *testing.T) {
		runCount := 0
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			provider, err := New(http.New(logger.New(slog.LevelInfo)))
			if err != nil {
				t.Fatalf("failed to create ICHNAEA provider: %s", err)
			}
			provider.period = time.Millisecond * 10
			provider.locateFn = func(ctx context.Context) (geobus.Coordinate, error) {
				if runCount == 0 {
					runCount++
					return geobus.Coordinate{}, errors.New("intentionally failing")
				}
				return geobus.Coordinate{Lat: 1.0, Lon: 2.0, Acc: 3.0}, nil
			}

			out := provider.LookupStream(ctx)
			if out == nil {
				t.Fatal("expected stream to be non-nil")
			}

			var result geobus.Result
			select {
			case r := <-out:
				result = r
				cancel()
			case <-ctx.Done():
				t.Fatalf("context done before result: %v", ctx.Err())
			}
			synctest.Wait()

			if result.Lat != 1.0 {
				t.Errorf("expected latitude to be %f, got %f", 1.0, result.Lat)
			}
			if result.Lon != 2.0 {
				t.Errorf("expected longitude to be %f, got %f", 2.0, result.Lon)
			}
			if result.AccuracyMeters != 3.0 {
				t.Errorf("expected accuracy to be %f, got %f", 3.0, result.AccuracyMeters)
			}
		})
	})
}

func TestProvider_monitorWifiAccessPoints(t *testing.T) {
	testRequiresWiFi(t)
	t.Run("monitor WiFi access points succeeds", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			isCancelled := false
			context.AfterFunc(ctx, func() {
				isCancelled = true
			})

			provider, err := New(http.New(logger.New(slog.LevelInfo)))
			if err != nil {
				t.Fatalf("failed to create ICHNAEA provider: %s", err)
			}
			go provider.monitorWifiAccessPoints(ctx)
			synctest.Wait()
			cancel()
			synctest.Wait()
			if !isCancelled {
				t.Fatal("expected monitor to be cancelled")
			}
		})
	})
}

func testRequiresWiFi(t *testing.T) {
	t.Helper()
	wlan, err := wifi.New()
	if err != nil {
		t.Skip("system has no WiFi support, skipping WiFi related tests")
	}

	checkIfaces := make([]*wifi.Interface, 0)
	ifaces, err := wlan.Interfaces()
	if err != nil {
		t.Skip("no WiFi interfaces found, skipping WiFi related tests")
	}
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		checkIfaces = append(checkIfaces, iface)
	}
	if len(checkIfaces) == 0 {
		t.Skip("no WiFi interfaces found, skipping WiFi related tests")
	}
}
