// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
	"github.com/wmarchant13/RealWeatherApp/internal/geocode"
	"github.com/wmarchant13/RealWeatherApp/internal/http"
	"github.com/wmarchant13/RealWeatherApp/internal/logger"
	"github.com/wmarchant13/RealWeatherApp/internal/testhelper"
)

const (
	cityExpected = "Quartier 205, 67, Friedrichstrasse, Friedrichstadt, Mitte, Berlin, 10117, Germany"
	cityJSON     = `{"lat":"52.5129","lon":"13.3910","name":"Quartier 205",` +
		`"display_name":"Quartier 205, 67, Friedrichstrasse, Friedrichstadt, Mitte, Berlin, 10117, Germany",` +
		`"address":{"house_number":"67","road":"Friedrichstrasse","suburb":"Friedrichstadt",` +
		`"city_district":"Mitte","city":"Berlin","state":"Berlin","postcode":"10117","country":"Germany"}}`
	cityJSONBrokenLat = `{"lat":"NOT_A_NUMBER","lon":"13.3910","display_name":"Berlin","address":{}}`
	cityJSONBrokenLon = `{"lat":"52.5129","lon":"NOT_A_NUMBER","display_name":"Berlin","address":{}}`

	townExpected = "Otley"
	townJSON     = `{"lat":"53.90712","lon":"-1.69404","display_name":"Otley, West Yorkshire, England, United Kingdom",` +
		`"address":{"town":"Otley","state":"England","country":"United Kingdom"}}`

	villageExpected = "Marshfield"
	villageJSON     = `{"lat":"51.46292","lon":"-2.31850","display_name":"Marshfield, South Gloucestershire, England, United Kingdom",` +
		`"address":{"village":"Marshfield","state":"England","country":"United Kingdom"}}`

	searchJSON = `[{"lat":"52.5129","lon":"13.3910","display_name":"Berlin, Germany"}]`

	testHitTTL  = 1 * time.Second
	testMissTTL = 1 * time.Second
)

var (
	cityCoords    = geobus.Coordinate{Lat: 52.5129, Lon: 13.3910}
	townCoords    = geobus.Coordinate{Lat: 53.90712, Lon: -1.69404}
	villageCoords = geobus.Coordinate{Lat: 51.46292, Lon: -2.31850}
)

func TestNew(t *testing.T) {
	t.Run("creating a new provider succeeds", func(t *testing.T) {
		coder := testCoder(t)
		if coder == nil {
			t.Fatal("expected a non-nil geocoder")
		}
	})
	t.Run("provider name is correct", func(t *testing.T) {
		coder := testCoder(t)
		if coder.Name() != "osm-nominatim" {
			t.Errorf("expected provider name to be osm-nominatim, got %q", coder.Name())
		}
	})
}

func TestNominatim_Reverse(t *testing.T) {
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		coder := testCoderWithResponse(t, cityJSON)
		addr, err := coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if !strings.EqualFold(addr.DisplayName, cityExpected) {
			t.Errorf("expected address to be %q, got %q", cityExpected, addr.DisplayName)
		}
	})
	t.Run("reverse cached geocoding succeeds", func(t *testing.T) {
		coder := geocode.NewCachedGeocoder(testCoderWithResponse(t, cityJSON), testHitTTL, testMissTTL)
		addr, err := coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		addr, err = coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.CacheHit {
			t.Error("expected cache hit")
		}
	})
	t.Run("reverse geocoding with town set should return the correct city", func(t *testing.T) {
		coder := testCoderWithResponse(t, townJSON)
		addr, err := coder.Reverse(t.Context(), townCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if !strings.EqualFold(addr.City, townExpected) {
			t.Errorf("expected city to be %q, got %q", townExpected, addr.City)
		}
	})
	t.Run("reverse geocoding with village set should return the correct city", func(t *testing.T) {
		coder := testCoderWithResponse(t, villageJSON)
		addr, err := coder.Reverse(t.Context(), villageCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if !strings.EqualFold(addr.City, villageExpected) {
			t.Errorf("expected city to be %q, got %q", villageExpected, addr.City)
		}
	})
	t.Run("reverse geocoding fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		if _, err := coder.Reverse(t.Context(), cityCoords); err == nil {
			t.Fatal("expected API request to fail")
		}
	})
	t.Run("reverse geocoding fails on NaN latitude response", func(t *testing.T) {
		coder := testCoderWithResponse(t, cityJSONBrokenLat)
		_, err := coder.Reverse(t.Context(), cityCoords)
		if err == nil {
			t.Fatal("expected API request to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse latitude") {
			t.Errorf("expected error to contain 'failed to parse latitude', got %s", err)
		}
	})
	t.Run("reverse geocoding fails on NaN longitude response", func(t *testing.T) {
		coder := testCoderWithResponse(t, cityJSONBrokenLon)
		_, err := coder.Reverse(t.Context(), cityCoords)
		if err == nil {
			t.Fatal("expected API request to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse longitude") {
			t.Errorf("expected error to contain 'failed to parse longitude', got %s", err)
		}
	})
}

func TestNominatim_Search(t *testing.T) {
	t.Run("search succeeds", func(t *testing.T) {
		coder := testCoderWithResponse(t, searchJSON)
		coords, err := coder.Search(t.Context(), "Berlin")
		if err != nil {
			t.Fatal(err)
		}
		if coords.Lat != cityCoords.Lat {
			t.Errorf("expected latitude to be %f, got %f", cityCoords.Lat, coords.Lat)
		}
		if coords.Lon != cityCoords.Lon {
			t.Errorf("expected longitude to be %f, got %f", cityCoords.Lon, coords.Lon)
		}
		if coords.Acc != geobus.AccuracyCity {
			t.Errorf("expected accuracy to be %f, got %f", geobus.AccuracyCity, coords.Acc)
		}
	})
	t.Run("search without matches fails", func(t *testing.T) {
		coder := testCoderWithResponse(t, "[]")
		if _, err := coder.Search(t.Context(), "Nowhereville"); err == nil {
			t.Fatal("expected search to fail")
		}
	})
	t.Run("search fails on broken coordinates", func(t *testing.T) {
		coder := testCoderWithResponse(t, `[{"lat":"NOT_A_NUMBER","lon":"13.3910"}]`)
		if _, err := coder.Search(t.Context(), "Berlin"); err == nil {
			t.Fatal("expected search to fail")
		}
	})
}

func TestNominatim_Reverse_integration(t *testing.T) {
	testhelper.PerformIntegrationTests(t)
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		coder := testCoder(t)
		addr, err := coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
	})
}

func testCoder(_ *testing.T) geocode.Geocoder {
	testHTTPClient := http.New(logger.New(slog.LevelDebug))
	return New(testHTTPClient, language.English)
}

func testCoderWithRoundtripFunc(_ *testing.T, fn func(req *stdhttp.Request) (*stdhttp.Response, error)) geocode.Geocoder {
	testHTTPClient := http.New(logger.New(slog.LevelDebug))
	testHTTPClient.Transport = testhelper.MockRoundTripper{Fn: fn}
	return New(testHTTPClient, language.English)
}

func testCoderWithResponse(t *testing.T, body string) geocode.Geocoder {
	t.Helper()
	return testCoderWithRoundtripFunc(t, func(req *stdhttp.Request) (*stdhttp.Response, error) {
		return &stdhttp.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(stdhttp.Header),
		}, nil
	})
}
