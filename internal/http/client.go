// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package http wraps the stdlib HTTP client with JSON decoding, timeouts
// and a shared User-Agent for all API calls.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"runtime"
	"time"

	"github.com/wmarchant13/RealWeatherApp/internal/logger"
)

// DefaultTimeout is the default timeout value for the Client.
const DefaultTimeout = time.Second * 10

var (
	// version is set at build time.
	version = "dev"
	// UserAgent is sent with every API request.
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) realweather/%s (+https://github.com/wmarchant13/RealWeatherApp/)",
		runtime.GOOS, runtime.GOARCH, version)

	ErrNonPointerTarget = errors.New("target must be a non-nil pointer")
)

// Client is a type wrapper for the Go stdlib http.Client.
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client.
func New(log *logger.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}
	return &Client{
		Client: &http.Client{Timeout: DefaultTimeout, Transport: transport},
		logger: log,
	}
}

// Get performs a HTTP GET request for the given URL and JSON-unmarshals
// the response into target.
func (c *Client) Get(ctx context.Context, endpoint string, target any, query url.Values,
	headers map[string]string,
) (int, error) {
	return c.GetWithTimeout(ctx, endpoint, target, query, headers, DefaultTimeout)
}

// GetWithTimeout performs a HTTP GET request for the given URL and timeout
// and JSON-unmarshals the response into target.
func (c *Client) GetWithTimeout(ctx context.Context, endpoint string, target any, query url.Values,
	headers map[string]string, timeout time.Duration,
) (int, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}
	return c.request(ctx, http.MethodGet, reqURL.String(), target, nil, headers, timeout)
}

// Post performs a HTTP POST request for the given URL and JSON-unmarshals
// the response into target.
func (c *Client) Post(ctx context.Context, endpoint string, target any, body io.Reader,
	headers map[string]string,
) (int, error) {
	return c.request(ctx, http.MethodPost, endpoint, target, body, headers, DefaultTimeout)
}

// request executes a HTTP request with the given method and timeout and
// decodes the JSON response body into target.
func (c *Client) request(ctx context.Context, method, endpoint string, target any, body io.Reader,
	headers map[string]string, timeout time.Duration,
) (int, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return 0, ErrNonPointerTarget
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		request.Header.Set(k, v)
	}

	response, err := c.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		return 0, errors.New("nil response received")
	}
	defer func(b io.ReadCloser) {
		if err := b.Close(); err != nil {
			c.logger.Error("failed to close HTTP response body", logger.Err(err))
		}
	}(response.Body)

	if err = json.NewDecoder(response.Body).Decode(target); err != nil {
		return response.StatusCode, fmt.Errorf("failed to decode JSON: %w", err)
	}

	return response.StatusCode, nil
}
