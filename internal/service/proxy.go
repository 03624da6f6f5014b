package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"parley.app/server/common/logger"
	"parley.app/server/core/config"
)

// ProxyService forwards weather and news lookups to their upstream
// providers and returns the payload untouched. Upstream errors are logged
// with detail and surfaced to callers as ErrUpstream only.
type ProxyService interface {
	Weather(ctx context.Context, lat, lon string) (json.RawMessage, error)
	News(ctx context.Context, category, country string) (json.RawMessage, error)
}

type proxyService struct {
	httpClient *http.Client
	weather    config.WeatherConfig
	news       config.NewsConfig
}

func NewProxyService(httpClient *http.Client, weather config.WeatherConfig, news config.NewsConfig) ProxyService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &proxyService{
		httpClient: httpClient,
		weather:    weather,
		news:       news,
	}
}

func (s *proxyService) Weather(ctx context.Context, lat, lon string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("lat", lat)
	query.Set("lon", lon)
	query.Set("exclude", "minutely,hourly,daily,alerts")
	query.Set("units", "metric")
	query.Set("appid", s.weather.APIKey)

	return s.passThrough(ctx, "weather", s.weather.BaseURL+"?"+query.Encode())
}

func (s *proxyService) News(ctx context.Context, category, country string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("category", category)
	query.Set("country", country)
	query.Set("apiKey", s.news.APIKey)

	return s.passThrough(ctx, "news", s.news.BaseURL+"?"+query.Encode())
}

func (s *proxyService) passThrough(ctx context.Context, upstream, requestURL string) (json.RawMessage, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "parley.service.proxy"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", upstream, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "upstream request failed", "upstream", upstream, "error", err)
		return nil, ErrUpstream
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.ErrorContext(ctx, "reading upstream response failed", "upstream", upstream, "error", err)
		return nil, ErrUpstream
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.ErrorContext(ctx, "upstream returned error status",
			"upstream", upstream,
			"status", resp.StatusCode,
			"body", logger.Truncate(string(body), 200),
		)
		return nil, ErrUpstream
	}

	return json.RawMessage(body), nil
}
