package envdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Series holds one variable's readings: the current value plus historical
// values keyed by lag in months. Any field may be absent upstream.
type Series struct {
	Current *float64            `json:"current"`
	History map[string]*float64 `json:"history"` // "1", "3", "6", "12" -> value
}

// Snapshot is one fetch of the environmental data source for a coordinate
// and date. Variables may be missing per-field.
type Snapshot struct {
	Variables map[string]Series `json:"variables"`
}

// Lag returns the historical value at the given lag in months.
func (s *Snapshot) Lag(variable string, months int) (float64, bool) {
	series, ok := s.Variables[variable]
	if !ok {
		return 0, false
	}
	v, ok := series.History[fmt.Sprintf("%d", months)]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Current returns the real-time value for a variable.
func (s *Snapshot) Current(variable string) (float64, bool) {
	series, ok := s.Variables[variable]
	if !ok || series.Current == nil {
		return 0, false
	}
	return *series.Current, true
}

// Source is the environmental data collaborator boundary.
type Source interface {
	Fetch(ctx context.Context, lat, lon float64, date time.Time) (*Snapshot, error)
	Ping(ctx context.Context) error
}

// HTTPSource talks to the REST environmental data service.
type HTTPSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
}

// NewHTTPSource creates a client with a bounded per-call timeout.
func NewHTTPSource(baseURL, apiKey string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 2,
	}
}

// Fetch retrieves current and historical values for all variables at a
// coordinate. Transient failures are retried with exponential backoff; the
// caller's context bounds the whole operation.
func (s *HTTPSource) Fetch(ctx context.Context, lat, lon float64, date time.Time) (*Snapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/environment?lat=%s&lon=%s&date=%s",
		s.baseURL,
		url.QueryEscape(fmt.Sprintf("%.4f", lat)),
		url.QueryEscape(fmt.Sprintf("%.4f", lon)),
		url.QueryEscape(date.Format("2006-01-02")),
	)

	var snapshot *Snapshot
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if s.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.apiKey)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("environment service returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("environment service returned %d", resp.StatusCode))
		}

		var decoded Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode environment response: %w", err))
		}
		snapshot = &decoded
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("environment fetch failed: %w", err)
	}
	return snapshot, nil
}

// Ping checks the collaborator's health endpoint.
func (s *HTTPSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("environment service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("environment service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
