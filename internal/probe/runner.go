package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"api-graph/internal/logger"
	"api-graph/internal/types"
)

// Result represents the outcome of a single endpoint call
type Result struct {
	Endpoint string
	Method   string
	Status   int
	Duration time.Duration
	Saved    string
	Err      error
}

// OK reports whether the call got a 2xx response
func (r Result) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Config holds probe execution configuration
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxWorkers int
	Retry      RetryConfig
}

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Runner calls the safe subset of live endpoints and archives their responses
type Runner struct {
	config  Config
	client  *http.Client
	archive *Archive
	token   string
	log     *logger.Logger
}

// NewRunner creates a new probe runner. The token may be empty for hosts that
// do not require authentication; log may be nil.
func NewRunner(config Config, archive *Archive, token string, log *logger.Logger) *Runner {
	// Every target gets at least one attempt, or the retry loop would yield
	// an empty result.
	if config.Retry.Attempts < 1 {
		config.Retry.Attempts = 1
	}
	return &Runner{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		archive: archive,
		token:   token,
		log:     log,
	}
}

// CallTargets selects the endpoints that are safe to call automatically:
// read-only methods with no path parameters and no required query parameters.
func CallTargets(records []types.EndpointRecord) []types.EndpointRecord {
	var targets []types.EndpointRecord
	for _, rec := range records {
		switch rec.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			continue
		}
		if len(rec.PathParams) > 0 {
			continue
		}
		required := false
		for _, p := range rec.Parameters {
			if p.Required {
				required = true
				break
			}
		}
		if required {
			continue
		}
		targets = append(targets, rec)
	}
	return targets
}

// Run calls every target through a bounded worker pool and returns one result
// per target. Failures are recorded, never fatal.
func (r *Runner) Run(ctx context.Context, targets []types.EndpointRecord) []Result {
	var results []Result
	var mu sync.Mutex
	var wg sync.WaitGroup

	// Limit concurrent calls
	sem := make(chan struct{}, r.config.MaxWorkers)

	for _, target := range targets {
		wg.Add(1)
		go func(target types.EndpointRecord) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			var result Result
			for attempt := 0; attempt < r.config.Retry.Attempts; attempt++ {
				result = r.call(ctx, target)
				if result.Err == nil {
					break
				}
				time.Sleep(r.config.Retry.Delay)
			}

			if r.log != nil {
				r.log.LogCall(target.Method, target.Path, result.Status, result.Err)
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(target)
	}

	wg.Wait()
	return results
}

// call executes a single request and archives a successful response
func (r *Runner) call(ctx context.Context, target types.EndpointRecord) Result {
	url := strings.TrimRight(r.config.BaseURL, "/") + target.Path

	req, err := http.NewRequestWithContext(ctx, target.Method, url, nil)
	if err != nil {
		return Result{
			Endpoint: target.Path,
			Method:   target.Method,
			Err:      fmt.Errorf("failed to create request: %w", err),
		}
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	duration := time.Since(start)

	result := Result{
		Endpoint: target.Path,
		Method:   target.Method,
		Duration: duration,
	}
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = fmt.Errorf("failed to read response body: %w", err)
		return result
	}

	result.Status = resp.StatusCode
	if result.OK() && r.archive != nil {
		saved, err := r.archive.Save(target.Method, target.Path, resp, body)
		if err != nil {
			result.Err = fmt.Errorf("failed to archive response: %w", err)
			return result
		}
		result.Saved = saved
	}
	return result
}
