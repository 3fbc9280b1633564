package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"api-graph/internal/config"
)

// Fetcher downloads the published spec documents and stores them verbatim
type Fetcher struct {
	dataDir string
	client  *http.Client
}

// NewFetcher creates a new instance of Fetcher
func NewFetcher(dataDir string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		dataDir: dataDir,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchAll downloads every source in order, stopping at the first failure
func (f *Fetcher) FetchAll(ctx context.Context, sources []config.SpecSource) error {
	for _, src := range sources {
		if err := f.Fetch(ctx, src); err != nil {
			return fmt.Errorf("%s: %w", src.Name, err)
		}
	}
	return nil
}

// Fetch downloads one spec document and writes it to its configured local
// file, replacing any prior copy. The body is persisted byte for byte.
func (f *Fetcher) Fetch(ctx context.Context, src config.SpecSource) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	outPath := filepath.Join(f.dataDir, src.File)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}
	if err := os.WriteFile(outPath, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", outPath, err)
	}

	sum := sha256.Sum256(body)
	fmt.Printf("wrote %s (%d bytes, sha256=%x)\n", outPath, len(body), sum[:6])
	return nil
}
