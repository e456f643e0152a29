package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/02loveslollipop/noisemap/services/importer/internal/models"
)

// Fetch loads readings from an http(s) URL or a local file path.
func Fetch(ctx context.Context, client *http.Client, src string) ([]models.FeedReading, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetchURL(ctx, client, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func fetchURL(ctx context.Context, client *http.Client, url string) ([]models.FeedReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return decode(resp.Body)
}

func decode(r io.Reader) ([]models.FeedReading, error) {
	var payload []models.FeedReading
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}
