// Package extract fetches raw payloads from the upstream market-data APIs
// and normalizes them into canonical record batches. Each client is a thin
// adapter: it owns URL construction, auth tokens and payload decoding, and
// hands ordered rows to the validator and loader.
package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rasnes/marketdash-etl/config"
)

func newHTTPClient(cfg *config.Config, logger *slog.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryWaitMin = cfg.Extract.Backoff.RetryWaitMin
	client.RetryWaitMax = cfg.Extract.Backoff.RetryWaitMax
	client.RetryMax = cfg.Extract.Backoff.RetryMax
	client.Logger = logger
	return client
}

// fetchJSON performs a GET and decodes the response body into out.
func fetchJSON(client *retryablehttp.Client, url, description string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch `%s`, status: %s, body: %s", description, resp.Status, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode `%s` response: %w", description, err)
	}

	return nil
}
