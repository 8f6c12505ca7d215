package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 8 << 20

// getJSON issues a GET and decodes a JSON body into v. Network failures
// and non-2xx statuses become TransportErrors; undecodable bodies become
// ParseErrors.
func getJSON(ctx context.Context, client *http.Client, provider, operation, url string, header http.Header, v any) (err error) {
	start := time.Now()
	defer func() {
		logging.ProviderFetch(ctx, provider, operation, time.Since(start), err, "url", url)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return cerrors.NewTransport(operation, provider, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return cerrors.NewTransport(operation, provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return cerrors.NewTransport(operation, provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return cerrors.NewTransport(operation, provider, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if raw, ok := v.(*[]byte); ok {
		*raw = body
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &cerrors.ParseError{Format: "JSON", Source: provider, Message: err.Error(), Err: err}
	}
	return nil
}
