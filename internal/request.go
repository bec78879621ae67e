package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// requestTimeout bounds every single upstream call. The run's
	// cancellation context handles supersession; this handles upstream
	// servers that accept the connection and never answer.
	requestTimeout = 8 * time.Second
)

var ErrNonOkResponse = errors.New("non-OK response")

// sendRequest sends an HTTP GET request and returns the response body.
// An empty body is a valid outcome here: a plain-text feature-info response
// with no content means "no data", not a failure.
func sendRequest(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("sendRequest: invalid request: %s: %w", url, reqErr)
	}

	resp, respErr := client.Do(req)
	if respErr != nil {
		return nil, fmt.Errorf("sendRequest: failed to send GET request: %s: %w", url, respErr)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sendRequest: %w %s", ErrNonOkResponse, resp.Status)
	}

	body, bodyErr := io.ReadAll(resp.Body)
	if bodyErr != nil {
		return nil, fmt.Errorf("sendRequest: failed to read response body: %w", bodyErr)
	}

	return body, nil
}
