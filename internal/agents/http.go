package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raysh454/pharmaflow/internal/webclient"
)

var ErrMalformedPayload = errors.New("malformed payload")

// StatusError is a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.StatusCode)
}

func endpoint(base, path string, params url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func bearer(apiKey string) http.Header {
	if apiKey == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}

func get(ctx context.Context, wc webclient.WebClient, rawURL string, headers http.Header) ([]byte, error) {
	resp, err := wc.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: rawURL, Headers: headers})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func getJSON(ctx context.Context, wc webclient.WebClient, rawURL string, headers http.Header, out any) error {
	body, err := get(ctx, wc, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, rawURL, err)
	}
	return nil
}

// withTimeout applies the unit's own deadline. d <= 0 leaves ctx alone.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
