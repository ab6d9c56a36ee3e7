package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// NewHTTPRequest makes an http call and returns the status code and the body
// of the response. Only GET and POST are supported.
func NewHTTPRequest(
	ctx context.Context, method, url, bodyString string, header map[string]string,
) (int, string, error) {
	var body io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPost:
		body = strings.NewReader(bodyString)
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse response body: %w", err)
	}

	return rs.StatusCode, string(bodyBytes), nil
}
