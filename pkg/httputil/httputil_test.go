package httputil_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/incubator-tracker/pkg/httputil"
)

func TestNewHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "test", r.Header.Get("X-Test"))
			body, _ := io.ReadAll(r.Body)
			w.WriteHeader(http.StatusAccepted)
			//nolint
			w.Write([]byte(r.Method + ":" + string(body)))
		},
	))
	defer srv.Close()

	header := map[string]string{"X-Test": "test"}

	status, body, err := httputil.NewHTTPRequest(
		context.Background(), http.MethodGet, srv.URL, "", header,
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, status)
	require.Equal(t, "GET:", body)

	status, body, err = httputil.NewHTTPRequest(
		context.Background(), http.MethodPost, srv.URL, "hello", header,
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, status)
	require.Equal(t, "POST:hello", body)

	_, _, err = httputil.NewHTTPRequest(
		context.Background(), http.MethodDelete, srv.URL, "", header,
	)
	require.Error(t, err)
}

func TestNewHTTPRequestCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := httputil.NewHTTPRequest(ctx, http.MethodGet, srv.URL, "", nil)
	require.Error(t, err)
}
