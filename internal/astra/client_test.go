package astra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

func stubUpstream(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.BaseURL = srv.URL
	opts.HTTPClient = srv.Client()
	cl, err := New(opts, nil)
	require.NoError(t, err)
	return cl
}

func TestNew_DerivesAstraHost(t *testing.T) {
	cl, err := New(Options{DatabaseID: "abc", Region: "us-east1", Keyspace: "ks"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://abc-us-east1.apps.astra.datastax.com", cl.BaseURL())
	assert.Equal(t, "ks", cl.Keyspace())
}

func TestNew_UnsetValuesStillBuild(t *testing.T) {
	// presence is not checked; the request fails later instead
	cl, err := New(Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://-.apps.astra.datastax.com", cl.BaseURL())
}

func TestNew_BadBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url"}, nil)
	require.Error(t, err)

	_, err = New(Options{BaseURL: "http://[::1"}, nil)
	require.Error(t, err)
}

func TestNew_BaseURLTrailingSlash(t *testing.T) {
	cl, err := New(Options{BaseURL: "http://stargate:8082/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://stargate:8082", cl.BaseURL())
}

func TestGet_SendsTokenAndPath(t *testing.T) {
	var gotPath, gotToken, gotMethod string
	srv := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotToken, gotMethod = r.URL.Path, r.Header.Get(TokenHeader), r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows":[]}`))
	})
	cl := newTestClient(t, srv, Options{Token: "AstraCS:tok"})

	resp, err := cl.Get(context.Background(), "/api/rest/v1/keyspaces/ks/tables/")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/api/rest/v1/keyspaces/ks/tables/", gotPath)
	assert.Equal(t, "AstraCS:tok", gotToken)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"rows":[]}`, string(resp.Data))
}

func TestGet_BodyIsVerbatim(t *testing.T) {
	body := `{"count":1,  "rows":[{"name":"Buy milk"}]}`
	srv := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
	cl := newTestClient(t, srv, Options{})

	resp, err := cl.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, body, string(resp.Data))
}

func TestGet_StatusError(t *testing.T) {
	srv := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"description":"bad token"}`, http.StatusUnauthorized)
	})
	cl := newTestClient(t, srv, Options{})

	_, err := cl.Get(context.Background(), "/x")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, `401 Unauthorized: {"description":"bad token"}`, err.Error())
}

func TestGet_NotJSON(t *testing.T) {
	srv := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	cl := newTestClient(t, srv, Options{})

	_, err := cl.Get(context.Background(), "/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not JSON")
}

func TestGet_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	cl := newTestClient(t, srv, Options{Timeout: 20 * time.Millisecond})

	_, err := cl.Get(context.Background(), "/slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGet_CancelledContext(t *testing.T) {
	srv := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	cl := newTestClient(t, srv, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cl.Get(ctx, "/x")
	require.ErrorIs(t, err, context.Canceled)
}
