package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minitodo/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() config.Config {
	return config.Config{
		Notify:   config.NotifyConfig{Driver: "log", Workers: 1, QueueSize: 8},
		IDScheme: "ksuid",
	}
}

func TestNew_ServesRoutes(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["status"])

	signup := `{"title":"Mrs","firstname":"Grace","lastname":"Hopper","email":"g@x.com","password":"Secret1"}`
	resp2, err := http.Post(ts.URL+"/signup", "application/json", strings.NewReader(signup))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(ts.URL + "/resend-otp/nobody@x.com")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.IDScheme = "serial"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Notify.Driver = "sendgrid"
	_, err = New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "sendgrid api key is required")
}

func TestNew_DefaultPort(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", srv.httpServer.Addr)
	require.NoError(t, srv.Shutdown(context.Background()))
}
