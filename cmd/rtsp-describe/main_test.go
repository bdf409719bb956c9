package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsp-describe/test"
)

func startServer(t *testing.T) *test.MockRTSPServer {
	t.Helper()

	server, err := test.NewMockRTSPServer()
	require.NoError(t, err)
	server.Start()
	t.Cleanup(server.Stop)

	return server
}

func TestRun_Success(t *testing.T) {
	server := startServer(t)
	server.SetResponses(
		"RTSP/1.0 401 Unauthorized\r\nCSeq: 1\r\nWWW-Authenticate: Digest realm=\"testrealm\", nonce=\"abc123\"\r\n\r\n",
		"RTSP/1.0 200 OK\r\n\r\n",
	)

	metricsFile := filepath.Join(t.TempDir(), "describe.prom")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-url", server.URL("/"),
		"-user", "admin",
		"-password", "123456",
		"-metrics-file", metricsFile,
	}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "RTSP/1.0 200 OK\r\n\r\n", stdout.String())
	assert.Contains(t, stderr.String(), `server challenge: Digest realm="testrealm", nonce="abc123"`)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `rtsp_describe_exchanges_total{result="success"} 1`)
}

func TestRun_CredentialsInURL(t *testing.T) {
	server := startServer(t)
	server.SetRequireAuth("viewer", "pw")

	url := fmt.Sprintf("rtsp://viewer:pw@127.0.0.1:%d/cam", server.Port())

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", url}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "RTSP/1.0 200 OK")
	assert.Contains(t, server.GetLastRequest(), `username="viewer"`)
}

func TestRun_ExchangeFailure(t *testing.T) {
	server := startServer(t)
	server.SetResponses("RTSP/1.0 200 OK\r\nCSeq: 1\r\n\r\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-url", server.URL("/"), "-user", "admin"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "server did not request authentication")
}

func TestRun_ConfigurationError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "URL is required")
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-h"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "-metrics-file")
}
