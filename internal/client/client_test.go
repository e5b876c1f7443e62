package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/asap-static/asap/internal/errors"
)

func writeArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04fake-zip"), 0600))
	return path
}

func newTestClient(baseURL string) *Client {
	return New(Options{BaseURL: baseURL, Timeout: 5 * time.Second, RetryWait: time.Millisecond})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestUploadSendsMultipartForm(t *testing.T) {
	archivePath := writeArchive(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, UploadPath, r.URL.Path)
		assert.Equal(t, "asap/test", r.Header.Get("User-Agent"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "my-app", r.FormValue("tag"))

		file, header, err := r.FormFile("zip")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "archive.zip", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "PK\x03\x04fake-zip", string(data))

		writeJSON(w, http.StatusOK, map[string]string{"message": "Site uploaded!", "site_secret": "s3cr3t"})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/", UserAgent: "asap/test"})
	result, err := c.Upload(context.Background(), archivePath, "my-app")
	require.NoError(t, err)
	assert.Equal(t, "Site uploaded!", result.Message)
	assert.Equal(t, "s3cr3t", result.Secret)
}

func TestUploadSuccessWithoutSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Upload(context.Background(), writeArchive(t), "my-app")
	require.NoError(t, err)
	assert.Equal(t, "updated", result.Message)
	assert.Empty(t, result.Secret)
}

func TestUploadServerErrorCarriesSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index.html missing", "site_secret": "issued-anyway"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Upload(context.Background(), writeArchive(t), "my-app")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kerrors.ErrRemote))
	assert.Equal(t, "index.html missing", err.Error())

	var remoteErr *kerrors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusBadRequest, remoteErr.Status)
	assert.Equal(t, "issued-anyway", remoteErr.Secret)
}

func TestUploadServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "disk full"})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, RetryMax: 3, RetryWait: time.Millisecond})
	_, err := c.Upload(context.Background(), writeArchive(t), "my-app")
	require.Error(t, err)
	assert.Equal(t, "disk full", err.Error())
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Upload(context.Background(), writeArchive(t), "my-app")
	var remoteErr *kerrors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "request failed with status code 502", remoteErr.Message)
	assert.Empty(t, remoteErr.Secret)
}

func TestUploadTransportError(t *testing.T) {
	// Grab a free port and close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := New(Options{BaseURL: "http://" + addr, RetryMax: 1, RetryWait: time.Millisecond})
	_, err = c.Upload(context.Background(), writeArchive(t), "my-app")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kerrors.ErrTransport))
	assert.False(t, errors.Is(err, kerrors.ErrRemote))

	var transportErr *kerrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "upload", transportErr.Op)
	assert.NotNil(t, transportErr.Unwrap())
}

func TestUploadMissingArchive(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	_, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.zip"), "my-app")
	require.Error(t, err)
	assert.False(t, errors.Is(err, kerrors.ErrTransport))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDestroySendsAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DestroyPath, r.URL.Path)
		assert.Equal(t, "s3cr3t", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"tag": "my-app"}, body)

		writeJSON(w, http.StatusOK, map[string]string{"message": "Site destroyed"})
	}))
	defer srv.Close()

	message, err := newTestClient(srv.URL).Destroy(context.Background(), "my-app", "s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, "Site destroyed", message)
}

func TestDestroyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid secret"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Destroy(context.Background(), "my-app", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kerrors.ErrRemote))
	assert.Equal(t, "invalid secret", err.Error())
}

func TestDestroyPlainTextSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "gone\n")
	}))
	defer srv.Close()

	message, err := newTestClient(srv.URL).Destroy(context.Background(), "my-app", "s")
	require.NoError(t, err)
	assert.Equal(t, "gone", message)
}

func TestDestroyCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "too late"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).Destroy(ctx, "my-app", "s")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kerrors.ErrTransport))
	assert.True(t, errors.Is(err, context.Canceled))
}
