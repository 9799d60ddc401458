package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *HTTPClient {
	client := NewHTTPClient(url)
	client.Delay = time.Millisecond
	return client
}

func TestHTTPClient_Request_Success(t *testing.T) {
	// Mock server setup
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-endpoint", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "abc", r.Header.Get("X-Request-Id"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"message": "success"})
	}))
	defer mockServer.Close()

	// Test setup
	client := newTestClient(mockServer.URL)
	var response map[string]string

	// Act
	err := client.Request(context.Background(), "GET", "/test-endpoint", map[string]string{"X-Request-Id": "abc"}, nil, &response)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "success", response["message"])
}

func TestHTTPClient_Request_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "value", body["key"])

		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "bad request"}`))
	}))
	defer mockServer.Close()

	client := newTestClient(mockServer.URL)
	var response map[string]string

	err := client.Request(context.Background(), "POST", "/test-endpoint", nil, map[string]string{"key": "value"}, &response)

	require.Error(t, err)
	assert.Equal(t, "unexpected status code: 400 Bad Request", err.Error())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.JSONEq(t, `{"error": "bad request"}`, string(se.Body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPClient_Request_RetriesServerErrors(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status": "pong"}`))
	}))
	defer mockServer.Close()

	client := newTestClient(mockServer.URL)
	var response map[string]string

	err := client.Request(context.Background(), "GET", "/ping", nil, nil, &response)

	require.NoError(t, err)
	assert.Equal(t, "pong", response["status"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClient_Request_GivesUp(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mockServer.Close()

	client := newTestClient(mockServer.URL)

	err := client.Request(context.Background(), "GET", "/ping", nil, nil, nil)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}
