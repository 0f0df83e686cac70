package httputils

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"
)

func TestNewRetryableHttpClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewRetryableHttpClient(5*time.Second, ratelimit.NewUnlimited())

	res, err := client.Get(server.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewRetryableHttpClient_NilLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRetryableHttpClient(5*time.Second, nil)

	res, err := client.Get(server.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLeveledLogger_Fields(t *testing.T) {
	base, hook := test.NewNullLogger()
	l := &leveledLogger{log: logrus.NewEntry(base)}

	l.Warn("retrying", "url", "http://example", 3, "ignored", "dangling")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "retrying", entry.Message)
	assert.Equal(t, "http://example", entry.Data["url"])
	assert.Len(t, entry.Data, 1)
}
