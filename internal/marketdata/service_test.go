package marketdata_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/vix-alert-go/internal/config"
	"github.com/irfndi/vix-alert-go/internal/marketdata"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func serviceConfig(baseURL string) *config.MarketDataConfig {
	cfg := chartConfig(baseURL)
	// Keep tests fast; backoff arithmetic is covered in the retry package.
	cfg.RetryDelaySeconds = 0
	return cfg
}

func TestService_FetchSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(
			[]int64{sessionUnix(19), sessionUnix(20), sessionUnix(21)},
			[]string{"20.0", "22.0", "18.0"},
		))
	}))
	defer server.Close()

	service := marketdata.NewService(serviceConfig(server.URL), discardLogger())
	series, err := service.FetchSeries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, []float64{20.0, 22.0, 18.0}, series.Values())
}

func TestService_FetchSeries_RecoversAfterFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, chartBody([]int64{sessionUnix(21)}, []string{"18.0"}))
	}))
	defer server.Close()

	service := marketdata.NewService(serviceConfig(server.URL), discardLogger())
	series, err := service.FetchSeries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())
	assert.Equal(t, int32(3), hits.Load())
}

func TestService_FetchSeries_ExhaustsAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := marketdata.NewService(serviceConfig(server.URL), discardLogger())
	_, err := service.FetchSeries(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), hits.Load())
}

func TestService_FetchSeries_MalformedPayloadRetries(t *testing.T) {
	// A well-formed HTTP response with an unusable payload still burns an
	// attempt; the next attempt can succeed.
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
			return
		}
		fmt.Fprint(w, chartBody([]int64{sessionUnix(21)}, []string{"18.0"}))
	}))
	defer server.Close()

	service := marketdata.NewService(serviceConfig(server.URL), discardLogger())
	series, err := service.FetchSeries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())
	assert.Equal(t, int32(2), hits.Load())
}

func TestService_FetchSeries_InvalidStartDate(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	cfg := serviceConfig(server.URL)
	cfg.StartDate = "not-a-date"

	service := marketdata.NewService(cfg, discardLogger())
	_, err := service.FetchSeries(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date")
	assert.Equal(t, int32(0), hits.Load(), "no request should be made with a bad start date")
}

func TestService_FetchSeries_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, chartBody([]int64{sessionUnix(21)}, []string{"18.0"}))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := marketdata.NewService(serviceConfig(server.URL), discardLogger())
	_, err := service.FetchSeries(ctx)

	assert.Error(t, err)
}
