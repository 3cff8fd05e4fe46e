package serve

import (
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/publisher"
	"github.com/ValentinKolb/ndzmq/stream/transport/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestMetricsServer tests the /metrics and /report handlers
func TestMetricsServer(t *testing.T) {
	config := common.DefaultPublisherConfig()
	config.Name = "serve-test"
	config.Descriptor = "memory://serve-test PUB"

	p, err := publisher.New(config, memory.NewMemorySocket(4))
	require.NoError(t, err)
	defer p.Close()

	f := ndarray.NewFrame(ndarray.UInt8, ndarray.Dims(4), make([]byte, 4), nil)
	f.UniqueID = 1
	p.Process(f)

	srv := newMetricsServer("", p)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ndzmq_array_counter{publisher="serve-test"} 1`)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Contains(t, rec.Body.String(), "ZMQ publisher serve-test binds at")
}
