package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "204")))
}

func TestRecordOrderOperation(t *testing.T) {
	before := testutil.ToFloat64(orderOperations.WithLabelValues("confirm", "error"))
	RecordOrderOperation("confirm", false)
	assert.Equal(t, before+1, testutil.ToFloat64(orderOperations.WithLabelValues("confirm", "error")))
}

func TestRecordRemoteCall(t *testing.T) {
	RecordRemoteCall("ledger", "permission")
	assert.Equal(t, float64(1), testutil.ToFloat64(remoteCalls.WithLabelValues("ledger", "permission")))
}
