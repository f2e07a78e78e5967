package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_IsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestMiddleware_ObservesMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/complaints/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.CollectAndCount(RequestDurationSeconds)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/complaints/abc", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.CollectAndCount(RequestDurationSeconds))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ComplaintsSubmittedTotal.WithLabelValues("critical"))
	ComplaintsSubmittedTotal.WithLabelValues("critical").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ComplaintsSubmittedTotal.WithLabelValues("critical")))
}
