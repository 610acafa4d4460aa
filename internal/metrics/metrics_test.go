package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestLicenceTypeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "PPL", want: "PPL"},
		{in: "ATPL", want: "ATPL"},
		{in: "ELP", want: "ELP"},
		{in: "ZZZ-1", want: "other"},
		{in: "ppl", want: "other"},
		{in: "", want: "other"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LicenceTypeLabel(tt.in))
		})
	}
}

func TestApplicationsCreated_SeriesStayBounded(t *testing.T) {
	ApplicationsCreated.Reset()
	defer ApplicationsCreated.Reset()

	for _, lt := range []string{"PPL", "X1", "X2", "X3", "X4", "X5", "PPL"} {
		ApplicationsCreated.WithLabelValues(LicenceTypeLabel(lt), "submitted").Inc()
	}

	ch := make(chan prometheus.Metric, 16)
	ApplicationsCreated.Collect(ch)
	close(ch)
	assert.Len(t, ch, 2)
}

func TestGinMiddleware_UnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
