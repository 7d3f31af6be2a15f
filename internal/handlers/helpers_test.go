package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/middleware"
	"github.com/ukydev/mobile-garage/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	adminCaller    = models.AdminPrincipal{User: 1, AdminID: 1}
	customerCaller = models.CustomerPrincipal{User: 2, CustomerID: 7}
	mechanicCaller = models.MechanicPrincipal{User: 3, MechanicID: 4}
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestAuthService() *auth.Service {
	return auth.NewService("test-secret", time.Hour, nil)
}

// as stands in for Authenticate by placing p in the context.
func as(p models.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			c.Set(middleware.PrincipalKey, p)
		}
		c.Next()
	}
}

// serve mounts h on route and performs one request against it. body may be
// nil, a raw string or a value to encode as JSON.
func serve(t *testing.T, h gin.HandlerFunc, p models.Principal, method, route, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Handle(method, route, as(p), h)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, w)["error"].(string)
	return msg
}

func errorFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	raw, _ := decode(t, w)["fields"].([]interface{})
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		fields = append(fields, f.(string))
	}
	return fields
}

func int64Ptr(v int64) *int64 { return &v }
