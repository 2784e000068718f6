package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/domain"
	"jobkaart/internal/handler"
	"jobkaart/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := handler.RegisterValidators(); err != nil {
		panic(err)
	}
}

type request struct {
	method string
	path   string
	body   interface{}
	params gin.Params
	tenant uuid.UUID
	role   domain.UserRole
}

// serve runs one handler against an authenticated test context.
func serve(t *testing.T, h gin.HandlerFunc, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader = http.NoBody
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(req.method, req.path, body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = req.params
	if req.tenant != uuid.Nil {
		c.Set(middleware.ContextKeyTenantID, req.tenant)
	}
	role := req.role
	if role == "" {
		role = domain.RoleMember
	}
	c.Set(middleware.ContextKeyRole, string(role))
	c.Set(middleware.ContextKeyEmail, "owner@plumbing.test")

	h(c)
	return w
}

func idParam(id uuid.UUID) gin.Params {
	return gin.Params{{Key: "id", Value: id.String()}}
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *handler.APIError `json:"error"`
	Meta    *handler.PagMeta  `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
