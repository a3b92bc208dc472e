package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-service/config"
	"github.com/oksasatya/go-user-service/internal/container"
	"github.com/oksasatya/go-user-service/internal/infrastructure/messaging"
	"github.com/oksasatya/go-user-service/internal/infrastructure/sqlite"
)

func newEngine(t *testing.T, debug bool) (*gin.Engine, *messaging.AsyncPublisher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := messaging.NewAsyncPublisher(messaging.LogSender{Logger: logger}, logger, 8, 1, time.Second)
	t.Cleanup(func() { _ = pub.Close(context.Background()) })

	container.SetConfig(&config.Config{RateLimitPerMinute: 300, DebugMetricsEnabled: debug})
	container.SetLogger(logger)
	container.SetRedis(nil)
	container.SetUserRepository(sqlite.NewUserRepository(db))
	container.SetPublisher(pub)

	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg)
	reg.RegisterAll()
	reg.RegisterAll()
	return engine, pub
}

func TestInitModules_Routes(t *testing.T) {
	engine, pub := newEngine(t, true)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	body := bytes.NewBufferString(`{"name":"Alice","email":"alice@example.com","age":25}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/add", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/all", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, pub.Close(context.Background()))
	assert.Equal(t, int64(1), pub.Stats().Published)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var vars map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vars))
	assert.Contains(t, vars, "user_events")
}

func TestInitModules_DebugDisabled(t *testing.T) {
	engine, _ := newEngine(t, false)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
