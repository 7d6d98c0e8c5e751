package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalai-assistant/internal/store"
)

type noopDeleter struct{}

func (noopDeleter) Delete(string) bool { return true }

func newTestRouter(sessions *store.SessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(EnsureSession(sessions))
	r.GET("/probe", func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	return r
}

func TestEnsureSession_MintsWhenMissing(t *testing.T) {
	sessions := store.NewSessionStore(noopDeleter{}, time.Hour)
	r := newTestRouter(sessions)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	echoed := w.Header().Get(SessionHeader)
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, w.Body.String())
	_, ok := sessions.Get(echoed)
	assert.True(t, ok)
}

func TestEnsureSession_ReusesKnownID(t *testing.T) {
	sessions := store.NewSessionStore(noopDeleter{}, time.Hour)
	r := newTestRouter(sessions)
	id := sessions.Create()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(SessionHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get(SessionHeader))
	assert.Equal(t, 1, sessions.Count())
}

func TestEnsureSession_ReplacesUnknownID(t *testing.T) {
	sessions := store.NewSessionStore(noopDeleter{}, time.Hour)
	r := newTestRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(SessionHeader, "expired-or-forged")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	echoed := w.Header().Get(SessionHeader)
	assert.NotEqual(t, "expired-or-forged", echoed)
	_, ok := sessions.Get(echoed)
	assert.True(t, ok)
}
