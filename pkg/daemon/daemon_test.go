package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/calcium"
	"github.com/charlie0129/corrcal/pkg/config"
	"github.com/charlie0129/corrcal/pkg/events"
)

func newTestRouter(t *testing.T) (*gin.Engine, *config.File) {
	t.Helper()
	c := config.NewFileFromConfig(nil, filepath.Join(t.TempDir(), "corrcal.json"))
	c.SetRateLimit(0)
	setup(c)
	return setupRoutes(), c
}

func newTestRouterAt(t *testing.T, configPath string) *gin.Engine {
	t.Helper()
	c, err := config.NewFile(configPath)
	require.NoError(t, err)
	c.SetRateLimit(0)
	setup(c)
	return setupRoutes()
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createTestSession(t *testing.T, r http.Handler, body string) api.Session {
	t.Helper()
	w := do(t, r, http.MethodPost, "/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[api.Session](t, w)
}

func TestSessionLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	sess := createTestSession(t, r, "")
	assert.Equal(t, calcium.MgDl, sess.State.Unit)
	assert.Nil(t, sess.State.Result)

	w := do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/calcium", `"9.0"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decodeBody[api.State](t, w)
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Interpretation)

	w = do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/albumin", `"2.0"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st = decodeBody[api.State](t, w)
	require.NotNil(t, st.Result)
	assert.Equal(t, "10.60", st.Result.Value)
	assert.Equal(t, calcium.High, st.Interpretation)

	w = do(t, r, http.MethodGet, "/sessions/"+sess.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[api.Session](t, w)
	assert.Equal(t, "9.0", got.State.Calcium)
	assert.Equal(t, "2.0", got.State.Albumin)

	w = do(t, r, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]api.Session](t, w), 1)

	w = do(t, r, http.MethodDelete, "/sessions/"+sess.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/sessions/"+sess.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSessionWithUnit(t *testing.T) {
	r, c := newTestRouter(t)

	sess := createTestSession(t, r, `{"unit":"mmol/L"}`)
	assert.Equal(t, calcium.MmolL, sess.State.Unit)

	c.SetDefaultUnit(calcium.MmolL)
	sess = createTestSession(t, r, "")
	assert.Equal(t, calcium.MmolL, sess.State.Unit)

	w := do(t, r, http.MethodPost, "/sessions", `{"unit":"furlong"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetSessionUnitConvertsCalcium(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createTestSession(t, r, "")

	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/calcium", `"9.5"`)
	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/albumin", `"4"`)

	w := do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/unit", `"mmol"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decodeBody[api.State](t, w)
	assert.Equal(t, calcium.MmolL, st.Unit)
	assert.Equal(t, "2.38", st.Calcium)
	require.NotNil(t, st.Result)
	assert.Equal(t, "2.38", st.Result.Value)
	assert.Equal(t, calcium.MmolL, st.Result.Unit)

	w = do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/unit", `"kelvin"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetKeepsUnit(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createTestSession(t, r, `{"unit":"mmol/L"}`)

	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/calcium", `"abc"`)
	w := do(t, r, http.MethodPost, "/sessions/"+sess.ID+"/reset", "")
	require.Equal(t, http.StatusOK, w.Code)

	st := decodeBody[api.State](t, w)
	assert.Equal(t, calcium.MmolL, st.Unit)
	assert.Empty(t, st.Calcium)
	assert.False(t, st.CalciumValidation.HasWarning())
}

func TestClipboard(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createTestSession(t, r, "")

	w := do(t, r, http.MethodGet, "/sessions/"+sess.ID+"/clipboard", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/calcium", `"9.0"`)
	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/albumin", `"2.0"`)

	w = do(t, r, http.MethodGet, "/sessions/"+sess.ID+"/clipboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Corrected Calcium: 10.60 mg/dL", decodeBody[string](t, w))
}

func TestUnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/sessions/nope", ""},
		{http.MethodDelete, "/sessions/nope", ""},
		{http.MethodPut, "/sessions/nope/calcium", `"9"`},
		{http.MethodPost, "/sessions/nope/reset", ""},
		{http.MethodGet, "/sessions/nope/clipboard", ""},
	} {
		w := do(t, r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createTestSession(t, r, "")

	w := do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/calcium", `9.5`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/albumin", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculate(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/calculate", `{"calcium":"2.25","albumin":"2.0","unit":"mmol/L"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decodeBody[api.State](t, w)
	require.NotNil(t, st.Result)
	assert.Equal(t, "2.65", st.Result.Value)
	assert.Equal(t, calcium.High, st.Interpretation)

	w = do(t, r, http.MethodPost, "/calculate", `{"calcium":"4.99","albumin":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	st = decodeBody[api.State](t, w)
	assert.Nil(t, st.Result)
	assert.True(t, st.CalciumValidation.HasWarning())
	assert.Equal(t, calcium.MgDl, st.Unit)

	assert.Zero(t, store.Len(), "calculate must not create sessions")
}

func TestThemeAndDefaultUnitArePersisted(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "corrcal.json")
	r := newTestRouterAt(t, configPath)

	w := do(t, r, http.MethodPut, "/theme", `"dark"`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPut, "/default-unit", `"mmol/L"`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, "/theme", `"sepia"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	raw := decodeBody[config.RawFileConfig](t, w)
	require.NotNil(t, raw.Theme)
	assert.Equal(t, config.ThemeDark, *raw.Theme)

	reloaded, err := config.NewFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.ThemeDark, reloaded.Theme())
	assert.Equal(t, calcium.MmolL, reloaded.DefaultUnit())
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	limited := gin.New()
	limited.Use(rateLimiter(func() int { return 1 }))
	limited.GET("/version", getVersion)

	w := do(t, limited, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, limited, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitFollowsConfig(t *testing.T) {
	r, c := newTestRouter(t)

	for i := 0; i < 5; i++ {
		w := do(t, r, http.MethodGet, "/version", "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	// As after a SIGHUP reload.
	c.SetRateLimit(1)

	w := do(t, r, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	c.SetRateLimit(0)
	w = do(t, r, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotifications(t *testing.T) {
	r, _ := newTestRouter(t)
	sess := createTestSession(t, r, "")

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/calcium", `"20"`)
	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/albumin", `"4"`)
	// Same result again: no second "complete" toast.
	do(t, r, http.MethodPut, "/sessions/"+sess.ID+"/albumin", `"4.0"`)
	do(t, r, http.MethodPost, "/sessions/"+sess.ID+"/reset", "")

	var toasts []events.NotificationEvent
	var updates int
	timeout := time.After(time.Second)
	for len(toasts) < 3 || updates < 4 {
		select {
		case ev := <-ch:
			switch ev.Name {
			case events.Notification:
				n, err := events.DecodeAs[events.NotificationEvent](ev)
				require.NoError(t, err)
				toasts = append(toasts, n)
			case events.SessionUpdated:
				updates++
			}
		case <-timeout:
			t.Fatalf("timed out, got toasts=%+v updates=%d", toasts, updates)
		}
	}

	require.Len(t, toasts, 3)
	assert.Equal(t, events.LevelWarning, toasts[0].Level)
	assert.Equal(t, "Calcium values typically range from 5-15 mg/dL. Please verify your input.", toasts[0].Message)
	assert.Equal(t, events.LevelSuccess, toasts[1].Level)
	assert.Equal(t, "Calculation complete!", toasts[1].Message)
	assert.Equal(t, events.LevelInfo, toasts[2].Level)
	assert.Equal(t, "Form has been reset", toasts[2].Message)
	for _, n := range toasts {
		assert.Equal(t, sess.ID, n.SessionID)
	}
}
