package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L1TangDingZhen/BOX-P/pkg/cache"
	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/observability"
	"github.com/L1TangDingZhen/BOX-P/pkg/render/nodelink"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
	"github.com/L1TangDingZhen/BOX-P/pkg/task"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}
	opts.Session.Seed = 1
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createSession(t *testing.T, ts *httptest.Server, body any) SessionInfo {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/api/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[SessionInfo](t, resp)
}

func item(x, y, z, w, h, d float64) task.Item {
	return task.Item{
		Dimensions: task.XYZ{X: w, Y: h, Z: d},
		Position:   task.XYZ{X: x, Y: y, Z: z},
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := do(t, http.MethodGet, ts.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Server"), "boxp/"))

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t, Options{})

	t.Run("default container", func(t *testing.T) {
		si := createSession(t, ts, nil)
		assert.NotEmpty(t, si.ID)
		assert.Equal(t, task.XYZ{X: 10, Y: 10, Z: 10}, si.Container)
		assert.Equal(t, "item0001", si.NextID)
		require.NotNil(t, si.Task)
		assert.Empty(t, si.Task.Items)
	})

	t.Run("custom container", func(t *testing.T) {
		si := createSession(t, ts, map[string]any{"container": task.XYZ{X: 4, Y: 5, Z: 6}})
		assert.Equal(t, task.XYZ{X: 4, Y: 5, Z: 6}, si.Container)
	})

	t.Run("invalid container", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/sessions", map[string]any{"container": task.XYZ{X: 0, Y: 5, Z: 6}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, errors.ErrCodeInvalidDimension, decode[ErrorResponse](t, resp).Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/sessions", "{")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errors.ErrCodeInvalidFormat, decode[ErrorResponse](t, resp).Error)
	})

	resp := do(t, http.MethodGet, ts.URL+"/api/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]SessionInfo](t, resp), 2)
}

func TestPlaceAndRemoveBoxes(t *testing.T) {
	ts := newTestServer(t, Options{})
	si := createSession(t, ts, nil)
	boxes := ts.URL + "/api/sessions/" + si.ID + "/boxes"

	resp := do(t, http.MethodPost, boxes, item(0, 0, 0, 2, 2, 2))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	a := decode[spatial.Box](t, resp)
	assert.Equal(t, "item0001", a.ID)

	resp = do(t, http.MethodPost, boxes, item(2, 0, 0, 2, 2, 2))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "face-touching box must be accepted")

	tests := []struct {
		name string
		item task.Item
		code errors.Code
	}{
		{"overlap", item(1, 0, 0, 2, 2, 2), errors.ErrCodeOverlap},
		{"out of bounds", item(9, 9, 9, 2, 2, 2), errors.ErrCodeOutOfBounds},
		{"invalid dimension", item(0, 5, 0, 0, 1, 1), errors.ErrCodeInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, boxes, tt.item)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			er := decode[ErrorResponse](t, resp)
			assert.Equal(t, tt.code, er.Error)
			assert.Equal(t, http.StatusUnprocessableEntity, er.Code)
		})
	}

	resp = do(t, http.MethodDelete, boxes+"/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodDelete, boxes+"/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/sessions/"+si.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[task.Task](t, resp)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "item0002", got.Items[0].ID)
}

func TestResizeContainer(t *testing.T) {
	ts := newTestServer(t, Options{})
	si := createSession(t, ts, nil)
	base := ts.URL + "/api/sessions/" + si.ID

	do(t, http.MethodPost, base+"/boxes", item(0, 0, 0, 4, 4, 4))
	do(t, http.MethodPost, base+"/boxes", item(6, 0, 0, 3, 3, 3))

	resp := do(t, http.MethodPut, base+"/container", task.XYZ{X: 5, Y: 10, Z: 10})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	er := decode[ErrorResponse](t, resp)
	assert.Equal(t, errors.ErrCodeItemsExceedBounds, er.Error)
	assert.Equal(t, []string{"item0002"}, er.IDs)

	resp = do(t, http.MethodPut, base+"/container", task.XYZ{X: 9, Y: 4, Z: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, task.XYZ{X: 9, Y: 4, Z: 4}, decode[SessionInfo](t, resp).Container)

	resp = do(t, http.MethodPut, base+"/container", task.XYZ{X: -1, Y: 4, Z: 4})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLayers(t *testing.T) {
	ts := newTestServer(t, Options{})
	si := createSession(t, ts, nil)
	base := ts.URL + "/api/sessions/" + si.ID

	// Three stacked boxes.
	for _, y := range []float64{0, 2, 4} {
		resp := do(t, http.MethodPost, base+"/boxes", item(0, y, 0, 2, 2, 2))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	tests := []struct {
		query string
		want  LayersResponse
	}{
		{"", LayersResponse{Mode: "single", Layers: []stratify.Layer{
			{Index: 0, IDs: []string{"item0001"}},
			{Index: 1, IDs: []string{"item0002", "item0003"}},
		}}},
		{"?mode=multi", LayersResponse{Mode: "multi", Layers: []stratify.Layer{
			{Index: 0, IDs: []string{"item0001"}},
			{Index: 1, IDs: []string{"item0002"}},
			{Index: 2, IDs: []string{"item0003"}},
		}}},
	}
	for _, tt := range tests {
		t.Run("query="+tt.query, func(t *testing.T) {
			resp := do(t, http.MethodGet, base+"/layers"+tt.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, decode[LayersResponse](t, resp))
		})
	}

	t.Run("dot", func(t *testing.T) {
		resp := do(t, http.MethodGet, base+"/layers?format=dot", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		assert.Contains(t, buf.String(), `"item0001" -> "item0002"`)
	})

	for _, q := range []string{"?mode=sideways", "?keep_empty=maybe", "?min_layers=-1", "?format=png"} {
		resp := do(t, http.MethodGet, base+"/layers"+q, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestLayersSVGCache(t *testing.T) {
	c := cache.NewMemoryCache(8)
	ts := newTestServer(t, Options{Cache: c})
	info := createSession(t, ts, nil)
	base := ts.URL + "/api/sessions/" + info.ID
	resp := do(t, http.MethodPost, base+"/boxes", item(0, 0, 0, 2, 2, 2))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/layers?format=dot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dot bytes.Buffer
	_, _ = dot.ReadFrom(resp.Body)

	require.NoError(t, c.Set(context.Background(), nodelink.SVGKey(dot.String()), []byte("<svg>cached</svg>"), 0))

	resp = do(t, http.MethodGet, base+"/layers?format=svg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Equal(t, "<svg>cached</svg>", body.String())
}

func TestImportSession(t *testing.T) {
	ts := newTestServer(t, Options{})
	doc := task.Task{
		SpaceInfo: task.XYZ{X: 10, Y: 10, Z: 10},
		Items: []task.Item{
			{OrderID: 1, Name: "A", Dimensions: task.XYZ{X: 2, Y: 2, Z: 2}},
			{OrderID: 2, Name: "B", Dimensions: task.XYZ{X: 2, Y: 2, Z: 2}, Position: task.XYZ{X: 1}},
		},
	}

	resp := do(t, http.MethodPost, ts.URL+"/api/sessions/import", doc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ir := decode[ImportResponse](t, resp)
	assert.Len(t, ir.Placed, 1)
	require.Len(t, ir.Rejected, 1)
	assert.Equal(t, errors.ErrCodeOverlap, ir.Rejected[0].Error)
	assert.Equal(t, "B", ir.Rejected[0].Name)
	assert.Equal(t, 1, ir.Session.Boxes)

	resp = do(t, http.MethodPost, ts.URL+"/api/sessions/import", "not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	doc.SpaceInfo.Y = 0
	resp = do(t, http.MethodPost, ts.URL+"/api/sessions/import", doc)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSessionNotFound(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/sessions/missing"},
		{http.MethodDelete, "/api/sessions/missing"},
		{http.MethodGet, "/api/sessions/missing/layers"},
		{http.MethodGet, "/api/nowhere"},
	} {
		resp := do(t, tc.method, ts.URL+tc.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, errors.ErrCodeNotFound, decode[ErrorResponse](t, resp).Error, tc.path)
	}
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, Options{})
	si := createSession(t, ts, nil)

	resp := do(t, http.MethodDelete, ts.URL+"/api/sessions/"+si.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodGet, ts.URL+"/api/sessions/"+si.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConcurrentPlacementsStayDisjoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	si := createSession(t, ts, nil)
	boxes := ts.URL + "/api/sessions/" + si.ID + "/boxes"

	// Every client tries the same slots; each slot must be won exactly once.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := 0.0; x < 10; x += 2 {
				body, _ := json.Marshal(item(x, 0, 0, 2, 2, 2))
				resp, err := http.Post(boxes, "application/json", bytes.NewReader(body))
				if err == nil {
					resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()

	resp := do(t, http.MethodGet, ts.URL+"/api/sessions/"+si.ID, nil)
	got := decode[task.Task](t, resp)
	assert.Len(t, got.Items, 5)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{Rate: 0.001, Burst: 2})

	for range 2 {
		resp := do(t, http.MethodGet, ts.URL+"/api/health", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := do(t, http.MethodGet, ts.URL+"/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: []string{"http://example.com"}})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestStats(t *testing.T) {
	counters := observability.NewCounters()
	observability.SetPlacementHooks(counters)
	observability.SetHTTPHooks(counters)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Options{Stats: counters})
	si := createSession(t, ts, nil)
	do(t, http.MethodPost, ts.URL+"/api/sessions/"+si.ID+"/boxes", item(0, 0, 0, 1, 1, 1))
	do(t, http.MethodPost, ts.URL+"/api/sessions/"+si.ID+"/boxes", item(0, 0, 0, 1, 1, 1))

	resp := do(t, http.MethodGet, ts.URL+"/api/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[observability.Stats](t, resp)
	assert.Equal(t, 1, stats.Placed)
	assert.Equal(t, 1, stats.Rejected[errors.ErrCodeOverlap])
	assert.GreaterOrEqual(t, stats.Requests, 3)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	srv := New(Options{SessionTTL: time.Nanosecond})
	_, err := srv.Store().Create(srv.newSessionOptions())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	srv.sweepOnce(time.Now())
	assert.Equal(t, 0, srv.Store().Len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "10.0.0.1:1234", nil, false, "10.0.0.1"},
		{"ignores xff without trust", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "1.2.3.4"}, false, "10.0.0.1"},
		{"first xff entry", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, true, "1.2.3.4"},
		{"x-real-ip", "10.0.0.1:1234", map[string]string{"X-Real-IP": "9.9.9.9"}, true, "9.9.9.9"},
		{"no port", "10.0.0.1", nil, false, "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(r, tt.trustProxy))
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeNotFound:          http.StatusNotFound,
		errors.ErrCodeInvalidInput:      http.StatusBadRequest,
		errors.ErrCodeInvalidFormat:     http.StatusBadRequest,
		errors.ErrCodeInvalidDimension:  http.StatusUnprocessableEntity,
		errors.ErrCodeOutOfBounds:       http.StatusUnprocessableEntity,
		errors.ErrCodeOverlap:           http.StatusUnprocessableEntity,
		errors.ErrCodeItemsExceedBounds: http.StatusConflict,
		errors.ErrCodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, statusFor(code), code)
	}
}
