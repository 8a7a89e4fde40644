package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// capHandler - тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs из каждой записи в map[string]any;
//   - не создаёт реальных I/O, чтобы не паниковать в тестах.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errEnvelope struct {
	Error apiError `json:"error"`
}

func TestChain_Order(t *testing.T) {
	var order []string

	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-begin")
				next.ServeHTTP(w, r)
				order = append(order, name+"-end")
			})
		}
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	Chain(final, mark("m1"), mark("m2")).ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	var seenHeader, seenCtx string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHeader = r.Header.Get("X-Request-Id")
		seenCtx = RequestIDFrom(r.Context())
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get("X-Request-Id")
	require.Len(t, respID, 36)
	require.Equal(t, respID, seenHeader)
	require.Equal(t, respID, seenCtx)
}

func TestRequestID_KeepsIncoming_ReplacesOversized(t *testing.T) {
	var seen string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	})
	chain := Chain(h, RequestID())

	req := makeReq("/rid")
	req.Header.Set("X-Request-Id", "abc-123")
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "abc-123", seen)

	req = makeReq("/rid")
	req.Header.Set("X-Request-Id", strings.Repeat("x", 500))
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.Len(t, seen, 36)
}

func TestRequestIDFrom_Empty(t *testing.T) {
	require.Empty(t, RequestIDFrom(context.Background()))
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var left time.Duration

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dl, ok := r.Context().Deadline()
		require.True(t, ok)
		left = time.Until(dl)
	})

	Chain(h, Timeout(50*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout"))

	require.Greater(t, left, time.Duration(0))
	require.LessOrEqual(t, left, 50*time.Millisecond)
}

func TestTimeout_KeepsEarlierParentDeadline(t *testing.T) {
	var childDL time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		childDL, _ = r.Context().Deadline()
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	Chain(h, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout").WithContext(parent))

	parentDL, _ := parent.Deadline()
	require.Equal(t, parentDL, childDL)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var has bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has = r.Context().Deadline()
	})

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.False(t, has)
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	logs := &capHandler{}
	rr := httptest.NewRecorder()
	Chain(panicHandler, RequestID(), Logging(slog.New(logs)), Recover()).ServeHTTP(rr, makeReq("/panic"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "internal", env.Error.Code)
	require.NotContains(t, env.Error.Message, "boom")
	require.Equal(t, rr.Header().Get("X-Request-Id"), env.Error.RequestID)

	// Паника и итог запроса: две записи, последняя - http_request c 500.
	require.Equal(t, 2, logs.count)
	require.Equal(t, "http_request", logs.lastMsg)
	require.Equal(t, slog.LevelError, logs.lastLvl)
}

func TestRecover_RethrowsAbortHandler(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Chain(h, Recover()).ServeHTTP(httptest.NewRecorder(), makeReq("/abort"))
	})
}

func TestLogging_WritesRecord_WithRequestID(t *testing.T) {
	h := &capHandler{}

	const rid = "rid-456"
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	})

	req := makeReq("/log")
	req.Header.Set("X-Request-Id", rid)
	rr := httptest.NewRecorder()
	Chain(final, RequestID(), Logging(slog.New(h))).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, h.count)
	require.Equal(t, "http_request", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)

	require.Equal(t, http.MethodGet, h.attrs["method"])
	require.Equal(t, "/log", h.attrs["path"])
	require.EqualValues(t, http.StatusOK, h.attrs["status"])
	require.EqualValues(t, 10, h.attrs["bytes"])
	require.Equal(t, rid, h.attrs["request_id"])
	require.Contains(t, h.attrs, "dur")
}

func TestLogging_LevelByStatus(t *testing.T) {
	tcs := []struct {
		status int
		want   slog.Level
	}{
		{http.StatusOK, slog.LevelInfo},
		{http.StatusNotFound, slog.LevelWarn},
		{http.StatusGatewayTimeout, slog.LevelError},
	}

	for _, tc := range tcs {
		h := &capHandler{}
		final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})

		Chain(final, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), makeReq("/lvl"))
		require.Equal(t, tc.want, h.lastLvl, "status %d", tc.status)
	}
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()

	r := chi.NewRouter()
	r.Use(Metrics(reg))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), makeReq("/items/1"))
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/items/2"))

	// Одна серия на шаблон маршрута, а не на каждый id.
	n, err := testutil.GatherAndCount(reg, "gateway_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	expected := `
# HELP gateway_http_requests_total HTTP requests handled by the gateway.
# TYPE gateway_http_requests_total counter
gateway_http_requests_total{method="GET",route="/items/{id}",status="202"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "gateway_http_requests_total"))
}

func TestStatusWriter_DefaultsTo200(t *testing.T) {
	sw := wrap(httptest.NewRecorder())
	require.Equal(t, http.StatusOK, sw.Status())

	_, _ = sw.Write([]byte("abcd"))
	require.Equal(t, http.StatusOK, sw.Status())
	require.Equal(t, 4, sw.bytes)

	require.Same(t, sw, wrap(sw))
}
