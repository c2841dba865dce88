package middleware_test

import (
	"context"
	"crypto/tls"
	"io"
	"mime/multipart"
	"net/url"
	"testing"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/kv"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/middleware"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPI() huma.API {
	return humachi.New(chi.NewMux(), huma.DefaultConfig("Test", "1.0.0"))
}

// mockHumaContext implements huma.Context for testing.
type mockHumaContext struct {
	reqHeaders  map[string]string
	respHeaders map[string]string
	host        string
	method      string
	statusCode  int
	written     []byte
}

func newMockHumaContext() *mockHumaContext {
	return &mockHumaContext{
		reqHeaders:  make(map[string]string),
		respHeaders: make(map[string]string),
		host:        "192.168.1.1:12345",
		method:      "GET",
	}
}

func (m *mockHumaContext) Operation() *huma.Operation             { return nil }
func (m *mockHumaContext) Context() context.Context               { return context.Background() }
func (m *mockHumaContext) TLS() *tls.ConnectionState              { return nil }
func (m *mockHumaContext) Version() huma.ProtoVersion             { return huma.ProtoVersion{} }
func (m *mockHumaContext) Method() string                         { return m.method }
func (m *mockHumaContext) Host() string                           { return m.host }
func (m *mockHumaContext) RemoteAddr() string                     { return m.host }
func (m *mockHumaContext) URL() url.URL                           { return url.URL{Path: "/activity"} }
func (m *mockHumaContext) Param(_ string) string                  { return "" }
func (m *mockHumaContext) Query(_ string) string                  { return "" }
func (m *mockHumaContext) Header(name string) string              { return m.reqHeaders[name] }
func (m *mockHumaContext) EachHeader(_ func(name, value string))  {}
func (m *mockHumaContext) BodyReader() io.Reader                  { return nil }
func (m *mockHumaContext) SetReadDeadline(_ time.Time) error      { return nil }
func (m *mockHumaContext) SetStatus(code int)                     { m.statusCode = code }
func (m *mockHumaContext) Status() int                            { return m.statusCode }
func (m *mockHumaContext) AppendHeader(name, value string)        { m.respHeaders[name] = value }
func (m *mockHumaContext) SetHeader(name, value string)           { m.respHeaders[name] = value }
func (m *mockHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, nil
}
func (m *mockHumaContext) BodyWriter() io.Writer { return &mockBodyWriter{ctx: m} }

type mockBodyWriter struct {
	ctx *mockHumaContext
}

func (w *mockBodyWriter) Write(p []byte) (int, error) {
	w.ctx.written = append(w.ctx.written, p...)

	return len(p), nil
}

func newRateLimiterMiddleware(limit int64) (func(huma.Context, func(huma.Context)), *ratelimit.Limiter) {
	limiter := ratelimit.NewLimiter(kv.NewMemoryStore(), zap.NewNop())
	mw := middleware.RateLimiter(newTestAPI(), limiter, middleware.RateLimitConfig{
		Limit:  limit,
		Window: time.Minute,
	}, zap.NewNop())

	return mw, limiter
}

func TestRateLimiterMiddleware(t *testing.T) {
	t.Run("admits requests and sets headers", func(t *testing.T) {
		mw, _ := newRateLimiterMiddleware(3)
		ctx := newMockHumaContext()
		ctx.reqHeaders["X-User-ID"] = "u1"

		nextCalled := false
		mw(ctx, func(_ huma.Context) { nextCalled = true })

		assert.True(t, nextCalled)
		assert.Equal(t, "2", ctx.respHeaders["X-RateLimit-Remaining"])
		assert.NotEmpty(t, ctx.respHeaders["X-RateLimit-Reset"])
	})

	t.Run("rejects with 429 once the budget is spent", func(t *testing.T) {
		mw, _ := newRateLimiterMiddleware(2)

		for range 2 {
			ctx := newMockHumaContext()
			ctx.reqHeaders["X-User-ID"] = "u1"
			mw(ctx, func(_ huma.Context) {})
		}

		ctx := newMockHumaContext()
		ctx.reqHeaders["X-User-ID"] = "u1"

		nextCalled := false
		mw(ctx, func(_ huma.Context) { nextCalled = true })

		assert.False(t, nextCalled)
		assert.Equal(t, 429, ctx.statusCode)
		assert.Equal(t, "0", ctx.respHeaders["X-RateLimit-Remaining"])
	})

	t.Run("budgets are tracked per identity", func(t *testing.T) {
		mw, _ := newRateLimiterMiddleware(1)

		u1 := newMockHumaContext()
		u1.reqHeaders["X-User-ID"] = "u1"
		mw(u1, func(_ huma.Context) {})

		blocked := newMockHumaContext()
		blocked.reqHeaders["X-User-ID"] = "u1"

		nextCalled := false
		mw(blocked, func(_ huma.Context) { nextCalled = true })
		require.False(t, nextCalled)

		u2 := newMockHumaContext()
		u2.reqHeaders["X-User-ID"] = "u2"

		mw(u2, func(_ huma.Context) { nextCalled = true })
		assert.True(t, nextCalled, "a different identity keeps its own budget")
	})
}

func TestCallerIdentity(t *testing.T) {
	t.Run("prefers the resolved identity header", func(t *testing.T) {
		ctx := newMockHumaContext()
		ctx.reqHeaders["X-User-ID"] = "student-42"

		assert.Equal(t, "student-42", middleware.CallerIdentity(ctx))
	})

	t.Run("anonymous callers hash ip and user agent", func(t *testing.T) {
		ctx := newMockHumaContext()
		ctx.reqHeaders["User-Agent"] = "TestAgent/1.0"

		id := middleware.CallerIdentity(ctx)

		assert.Contains(t, id, "anon:")
		assert.Equal(t, id, middleware.CallerIdentity(ctx), "identity is stable")
	})

	t.Run("different user agents get different identities", func(t *testing.T) {
		a := newMockHumaContext()
		a.reqHeaders["User-Agent"] = "AgentA/1.0"

		b := newMockHumaContext()
		b.reqHeaders["User-Agent"] = "AgentB/1.0"

		assert.NotEqual(t, middleware.CallerIdentity(a), middleware.CallerIdentity(b))
	})

	t.Run("uses the first address from X-Forwarded-For", func(t *testing.T) {
		direct := newMockHumaContext()
		direct.host = "10.0.0.1:443"

		forwarded := newMockHumaContext()
		forwarded.host = "10.0.0.9:443"
		forwarded.reqHeaders["X-Forwarded-For"] = "10.0.0.1, 172.16.0.1"

		assert.Equal(t, middleware.CallerIdentity(direct), middleware.CallerIdentity(forwarded))
	})
}
