package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-parking-system/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Custom": {"a", "b"}}
	body := []byte(`{"success":true}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload(nil)
	assert.False(t, ok)

	_, _, _, ok = decodePayload([]byte("short"))
	assert.False(t, ok)

	// header length pointing past the buffer
	bad := make([]byte, 12)
	bad[7] = 0xFF
	_, _, _, ok = decodePayload(bad)
	assert.False(t, ok)
}

func TestCacheKeyUsesRequestPathAndQuery(t *testing.T) {
	e := echo.New()

	ctx := func(target, route string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(route)
		return c
	}

	// identical requests hash to the same key
	a := cacheKey("cache:lots", ctx("/api/admin/pkl/list", "/api/admin/pkl/list"))
	b := cacheKey("cache:lots", ctx("/api/admin/pkl/list", "/api/admin/pkl/list"))
	assert.Equal(t, a, b)

	// two lots behind the same route pattern must not share an entry
	one := cacheKey("cache:lots", ctx("/api/admin/pkl/1", "/api/admin/pkl/:id"))
	two := cacheKey("cache:lots", ctx("/api/admin/pkl/2", "/api/admin/pkl/:id"))
	assert.NotEqual(t, one, two)

	// the query string is part of the key
	q := cacheKey("cache:lots", ctx("/api/admin/pkl/list?page=2", "/api/admin/pkl/list"))
	assert.NotEqual(t, a, q)

	// prefixes partition the keyspace
	p := cacheKey("cache:spots", ctx("/api/admin/pkl/list", "/api/admin/pkl/list"))
	assert.NotEqual(t, a, p)
}

func TestCaptureWriterCountsEveryWrite(t *testing.T) {
	cw := &captureWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 10}

	_, err := cw.Write([]byte("12345"))
	require.NoError(t, err)
	_, err = cw.Write([]byte("67890"))
	require.NoError(t, err)
	_, err = cw.Write([]byte("abcde"))
	require.NoError(t, err)

	// the buffer stops at the limit but size keeps counting, so an
	// overrun is visible even when a write lands exactly on the limit
	assert.Equal(t, int64(15), cw.size)
	assert.Equal(t, "1234567890", cw.buf.String())
	assert.Greater(t, cw.size, cw.limit)
}

func TestCacheDisabledIsPassThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "live")
	})
	require.NoError(t, h(c))
	assert.Equal(t, "live", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
