package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"call":` + string(rune('0'+n)) + `}`))
	})
}

func postBooking(key, clientID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}
	return req
}

func testIdempotency(t *testing.T, store IdempotencyStore) {
	var calls int32
	handler := Idempotency(store, logger.NewNop())(countingHandler(&calls, http.StatusCreated))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postBooking("k-1", "c-1"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, postBooking("k-1", "c-1"))

	assert.Equal(t, int32(1), calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, postBooking("k-1", "c-2"))
	assert.Equal(t, int32(2), calls, "keys are scoped to the caller")

	handler.ServeHTTP(httptest.NewRecorder(), postBooking("", "c-1"))
	assert.Equal(t, int32(3), calls)
}

func TestIdempotency_InMemory(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	testIdempotency(t, store)
}

func TestIdempotency_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisIdempotencyStore(client, "idem:", time.Minute)
	testIdempotency(t, store)

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.True(t, strings.HasPrefix(keys[0], "idem:"))
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestIdempotency_ErrorsAreNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, logger.NewNop())(countingHandler(&calls, http.StatusConflict))
	handler.ServeHTTP(httptest.NewRecorder(), postBooking("k-1", "c-1"))
	handler.ServeHTTP(httptest.NewRecorder(), postBooking("k-1", "c-1"))

	assert.Equal(t, int32(2), calls)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute, nil, logger.NewNop())
	defer limiter.Stop()

	var calls int32
	handler := RateLimit(limiter)(countingHandler(&calls, http.StatusOK))

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, postBooking("", "c-1"))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postBooking("", "c-2"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, postBooking("", ""))
	assert.Equal(t, http.StatusOK, rec.Code, "anonymous callers are not limited")
}

func TestContentTypeValidation(t *testing.T) {
	var calls int32
	handler := ContentTypeValidation(logger.NewNop())(countingHandler(&calls, http.StatusOK))

	bad := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`a=b`))
	bad.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	bodyless := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/b-1/status/CANCELLED", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, bodyless)
	assert.Equal(t, http.StatusOK, rec.Code)

	good := postBooking("", "")
	good.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, good)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeInternal)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.NewNop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "gw-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "gw-123", seen)
	assert.Equal(t, "gw-123", rec.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "bad id with spaces")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, seen, 32)
}

func TestRequestTimeout(t *testing.T) {
	handler := RequestTimeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeTimeout)
}
