package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"automatik/pkg/requestcontext"
)

func serve(mw func(http.Handler) http.Handler, reads int) []time.Time {
	var seen []time.Time
	handler := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		for range reads {
			seen = append(seen, requestcontext.Now(r.Context()))
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/logs", nil))
	return seen
}

func TestMiddlewareStampsUTC(t *testing.T) {
	before := time.Now()
	seen := serve(Middleware, 1)
	after := time.Now()

	assert.Len(t, seen, 1)
	assert.Equal(t, time.UTC, seen[0].Location())
	assert.False(t, seen[0].Before(before))
	assert.False(t, seen[0].After(after))
}

func TestWithClockPinsOneInstantPerRequest(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return time.Date(2025, 3, 1, 9, 30, 0, calls, time.FixedZone("CET", 3600))
	}

	seen := serve(WithClock(clock), 3)

	assert.Equal(t, 1, calls)
	assert.Equal(t, seen[0], seen[1])
	assert.Equal(t, seen[1], seen[2])
	assert.Equal(t, 8, seen[0].Hour())
}
