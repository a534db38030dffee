package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReplayer struct {
	gotLimit int
	count    int
	err      error
	calls    int
}

func (f *fakeReplayer) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	f.calls++
	f.gotLimit = limit
	return f.count, f.err
}

func replayRequest(replayer *fakeReplayer, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewOutboxHandler(replayer, zap.NewNop())

	r := gin.New()
	r.POST("/admin/outbox/replay-failed", h.ReplayFailed)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReplayFailedDefaults(t *testing.T) {
	replayer := &fakeReplayer{count: 4}

	w := replayRequest(replayer, "/admin/outbox/replay-failed")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultReplayLimit, replayer.gotLimit)
	assert.Contains(t, w.Body.String(), `"replayed":4`)
}

func TestReplayFailedCustomLimit(t *testing.T) {
	replayer := &fakeReplayer{}

	w := replayRequest(replayer, "/admin/outbox/replay-failed?limit=10")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, replayer.gotLimit)
}

func TestReplayFailedRejectsBadLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-5"} {
		replayer := &fakeReplayer{}
		w := replayRequest(replayer, "/admin/outbox/replay-failed?limit="+limit)

		assert.Equal(t, http.StatusBadRequest, w.Code, "limit %q", limit)
		assert.Zero(t, replayer.calls)
	}
}

func TestReplayFailedError(t *testing.T) {
	replayer := &fakeReplayer{err: errors.New("db unavailable")}

	w := replayRequest(replayer, "/admin/outbox/replay-failed")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
