package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cargotrack_backend/internal/scheduler"
	"cargotrack_backend/platform/validator"
)

type fakeScheduler struct {
	calls   int
	payload scheduler.ProcessSheetPayload
	runAt   *time.Time
}

func (f *fakeScheduler) ScheduleProcessSheet(_ context.Context, payload scheduler.ProcessSheetPayload, runAt *time.Time) (string, error) {
	f.calls++
	f.payload = payload
	f.runAt = runAt
	return "task-1", nil
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/process", h.Process)
	engine.POST("/enqueue", h.Enqueue)
	engine.GET("/runs", h.ListRuns)
	return engine
}

func TestProcessRejectsInvalidBody(t *testing.T) {
	h := New(nil, nil, validator.New())
	engine := newTestRouter(h)

	for _, body := range []string{"not json", `{}`, `{"sheetName":""}`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestEnqueueWithoutSchedulerReturns503(t *testing.T) {
	h := New(nil, nil, validator.New())
	engine := newTestRouter(h)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/enqueue", strings.NewReader(`{"sheetName":"Май"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestEnqueueForwardsToScheduler(t *testing.T) {
	sched := &fakeScheduler{}
	h := New(nil, sched, validator.New())
	engine := newTestRouter(h)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/enqueue", strings.NewReader(`{"sheetName":"Май"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if sched.calls != 1 || sched.payload.SheetName != "Май" {
		t.Fatalf("unexpected scheduler call %+v", sched)
	}
	if sched.runAt != nil {
		t.Fatalf("expected immediate run, got %v", sched.runAt)
	}
	if !strings.Contains(rec.Body.String(), "task-1") {
		t.Fatalf("response should carry the task id, got %s", rec.Body.String())
	}
}

func TestListRunsRejectsInvalidLimit(t *testing.T) {
	h := New(nil, nil, validator.New())
	engine := newTestRouter(h)

	for _, limit := range []string{"0", "-5", "abc"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/runs?limit="+limit, nil)
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: expected 400, got %d", limit, rec.Code)
		}
	}
}
