package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mem "dailybag/adapters/memory"
	"dailybag/core"
	"dailybag/engine"
)

func newTestService(t *testing.T) *engine.Service {
	t.Helper()
	storage := mem.New()
	if err := storage.PutRecord(context.Background(), core.ChoreRecord{
		ID: "c1", Title: "Dishes", AssignedTo: "mia", Points: 30,
	}); err != nil {
		t.Fatal(err)
	}
	table := core.DefaultLevels()
	return engine.NewService(storage, table, engine.NewDispatcher())
}

func TestCompleteChoreSuccess(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodPost, "/api/users/mia/chores/c1/complete?x=120&y=340", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var progress core.UserProgress
	_ = json.Unmarshal(rec.Body.Bytes(), &progress)
	if progress.EarnedPoints != 30 || progress.CurrentLevel != 2 {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}

func TestCompleteChoreNotFound(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodPost, "/api/users/mia/chores/missing/complete", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCompleteChoreTwiceConflicts(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	first := httptest.NewRequest(http.MethodPost, "/api/users/mia/chores/c1/complete", nil)
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/users/mia/chores/c1/complete", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCompleteChoreOriginValidation(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodPost, "/api/users/mia/chores/c1/complete?x=bad", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProgress(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/users/mia", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var progress core.UserProgress
	_ = json.Unmarshal(rec.Body.Bytes(), &progress)
	if progress.CurrentLevel != 1 || progress.PointsToNextLevel != 25 {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}

func TestGetChores(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/users/mia/chores", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var records []core.ChoreRecord
	_ = json.Unmarshal(rec.Body.Bytes(), &records)
	if len(records) != 1 || records[0].ID != "c1" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestGetLevels(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/levels", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var levels []core.LevelDefinition
	_ = json.Unmarshal(rec.Body.Bytes(), &levels)
	if len(levels) != 10 || levels[0].Level != 1 || levels[1].PointsRequired != 25 {
		t.Fatalf("unexpected levels: %+v", levels)
	}
}

func TestHealthz(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "healthy" {
		t.Fatalf("unexpected status %q", body.Status)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{
		PathPrefix:      "/api",
		APIKeys:         []string{"secret"},
		AllowCORSOrigin: "*",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/mia", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/users/mia", nil)
	req2.Header.Set("Authorization", "Bearer secret")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
}

func TestRateLimit(t *testing.T) {
	svc := newTestService(t)
	handler := NewMux(svc, nil, Options{
		PathPrefix:       "/api",
		APIKeys:          []string{"k"},
		RateLimitEnabled: true,
		RateLimitRPM:     1,
		RateLimitBurst:   1,
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/users/mia", nil)
	req1.Header.Set("X-API-Key", "k")
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected 200 first request, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/users/mia", nil)
	req2.Header.Set("X-API-Key", "k")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec2.Code)
	}
}
