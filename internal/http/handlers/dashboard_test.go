package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/cache"
	"github.com/davaardana/dacoklinik-web/internal/domain/record"
	"github.com/davaardana/dacoklinik-web/internal/http/handlers"
)

type fakeSummaryRepo struct {
	summaryFn func(ctx context.Context) (record.Summary, error)
}

func (f *fakeSummaryRepo) Summary(ctx context.Context) (record.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx)
	}

	return record.Summary{}, nil
}

func TestDashboardSummaryHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetup      func(*fakeSummaryRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			repoSetup: func(f *fakeSummaryRepo) {
				f.summaryFn = func(ctx context.Context) (record.Summary, error) {
					return record.Summary{
						TotalPatients:    42,
						TodayCheckups:    5,
						BloodPressureAvg: 118.5,
						SpO2Avg:          97.2,
						PulseAvg:         74.1,
						RespirationAvg:   16.8,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "repo_error",
			repoSetup: func(f *fakeSummaryRepo) {
				f.summaryFn = func(ctx context.Context) (record.Summary, error) {
					return record.Summary{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeSummaryRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewDashboardHandler(fakeRepo, nil, nil)
			r := setupRouter(http.MethodGet, "/api/dashboard/summary", h.Summary)

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDashboardSummaryHandler_ResponseShape(t *testing.T) {
	fakeRepo := &fakeSummaryRepo{
		summaryFn: func(ctx context.Context) (record.Summary, error) {
			return record.Summary{
				TotalPatients:    10,
				TodayCheckups:    3,
				BloodPressureAvg: 120,
				SpO2Avg:          98,
				PulseAvg:         72,
				RespirationAvg:   18,
			}, nil
		},
	}

	h := handlers.NewDashboardHandler(fakeRepo, nil, nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/summary", h.Summary)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		TotalPatients int `json:"totalPatients"`
		TodayCheckups int `json:"todayCheckups"`
		ChartData     struct {
			Labels []string  `json:"labels"`
			Values []float64 `json:"values"`
		} `json:"chartData"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.TotalPatients != 10 || resp.TodayCheckups != 3 {
		t.Fatalf("unexpected counters: %+v", resp)
	}

	if len(resp.ChartData.Labels) != 4 || len(resp.ChartData.Values) != 4 {
		t.Fatalf("chart data must carry the four vitals, got %+v", resp.ChartData)
	}

	if resp.ChartData.Values[0] != 120 || resp.ChartData.Values[1] != 98 {
		t.Fatalf("chart values out of order: %+v", resp.ChartData.Values)
	}
}

func TestDashboardSummaryHandler_CacheHit(t *testing.T) {
	c := cache.New(30 * time.Second)
	calls := 0

	fakeRepo := &fakeSummaryRepo{
		summaryFn: func(ctx context.Context) (record.Summary, error) {
			calls++
			return record.Summary{TotalPatients: 1}, nil
		},
	}

	h := handlers.NewDashboardHandler(fakeRepo, c, nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/summary", h.Summary)

	// First request: cache miss -> repo called
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	// Second request: cache hit -> repo should NOT be called again
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))

	if w2.Code != http.StatusOK {
		t.Fatalf("second call got %d body=%s", w2.Code, w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}

	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("cached response differs from fresh one")
	}
}

func TestDashboardSummaryHandler_CacheInvalidation(t *testing.T) {
	c := cache.New(30 * time.Second)
	calls := 0

	fakeRepo := &fakeSummaryRepo{
		summaryFn: func(ctx context.Context) (record.Summary, error) {
			calls++
			return record.Summary{TotalPatients: calls}, nil
		},
	}

	h := handlers.NewDashboardHandler(fakeRepo, c, nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/summary", h.Summary)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))

	// a record write drops the cached aggregate
	c.Delete("dashboard:summary")

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))

	if calls != 2 {
		t.Fatalf("expected a recompute after invalidation, repo calls=%d", calls)
	}
}
