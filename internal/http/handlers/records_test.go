package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/auth"
	"github.com/davaardana/dacoklinik-web/internal/cache"
	"github.com/davaardana/dacoklinik-web/internal/domain/record"
	"github.com/davaardana/dacoklinik-web/internal/http/handlers"
	"github.com/davaardana/dacoklinik-web/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeRecordsRepo struct {
	listFn   func(ctx context.Context, filter record.ListFilter) ([]record.Record, error)
	createFn func(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error)
	updateFn func(ctx context.Context, id string, req record.UpsertRequest) (record.Record, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeRecordsRepo) List(ctx context.Context, filter record.ListFilter) ([]record.Record, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return []record.Record{}, nil
}

func (f *fakeRecordsRepo) Create(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req, examiner)
	}

	return record.Record{}, nil
}

func (f *fakeRecordsRepo) Update(ctx context.Context, id string, req record.UpsertRequest) (record.Record, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return record.Record{}, nil
}

func (f *fakeRecordsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

// claimsVerifier accepts any token and returns fixed claims, so record tests
// can run behind the real auth middleware without minting real tokens.
type claimsVerifier struct {
	claims auth.Claims
}

func (v *claimsVerifier) Verify(token string) (*auth.Claims, error) {
	c := v.claims
	return &c, nil
}

// guardedRecordsRouter mounts one records handler behind RequireAuth with a
// verifier that always resolves to the given identity.
func guardedRecordsRouter(method, path string, h gin.HandlerFunc, username, role string) *gin.Engine {
	r := gin.New()

	guard := middlewares.NewAuthMiddleware(&claimsVerifier{claims: auth.Claims{Username: username, Role: role}})
	r.Handle(method, path, guard.RequireAuth(), h)

	return r
}

func doAuthedJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer any-token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestListRecordsHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeRecordsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/medical",
			repoSetup: func(f *fakeRecordsRepo) {
				f.listFn = func(ctx context.Context, filter record.ListFilter) ([]record.Record, error) {
					return []record.Record{
						{ID: uuid.NewString(), PatientName: "Budi", Department: "Produksi", Examiner: "alice", CreatedAt: now},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "search_filter_passed_through",
			url:  "/api/medical?search=budi",
			repoSetup: func(f *fakeRecordsRepo) {
				f.listFn = func(ctx context.Context, filter record.ListFilter) ([]record.Record, error) {
					if filter.Search == nil || *filter.Search != "budi" {
						return nil, errors.New("search filter not passed")
					}
					return []record.Record{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "date_range_passed_through",
			url:  "/api/medical?from=" + now.Add(-24*time.Hour).Format(time.RFC3339) + "&to=" + now.Format(time.RFC3339),
			repoSetup: func(f *fakeRecordsRepo) {
				f.listFn = func(ctx context.Context, filter record.ListFilter) ([]record.Record, error) {
					if filter.From == nil || filter.To == nil {
						return nil, errors.New("date bounds not passed")
					}
					return []record.Record{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "invalid_from_timestamp",
			url:  "/api/medical?from=yesterday",
			repoSetup: func(f *fakeRecordsRepo) {
				// the repo should not be called for a bad filter
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/api/medical",
			repoSetup: func(f *fakeRecordsRepo) {
				f.listFn = func(ctx context.Context, filter record.ListFilter) ([]record.Record, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeRecordsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewRecordsHandler(fakeRepo, nil)
			r := guardedRecordsRouter(http.MethodGet, "/api/medical", h.ListRecords, "alice", "staff")

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.Header.Set("Authorization", "Bearer any-token")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateRecordHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeRecordsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"patient_name": "Budi", "department": "Produksi", "blood_pressure": "120/80"}`,
			repoSetup: func(f *fakeRecordsRepo) {
				f.createFn = func(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error) {
					return record.Record{
						ID:            uuid.NewString(),
						PatientName:   req.PatientName,
						Department:    req.Department,
						BloodPressure: req.BloodPressure,
						Examiner:      examiner,
						CreatedAt:     now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "validation_error",
			body: `{"patient_name": ""}`,
			repoSetup: func(f *fakeRecordsRepo) {
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"patient_name": "Budi", "department": "Produksi"}`,
			repoSetup: func(f *fakeRecordsRepo) {
				f.createFn = func(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error) {
					return record.Record{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeRecordsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewRecordsHandler(fakeRepo, nil)
			r := guardedRecordsRouter(http.MethodPost, "/api/medical", h.CreateRecord, "alice", "staff")

			w := doAuthedJSON(t, r, http.MethodPost, "/api/medical", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// The examiner comes from the token claims, not from the request body.
func TestCreateRecordHandler_ExaminerFromToken(t *testing.T) {
	var gotExaminer string

	fakeRepo := &fakeRecordsRepo{
		createFn: func(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error) {
			gotExaminer = examiner
			return record.Record{ID: uuid.NewString(), PatientName: req.PatientName, Department: req.Department, Examiner: examiner}, nil
		},
	}

	h := handlers.NewRecordsHandler(fakeRepo, nil)
	r := guardedRecordsRouter(http.MethodPost, "/api/medical", h.CreateRecord, "dr-siti", "admin")

	w := doAuthedJSON(t, r, http.MethodPost, "/api/medical",
		`{"patient_name": "Budi", "department": "Produksi", "examiner": "spoofed"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201, body=%s", w.Code, w.Body.String())
	}

	if gotExaminer != "dr-siti" {
		t.Fatalf("got examiner %q, want %q", gotExaminer, "dr-siti")
	}
}

func TestUpdateRecordHandler(t *testing.T) {
	validID := uuid.NewString()
	missingID := uuid.NewString()

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeRecordsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/medical/" + validID,
			body: `{"patient_name": "Budi", "department": "Gudang"}`,
			repoSetup: func(f *fakeRecordsRepo) {
				f.updateFn = func(ctx context.Context, id string, req record.UpsertRequest) (record.Record, error) {
					return record.Record{ID: id, PatientName: req.PatientName, Department: req.Department, Examiner: "alice"}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/api/medical/" + missingID,
			body: `{"patient_name": "Budi", "department": "Gudang"}`,
			repoSetup: func(f *fakeRecordsRepo) {
				f.updateFn = func(ctx context.Context, id string, req record.UpsertRequest) (record.Record, error) {
					return record.Record{}, record.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "validation_error",
			url:  "/api/medical/" + validID,
			body: `{"patient_name": ""}`,
			repoSetup: func(f *fakeRecordsRepo) {
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/api/medical/" + validID,
			body: `{"patient_name": "Budi", "department": "Gudang"}`,
			repoSetup: func(f *fakeRecordsRepo) {
				f.updateFn = func(ctx context.Context, id string, req record.UpsertRequest) (record.Record, error) {
					return record.Record{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeRecordsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewRecordsHandler(fakeRepo, nil)
			r := guardedRecordsRouter(http.MethodPut, "/api/medical/:id", h.UpdateRecord, "alice", "staff")

			w := doAuthedJSON(t, r, http.MethodPut, tt.url, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteRecordHandler(t *testing.T) {
	validID := uuid.NewString()
	missingID := uuid.NewString()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeRecordsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/api/medical/" + validID,
			repoSetup: func(f *fakeRecordsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/api/medical/" + missingID,
			repoSetup: func(f *fakeRecordsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return record.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/api/medical/" + validID,
			repoSetup: func(f *fakeRecordsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeRecordsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewRecordsHandler(fakeRepo, nil)
			r := guardedRecordsRouter(http.MethodDelete, "/api/medical/:id", h.DeleteRecord, "alice", "staff")

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			req.Header.Set("Authorization", "Bearer any-token")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Record writes must drop the cached dashboard aggregate.
func TestRecordWritesInvalidateSummaryCache(t *testing.T) {
	c := cache.New(30 * time.Second)
	c.Set("dashboard:summary", record.Summary{TotalPatients: 7})

	fakeRepo := &fakeRecordsRepo{
		createFn: func(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error) {
			return record.Record{ID: uuid.NewString(), PatientName: req.PatientName, Department: req.Department, Examiner: examiner}, nil
		},
	}

	h := handlers.NewRecordsHandler(fakeRepo, c)
	r := guardedRecordsRouter(http.MethodPost, "/api/medical", h.CreateRecord, "alice", "staff")

	w := doAuthedJSON(t, r, http.MethodPost, "/api/medical", `{"patient_name": "Budi", "department": "Produksi"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201, body=%s", w.Code, w.Body.String())
	}

	if _, ok := c.Get("dashboard:summary"); ok {
		t.Fatalf("summary cache entry survived a record write")
	}
}
