package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/cache"
	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/domain/record"
	"github.com/davaardana/dacoklinik-web/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type RecordsRepository interface {
	List(ctx context.Context, filter record.ListFilter) ([]record.Record, error)
	Create(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error)
	Update(ctx context.Context, id string, req record.UpsertRequest) (record.Record, error)
	Delete(ctx context.Context, id string) error
}

type RecordsHandler struct {
	repo    RecordsRepository
	summary *cache.Cache
}

// NewRecordsHandler takes the summary cache so every write can invalidate
// the dashboard aggregate.
func NewRecordsHandler(repo RecordsRepository, summary *cache.Cache) *RecordsHandler {
	return &RecordsHandler{repo: repo, summary: summary}
}

func (h *RecordsHandler) ListRecords(ctx *gin.Context) {
	filter, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	records, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Unable to load medical records")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": records,
		"count": len(records),
	})
}

func (h *RecordsHandler) CreateRecord(ctx *gin.Context) {
	var req record.UpsertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the examiner is whoever presented the token, never the body
	examiner, ok := middlewares.UsernameFromContext(ctx)

	if !ok || examiner == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.repo.Create(cctx, req, examiner)

	if err != nil {
		RespondInternal(ctx, "Unable to save medical record")
		return
	}

	h.invalidateSummary()

	ctx.JSON(http.StatusCreated, rec)
}

func (h *RecordsHandler) UpdateRecord(ctx *gin.Context) {
	var req record.UpsertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			RespondNotFound(ctx, "Medical record not found")
			return
		}

		RespondInternal(ctx, "Unable to update medical record")
		return
	}

	h.invalidateSummary()

	ctx.JSON(http.StatusOK, rec)
}

func (h *RecordsHandler) DeleteRecord(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			RespondNotFound(ctx, "Medical record not found")
			return
		}

		RespondInternal(ctx, "Unable to delete medical record")
		return
	}

	h.invalidateSummary()

	ctx.JSON(http.StatusOK, gin.H{"message": "Medical record deleted successfully"})
}

func (h *RecordsHandler) invalidateSummary() {
	if h.summary != nil {
		h.summary.Delete(summaryCacheKey)
	}
}

func parseListFilter(ctx *gin.Context) (record.ListFilter, bool) {
	var filter record.ListFilter

	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	if fromStr := ctx.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)

		if err != nil {
			RespondBadRequest(ctx, "Invalid 'from' timestamp", gin.H{"field": "from"})
			return record.ListFilter{}, false
		}

		filter.From = &from
	}

	if toStr := ctx.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)

		if err != nil {
			RespondBadRequest(ctx, "Invalid 'to' timestamp", gin.H{"field": "to"})
			return record.ListFilter{}, false
		}

		filter.To = &to
	}

	return filter, true
}
