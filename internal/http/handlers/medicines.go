package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/domain/medicine"
	"github.com/davaardana/dacoklinik-web/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type MedicinesRepository interface {
	List(ctx context.Context, search *string) ([]medicine.Medicine, error)
	Create(ctx context.Context, req medicine.UpsertRequest) (medicine.Medicine, error)
	Update(ctx context.Context, id string, req medicine.UpsertRequest) (medicine.Medicine, error)
	Delete(ctx context.Context, id string) error
}

// StockAlerter is notified after inventory writes; a nil-safe no-op in tests.
type StockAlerter interface {
	AlertIfLow(ctx context.Context, m medicine.Medicine, requestID string)
}

type MedicinesHandler struct {
	repo    MedicinesRepository
	alerter StockAlerter
}

func NewMedicinesHandler(repo MedicinesRepository, alerter StockAlerter) *MedicinesHandler {
	return &MedicinesHandler{repo: repo, alerter: alerter}
}

func (h *MedicinesHandler) ListMedicines(ctx *gin.Context) {
	var search *string

	if s := ctx.Query("search"); s != "" {
		search = &s
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	medicines, err := h.repo.List(cctx, search)

	if err != nil {
		RespondInternal(ctx, "Unable to fetch medicines")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": medicines,
		"count": len(medicines),
	})
}

func (h *MedicinesHandler) CreateMedicine(ctx *gin.Context) {
	var req medicine.UpsertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	m, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Unable to create medicine")
		return
	}

	h.alertIfLow(ctx, m)

	ctx.JSON(http.StatusCreated, m)
}

func (h *MedicinesHandler) UpdateMedicine(ctx *gin.Context) {
	var req medicine.UpsertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	m, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, medicine.ErrNotFound) {
			RespondNotFound(ctx, "Medicine not found")
			return
		}

		RespondInternal(ctx, "Unable to update medicine")
		return
	}

	h.alertIfLow(ctx, m)

	ctx.JSON(http.StatusOK, m)
}

func (h *MedicinesHandler) DeleteMedicine(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, medicine.ErrNotFound) {
			RespondNotFound(ctx, "Medicine not found")
			return
		}

		RespondInternal(ctx, "Unable to delete medicine")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Medicine deleted successfully"})
}

func (h *MedicinesHandler) alertIfLow(ctx *gin.Context, m medicine.Medicine) {
	if h.alerter == nil {
		return
	}

	reqID, _ := ctx.Get(middlewares.CtxRequestID)
	reqIDStr, _ := reqID.(string)

	h.alerter.AlertIfLow(ctx.Request.Context(), m, reqIDStr)
}
