package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/cache"
	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/domain/record"
	"github.com/davaardana/dacoklinik-web/internal/observability"
	"github.com/gin-gonic/gin"
)

const summaryCacheKey = "dashboard:summary"

type SummaryReader interface {
	Summary(ctx context.Context) (record.Summary, error)
}

type DashboardHandler struct {
	repo  SummaryReader
	cache *cache.Cache
	prom  *observability.Prom
}

func NewDashboardHandler(repo SummaryReader, c *cache.Cache, prom *observability.Prom) *DashboardHandler {
	return &DashboardHandler{repo: repo, cache: c, prom: prom}
}

type summaryResponse struct {
	TotalPatients int       `json:"totalPatients"`
	TodayCheckups int       `json:"todayCheckups"`
	ChartData     chartData `json:"chartData"`
}

type chartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Summary serves the dashboard aggregate, cached between record writes.
func (h *DashboardHandler) Summary(ctx *gin.Context) {
	if h.cache != nil {
		if v, ok := h.cache.Get(summaryCacheKey); ok {
			if resp, ok := v.(summaryResponse); ok {
				ctx.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	var s record.Summary
	var err error

	if h.prom != nil {
		err = h.prom.ObserveDB("dashboard_summary", func() error {
			s, err = h.repo.Summary(cctx)
			return err
		})
	} else {
		s, err = h.repo.Summary(cctx)
	}

	if err != nil {
		RespondInternal(ctx, "Unable to load dashboard data")
		return
	}

	resp := summaryResponse{
		TotalPatients: s.TotalPatients,
		TodayCheckups: s.TodayCheckups,
		ChartData: chartData{
			Labels: []string{"Blood Pressure", "SpO2", "Nadi", "Respirasi"},
			Values: []float64{
				s.BloodPressureAvg,
				s.SpO2Avg,
				s.PulseAvg,
				s.RespirationAvg,
			},
		},
	}

	if h.cache != nil {
		h.cache.Set(summaryCacheKey, resp)
	}

	ctx.JSON(http.StatusOK, resp)
}
