package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
	"github.com/ptuchik/billing/internal/shared/utils"
)

// SweepHandler runs lifecycle sweeps on demand, e.g. to replay a day the
// scheduler missed.
type SweepHandler struct {
	sweeps map[string]SweepRunner
	now    func() time.Time
	logger logger.Interface
}

// NewSweepHandler takes the runners by kind: "renew", "expire", "remind".
func NewSweepHandler(sweeps map[string]SweepRunner, logger logger.Interface) *SweepHandler {
	return &SweepHandler{
		sweeps: sweeps,
		now:    biztime.NowUTC,
		logger: logger,
	}
}

// RunSweep godoc
// @Summary Run a lifecycle sweep
// @Tags Admin
// @Produce json
// @Param kind path string true "renew|expire|remind"
// @Param date query string false "Business date YYYY-MM-DD, default today"
// @Success 200 {object} utils.APIResponse{data=dto.SweepResult}
// @Router /admin/sweeps/{kind} [post]
func (h *SweepHandler) RunSweep(c *gin.Context) {
	kind := c.Param("kind")
	sweep, ok := h.sweeps[kind]
	if !ok || sweep == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "unknown sweep "+kind)
		return
	}

	date := h.now()
	if v := c.Query("date"); v != "" {
		parsed, err := biztime.ParseDateInBizTimezone(v)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	result, err := sweep.Execute(c.Request.Context(), date)
	if err != nil {
		h.logger.Errorw("sweep failed", "error", err, "kind", kind, "date", date)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("sweep finished", "kind", kind, "processed", result.Processed, "failed", result.Failed)
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
