package translate

import (
	"net/http"
	"strconv"

	apperrors "tonetranslate-go/internal/errors"
	hcommon "tonetranslate-go/internal/handlers/common"
	"tonetranslate-go/internal/usage"

	"github.com/gin-gonic/gin"
)

const (
	defaultUsageDays = 7
	maxUsageDays     = 90
)

type usageResponse struct {
	Success       bool                            `json:"success"`
	TotalRequests int64                           `json:"total_requests"`
	LiveRequests  int64                           `json:"live_requests"`
	DemoResponses int64                           `json:"demo_responses"`
	Providers     map[string]*usage.ProviderStats `json:"providers"`
	Tones         map[string]*usage.ToneStats     `json:"tones"`
	Daily         map[string]*usage.DailyStats    `json:"daily"`
}

// Usage handles GET /api/usage. ?days=N limits the daily section (default 7).
func (h *Handler) Usage(c *gin.Context) {
	if h.tracker == nil {
		hcommon.AbortWithAPIError(c, apperrors.New(http.StatusServiceUnavailable, "usage_unavailable", "server_error",
			"Usage tracking not available"))
		return
	}
	days := defaultUsageDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxUsageDays {
			hcommon.BadRequest(c, "days must be between 1 and "+strconv.Itoa(maxUsageDays))
			return
		}
		days = n
	}

	stats := h.tracker.GetStats()
	daily := make(map[string]*usage.DailyStats, days)
	for _, day := range stats.RecentDays(days) {
		daily[day] = stats.Daily[day]
	}
	c.JSON(http.StatusOK, usageResponse{
		Success:       true,
		TotalRequests: stats.TotalRequests,
		LiveRequests:  stats.LiveRequests,
		DemoResponses: stats.DemoResponses,
		Providers:     stats.Providers,
		Tones:         stats.Tones,
		Daily:         daily,
	})
}
