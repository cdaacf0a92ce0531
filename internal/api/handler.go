package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"indexpulse/internal/domain/dto"
	"indexpulse/internal/domain/models"
	"indexpulse/internal/service"
)

// Handler provides HTTP handlers for the return metrics endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Interact with the service layer for data access
//   - Translate service results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc service.MetricsService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.MetricsService): Service dependency used for querying metrics.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc service.MetricsService) *Handler {
	return &Handler{svc: svc}
}

// GetMetrics handles GET /api/v1/metrics requests.
//
// Query Parameters:
//   - ticker (string, required): Security ticker symbol (e.g., "INFY.NS").
//
// Responses:
//   - 200 OK: Returns MetricsResponse with one row per calendar date.
//   - 400 Bad Request: Missing ticker parameter.
//   - 404 Not Found: No rows for the given ticker.
//   - 500 Internal Server Error: Failure reading the metrics artifact.
func (h *Handler) GetMetrics(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}

	rows, err := h.svc.GetSecurityMetrics(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch metrics", err))
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := dto.MetricsResponse{
		Ticker: rows[0].Ticker,
		Rows:   make([]dto.MetricRowResponse, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, toMetricRowResponse(row))
	}

	c.JSON(http.StatusOK, resp)
}

// GetAverages handles GET /api/v1/averages requests.
//
// Responses:
//   - 200 OK: Returns the list of daily cross-sectional average rows.
//   - 500 Internal Server Error: Failure reading the averages artifact.
func (h *Handler) GetAverages(c *gin.Context) {
	rows, err := h.svc.GetAverages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch averages", err))
		return
	}

	resp := make([]dto.AverageRowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, dto.AverageRowResponse{
			Date:       row.Date.Format("2006-01-02"),
			OneMonth:   row.OneMonth,
			ThreeMonth: row.ThreeMonth,
			OneYear:    row.OneYear,
			YTD:        row.YTD,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func toMetricRowResponse(row models.MetricRow) dto.MetricRowResponse {
	return dto.MetricRowResponse{
		AccountName: row.AccountName,
		Currency:    row.Currency,
		Exchange:    row.Exchange,
		Ticker:      row.Ticker,
		Date:        row.Date.Format("2006-01-02"),
		EndPrice:    row.EndPrice,
		OneMonth:    row.OneMonth,
		ThreeMonth:  row.ThreeMonth,
		OneYear:     row.OneYear,
		YTD:         row.YTD,
		UsdEuro:     row.UsdEuro,
		UsdInr:      row.UsdInr,
		USDEnd:      row.USDEnd,
		USDBeg:      row.USDBeg,
	}
}
