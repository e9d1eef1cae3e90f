package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"canteen/internal/report"
)

// ReportMonthly renders the per-subject order/collection summary for a month
// (?month=YYYY-MM, default current) as a PDF attachment.
func (h *Handler) ReportMonthly(c *gin.Context) {
	now := h.now()
	year, month := now.Year(), now.Month()
	if m := c.Query("month"); m != "" {
		parsed, err := time.Parse("2006-01", m)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}
	label := fmt.Sprintf("%04d-%02d", year, int(month))

	rows, err := h.scans.MonthlySummary(c.Request.Context(), year, month)
	if err != nil {
		internalError(c, "monthly summary", err)
		return
	}
	pdf, err := report.Monthly(label, rows)
	if err != nil {
		internalError(c, "render report", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="canteen-report-%s.pdf"`, label))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
