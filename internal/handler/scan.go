package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"canteen/internal/config"
	"canteen/internal/scan"
)

// PostScan ingests a badge scan from an authenticated device. The response
// status depends on the mode: attendance and pre-cutoff canteen scans answer
// 201, post-cutoff canteen scans 200.
func (h *Handler) PostScan(c *gin.Context) {
	var req struct {
		SubjectID string `json:"subjectId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SubjectID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subjectId required"})
		return
	}
	subjectID := strings.TrimSpace(req.SubjectID)
	ip := c.ClientIP()

	if h.cfg.Mode == config.ModeAttendance {
		entry, err := h.scans.RecordAttendance(c.Request.Context(), subjectID, ip)
		if err != nil {
			h.scanError(c, err)
			return
		}
		scansTotal.WithLabelValues(h.cfg.Mode, entry.Status).Inc()
		c.JSON(http.StatusCreated, gin.H{"message": "Attendance recorded", "logId": entry.ID})
		return
	}

	res, err := h.scans.RecordCanteen(c.Request.Context(), subjectID, ip)
	if err != nil {
		h.scanError(c, err)
		return
	}
	scansTotal.WithLabelValues(h.cfg.Mode, res.Status).Inc()
	status := http.StatusCreated
	if res.Status == scan.StatusTaken {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"message": "Scan recorded", "status": res.Status, "recordId": res.RecordID})
}

func (h *Handler) scanError(c *gin.Context, err error) {
	if errors.Is(err, scan.ErrSubjectNotFound) {
		scansTotal.WithLabelValues(h.cfg.Mode, "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}
	internalError(c, "record scan", err)
}

// GetScan lists logged scans for the dashboard, filtered and paginated.
func (h *Handler) GetScan(c *gin.Context) {
	f := scan.Filter{
		Date:      c.Query("date"),
		SubjectID: c.Query("subjectId"),
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", scan.DefaultLimit),
	}
	f = f.Normalize()

	var (
		logs  any
		total int
		err   error
	)
	if h.cfg.Mode == config.ModeAttendance {
		logs, total, err = h.scans.Logs(c.Request.Context(), f)
	} else {
		logs, total, err = h.scans.Records(c.Request.Context(), f)
	}
	if err != nil {
		internalError(c, "list scans", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total, "page": f.Page, "limit": f.Limit})
}

// StatsToday returns the dashboard counters.
func (h *Handler) StatsToday(c *gin.Context) {
	total, err := h.subjects.Count(c.Request.Context())
	if err != nil {
		internalError(c, "count subjects", err)
		return
	}
	scans, present, err := h.scans.TodayCounts(c.Request.Context())
	if err != nil {
		internalError(c, "today counts", err)
		return
	}
	absent := total - present
	if absent < 0 {
		absent = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"totalSubjects": total,
		"presentToday":  present,
		"todayScans":    scans,
		"absentToday":   absent,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
