package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"sliceinsight/adapters/excel"
	"sliceinsight/adapters/report"
	"sliceinsight/app"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleExportCSV(c *gin.Context) {
	s.handleExport(c, excel.FormatCSV)
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	s.handleExport(c, excel.FormatXLSX)
}

// handleExport streams the top-segment table, or a dimension's table when
// ?dimension= is set
func (s *Server) handleExport(c *gin.Context, format string) {
	dimension := c.Query("dimension")

	s.mu.Lock()
	table, err := s.service.Table(dimension)
	s.mu.Unlock()
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.Write(&buf, format, table); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, exportName(dimension), format))
	c.Data(http.StatusOK, excel.ContentType(format), buf.Bytes())
}

func (s *Server) handleReport(c *gin.Context) {
	dimension := c.Query("dimension")

	s.mu.Lock()
	table, err := s.service.Table(dimension)
	view := s.service.View()
	s.mu.Unlock()
	if err != nil {
		s.respondError(c, err)
		return
	}

	title := "Top segments"
	if dimension != "" {
		title = "Segments by " + dimension
	}
	if view.Overview != nil {
		title = view.Overview.Metric.Name + ": " + title
	}
	doc := report.Report{Title: title, Summary: reportSummary(view), Table: table}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc.HTML())
}

func exportName(dimension string) string {
	if dimension == "" {
		return "top_segments"
	}
	return "segments_" + dimension
}

func reportSummary(view *app.View) []string {
	lines := []string{fmt.Sprintf("Mode: %s, sensitivity: %s", view.Mode, view.Sensitivity)}
	o := view.Overview
	if o == nil {
		return lines
	}
	lines = append(lines,
		fmt.Sprintf("%s moved from %g to %g (%+.1f%%)", o.Metric.Name, o.Metric.BaselineValue, o.Metric.ComparisonValue, o.Metric.ChangePct),
		fmt.Sprintf("%d of %d segments surfaced, total impact %g", o.SurfacedSegments, o.TotalSegments, o.SurfacedImpact),
	)
	for _, m := range o.SupportingMetrics {
		lines = append(lines, fmt.Sprintf("%s: %g to %g", m.Name, m.BaselineValue, m.ComparisonValue))
	}
	return lines
}
