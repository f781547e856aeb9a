// Package postgres stores and loads insight payloads in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"sliceinsight/domain/core"
	"sliceinsight/domain/insight"
	"sliceinsight/internal"
	"sliceinsight/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency bounds parallel slice queries per report
const DefaultLoadConcurrency = 4

type metricRow struct {
	ReportID           core.ReportID  `db:"report_id"`
	Position           int            `db:"position"`
	Name               string         `db:"name"`
	Dimensions         sql.NullString `db:"dimensions"`
	TotalSegments      int            `db:"total_segments"`
	BaselineValue      float64        `db:"baseline_value"`
	ComparisonValue    float64        `db:"comparison_value"`
	BaselineNumRows    int            `db:"baseline_num_rows"`
	ComparisonNumRows  int            `db:"comparison_num_rows"`
	BaselineFrom       string         `db:"baseline_from"`
	BaselineTo         string         `db:"baseline_to"`
	ComparisonFrom     string         `db:"comparison_from"`
	ComparisonTo       string         `db:"comparison_to"`
	TopDriverSliceKeys pq.StringArray `db:"top_driver_slice_keys"`
}

type sliceRow struct {
	ReportID        core.ReportID   `db:"report_id"`
	MetricName      string          `db:"metric_name"`
	Position        int             `db:"position"`
	SerializedKey   string          `db:"serialized_key"`
	SliceKey        string          `db:"slice_key"`
	BaselineCount   int             `db:"baseline_count"`
	BaselineSize    float64         `db:"baseline_size"`
	BaselineValue   float64         `db:"baseline_value"`
	ComparisonCount int             `db:"comparison_count"`
	ComparisonSize  float64         `db:"comparison_size"`
	ComparisonValue float64         `db:"comparison_value"`
	Impact          float64         `db:"impact"`
	ChangeDev       float64         `db:"change_dev"`
	Confidence      sql.NullFloat64 `db:"confidence"`
}

// MetricRepository implements ports.MetricSource over the insight_metrics
// and insight_slices tables
type MetricRepository struct {
	db          *sqlx.DB
	reportID    core.ReportID
	concurrency int
	logger      *internal.Logger
}

// NewMetricRepository creates a repository reading reportID
func NewMetricRepository(db *sqlx.DB, reportID core.ReportID, logger *internal.Logger) *MetricRepository {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MetricRepository{
		db:          db,
		reportID:    reportID,
		concurrency: DefaultLoadConcurrency,
		logger:      logger.WithPrefix("postgres"),
	}
}

// LoadMetrics implements ports.MetricSource. Slices of each metric are
// fetched concurrently; metrics keep their stored position.
func (r *MetricRepository) LoadMetrics(ctx context.Context) ([]insight.InsightMetric, error) {
	query := `SELECT
		report_id, position, name, dimensions, total_segments, baseline_value, comparison_value,
		baseline_num_rows, comparison_num_rows, baseline_from, baseline_to, comparison_from, comparison_to,
		top_driver_slice_keys
	FROM insight_metrics WHERE report_id = $1 ORDER BY position`

	var rows []metricRow
	if err := r.db.SelectContext(ctx, &rows, query, r.reportID); err != nil {
		return nil, errors.DatabaseError("failed to query insight metrics", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: report %s", core.ErrNoMetrics, r.reportID)
	}

	metrics := make([]insight.InsightMetric, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			slices, err := r.loadSlices(gctx, row.Name)
			if err != nil {
				return err
			}
			metric, err := assembleMetric(row, slices)
			if err != nil {
				return err
			}
			metrics[i] = metric
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("loaded %d metrics for report %s", len(metrics), r.reportID)
	return metrics, nil
}

func (r *MetricRepository) loadSlices(ctx context.Context, metricName string) ([]sliceRow, error) {
	query := `SELECT
		report_id, metric_name, position, serialized_key, slice_key,
		baseline_count, baseline_size, baseline_value,
		comparison_count, comparison_size, comparison_value,
		impact, change_dev, confidence
	FROM insight_slices WHERE report_id = $1 AND metric_name = $2 ORDER BY position`

	var rows []sliceRow
	if err := r.db.SelectContext(ctx, &rows, query, r.reportID, metricName); err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to query slices of %s", metricName), err)
	}
	r.logger.Debug("fetched %d slices for %s", len(rows), metricName)
	return rows, nil
}

// SaveMetrics stores metrics as a new report and returns its ID
func (r *MetricRepository) SaveMetrics(ctx context.Context, metrics []insight.InsightMetric) (core.ReportID, error) {
	if len(metrics) == 0 {
		return "", fmt.Errorf("%w: nothing to save", core.ErrNoMetrics)
	}
	reportID := core.NewReportID()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO insight_reports (id) VALUES ($1)`, reportID); err != nil {
		return "", errors.DatabaseError("failed to create report", err)
	}

	for i := range metrics {
		mrow, srows, err := disassembleMetric(reportID, i, &metrics[i])
		if err != nil {
			return "", err
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO insight_metrics (
			report_id, position, name, dimensions, total_segments, baseline_value, comparison_value,
			baseline_num_rows, comparison_num_rows, baseline_from, baseline_to, comparison_from, comparison_to,
			top_driver_slice_keys
		) VALUES (
			:report_id, :position, :name, :dimensions, :total_segments, :baseline_value, :comparison_value,
			:baseline_num_rows, :comparison_num_rows, :baseline_from, :baseline_to, :comparison_from, :comparison_to,
			:top_driver_slice_keys
		)`, mrow)
		if err != nil {
			return "", errors.DatabaseError(fmt.Sprintf("failed to save metric %s", mrow.Name), err)
		}
		if len(srows) == 0 {
			continue
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO insight_slices (
			report_id, metric_name, position, serialized_key, slice_key,
			baseline_count, baseline_size, baseline_value,
			comparison_count, comparison_size, comparison_value,
			impact, change_dev, confidence
		) VALUES (
			:report_id, :metric_name, :position, :serialized_key, :slice_key,
			:baseline_count, :baseline_size, :baseline_value,
			:comparison_count, :comparison_size, :comparison_value,
			:impact, :change_dev, :confidence
		)`, srows)
		if err != nil {
			return "", errors.DatabaseError(fmt.Sprintf("failed to save slices of %s", mrow.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.DatabaseError("failed to commit report", err)
	}
	r.logger.Info("saved report %s with %d metrics", reportID, len(metrics))
	return reportID, nil
}

// assembleMetric rebuilds one metric from its stored rows. Slices keep
// their stored position, which is the catalog order.
func assembleMetric(row metricRow, slices []sliceRow) (insight.InsightMetric, error) {
	metric := insight.InsightMetric{
		Name:                row.Name,
		TotalSegments:       row.TotalSegments,
		BaselineValue:       row.BaselineValue,
		ComparisonValue:     row.ComparisonValue,
		BaselineNumRows:     row.BaselineNumRows,
		ComparisonNumRows:   row.ComparisonNumRows,
		BaselineDateRange:   insight.DateRange{From: row.BaselineFrom, To: row.BaselineTo},
		ComparisonDateRange: insight.DateRange{From: row.ComparisonFrom, To: row.ComparisonTo},
		TopDriverSliceKeys:  []string(row.TopDriverSliceKeys),
	}
	if metric.TopDriverSliceKeys == nil {
		metric.TopDriverSliceKeys = []string{}
	}
	if row.Dimensions.Valid {
		if err := json.Unmarshal([]byte(row.Dimensions.String), &metric.Dimensions); err != nil {
			return insight.InsightMetric{}, fmt.Errorf("failed to unmarshal dimensions of %s: %w", row.Name, err)
		}
	}

	for _, s := range slices {
		var key insight.SliceKey
		dec := json.NewDecoder(strings.NewReader(s.SliceKey))
		dec.UseNumber()
		if err := dec.Decode(&key); err != nil {
			return insight.InsightMetric{}, fmt.Errorf("failed to unmarshal key of slice %q: %w", s.SerializedKey, err)
		}
		info := insight.DimensionSliceInfo{
			Key: key,
			BaselineValue: insight.PeriodValue{
				SliceCount: s.BaselineCount,
				SliceSize:  s.BaselineSize,
				SliceValue: s.BaselineValue,
			},
			ComparisonValue: insight.PeriodValue{
				SliceCount: s.ComparisonCount,
				SliceSize:  s.ComparisonSize,
				SliceValue: s.ComparisonValue,
			},
			Impact:     s.Impact,
			ChangeDev:  s.ChangeDev,
			Confidence: s.Confidence.Float64,
		}
		if err := metric.DimensionSliceInfo.Add(s.SerializedKey, info); err != nil {
			return insight.InsightMetric{}, fmt.Errorf("metric %s: %w", row.Name, err)
		}
	}
	return metric, nil
}

func disassembleMetric(reportID core.ReportID, position int, m *insight.InsightMetric) (metricRow, []sliceRow, error) {
	row := metricRow{
		ReportID:           reportID,
		Position:           position,
		Name:               m.Name,
		TotalSegments:      m.TotalSegments,
		BaselineValue:      m.BaselineValue,
		ComparisonValue:    m.ComparisonValue,
		BaselineNumRows:    m.BaselineNumRows,
		ComparisonNumRows:  m.ComparisonNumRows,
		BaselineFrom:       m.BaselineDateRange.From,
		BaselineTo:         m.BaselineDateRange.To,
		ComparisonFrom:     m.ComparisonDateRange.From,
		ComparisonTo:       m.ComparisonDateRange.To,
		TopDriverSliceKeys: pq.StringArray(m.TopDriverSliceKeys),
	}
	if row.TopDriverSliceKeys == nil {
		row.TopDriverSliceKeys = pq.StringArray{}
	}
	if m.Dimensions != nil {
		dims, err := json.Marshal(m.Dimensions)
		if err != nil {
			return metricRow{}, nil, fmt.Errorf("failed to marshal dimensions of %s: %w", m.Name, err)
		}
		row.Dimensions = sql.NullString{String: string(dims), Valid: true}
	}

	entries := m.DimensionSliceInfo.Entries()
	slices := make([]sliceRow, len(entries))
	for i, info := range entries {
		key, err := json.Marshal(info.Key)
		if err != nil {
			return metricRow{}, nil, fmt.Errorf("failed to marshal key of slice %q: %w", info.SerializedKey, err)
		}
		slices[i] = sliceRow{
			ReportID:        reportID,
			MetricName:      m.Name,
			Position:        i,
			SerializedKey:   info.SerializedKey,
			SliceKey:        string(key),
			BaselineCount:   info.BaselineValue.SliceCount,
			BaselineSize:    info.BaselineValue.SliceSize,
			BaselineValue:   info.BaselineValue.SliceValue,
			ComparisonCount: info.ComparisonValue.SliceCount,
			ComparisonSize:  info.ComparisonValue.SliceSize,
			ComparisonValue: info.ComparisonValue.SliceValue,
			Impact:          info.Impact,
			ChangeDev:       info.ChangeDev,
			Confidence:      sql.NullFloat64{Float64: info.Confidence, Valid: true},
		}
	}
	return row, slices, nil
}
