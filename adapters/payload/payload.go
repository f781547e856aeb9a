// Package payload reads and writes the insight payload delivered by the
// statistics backend: a JSON object mapping metric names to metrics.
package payload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sliceinsight/domain/insight"
	"sliceinsight/internal"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Decode reads a {metricName: InsightMetric} object. Metrics come back in
// document order; the first one is the metric being analyzed.
func Decode(r io.Reader) ([]insight.InsightMetric, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("payload must be a JSON object keyed by metric name, got %v", tok)
	}

	var metrics []insight.InsightMetric
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read metric name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected metric name token %v", tok)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("metric %q appears twice in payload", name)
		}
		seen[name] = struct{}{}

		var metric insight.InsightMetric
		if err := dec.Decode(&metric); err != nil {
			return nil, fmt.Errorf("failed to decode metric %q: %w", name, err)
		}
		if metric.Name == "" {
			metric.Name = name
		}
		if err := Validate(&metric); err != nil {
			return nil, fmt.Errorf("metric %q: %w", name, err)
		}
		metrics = append(metrics, metric)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to close payload: %w", err)
	}
	return metrics, nil
}

// Validate checks the structural constraints of one metric and its slices.
// Referential integrity of the top-driver keys is left to the summarizer.
func Validate(metric *insight.InsightMetric) error {
	if err := validate.Struct(metric); err != nil {
		return fmt.Errorf("invalid metric: %w", err)
	}
	for _, info := range metric.DimensionSliceInfo.Entries() {
		if err := validate.Struct(info); err != nil {
			return fmt.Errorf("invalid slice %q: %w", info.SerializedKey, err)
		}
	}
	return nil
}

// Encode writes metrics as a payload object in slice order.
func Encode(w io.Writer, metrics []insight.InsightMetric) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range metrics {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(metrics[i].Name)
		if err != nil {
			return err
		}
		body, err := json.Marshal(&metrics[i])
		if err != nil {
			return fmt.Errorf("failed to encode metric %q: %w", metrics[i].Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// FileSource loads the payload from a JSON file on every call
type FileSource struct {
	path   string
	logger *internal.Logger
}

// NewFileSource creates a source reading path
func NewFileSource(path string, logger *internal.Logger) *FileSource {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FileSource{path: path, logger: logger.WithPrefix("payload")}
}

// LoadMetrics implements ports.MetricSource
func (s *FileSource) LoadMetrics(ctx context.Context) ([]insight.InsightMetric, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload file: %w", err)
	}
	defer f.Close()

	metrics, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Info("loaded %d metrics from %s", len(metrics), s.path)
	return metrics, nil
}
