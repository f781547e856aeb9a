package app

import (
	"fmt"

	"sliceinsight/domain/core"
	"sliceinsight/domain/insight"
	"sliceinsight/internal"
	"sliceinsight/internal/drilldown"
	"sliceinsight/internal/errors"
)

// ComparisonInsightConfig holds the service's starting parameters
type ComparisonInsightConfig struct {
	Params             drilldown.Params
	LazyMaxChildren    int
	CandidateCacheSize int
}

// DefaultComparisonInsightConfig returns the dashboard's initial state
func DefaultComparisonInsightConfig() ComparisonInsightConfig {
	return ComparisonInsightConfig{
		Params:             drilldown.DefaultParams(),
		LazyMaxChildren:    drilldown.DefaultLazyMaxChildren,
		CandidateCacheSize: drilldown.DefaultCandidateCacheSize,
	}
}

// ComparisonInsightService owns the row forests for one analyzed metric and
// applies user interactions to them. Rebuilds replace the forest wholesale;
// a failed rebuild leaves the previous forest in place.
//
// The service is not safe for concurrent use; callers serialize mutations.
type ComparisonInsightService struct {
	config ComparisonInsightConfig
	logger *internal.Logger

	snapshotID  core.SnapshotID
	analyzing   *insight.InsightMetric
	related     []*insight.InsightMetric
	params      drilldown.Params
	summary     *drilldown.Summary
	byDimension *drilldown.DimensionViews
	expander    *drilldown.Expander
	selectedKey string
	isLoading   bool
}

// NewComparisonInsightService creates a service waiting for its first payload
func NewComparisonInsightService(config ComparisonInsightConfig, logger *internal.Logger) *ComparisonInsightService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ComparisonInsightService{
		config:    config,
		logger:    logger.WithPrefix("insight"),
		params:    config.Params,
		isLoading: true,
	}
}

// SetLoadingStatus flags whether a payload is being fetched
func (s *ComparisonInsightService) SetLoadingStatus(loading bool) {
	s.isLoading = loading
}

// IsLoading reports whether a payload is being fetched
func (s *ComparisonInsightService) IsLoading() bool {
	return s.isLoading
}

// Params returns the parameters of the current forest
func (s *ComparisonInsightService) Params() drilldown.Params {
	return s.params
}

// UpdateMetrics ingests a new payload: the first metric is analyzed, the rest
// are related. Both the top-segment forest and the per-dimension views are
// rebuilt from scratch.
func (s *ComparisonInsightService) UpdateMetrics(metrics []insight.InsightMetric) error {
	defer func() { s.isLoading = false }()

	if len(metrics) == 0 {
		return errors.Wrap(core.ErrNoMetrics, "cannot ingest payload")
	}

	analyzing := metrics[0]
	summary, err := drilldown.Summarize(&analyzing, s.params)
	if err != nil {
		s.logger.Error("rejecting payload for %s: %v", analyzing.Name, err)
		return errors.Wrapf(err, "failed to build rows for %s", analyzing.Name)
	}

	expander, err := drilldown.NewExpander(&analyzing.DimensionSliceInfo, s.config.LazyMaxChildren, s.config.CandidateCacheSize)
	if err != nil {
		return errors.Wrap(err, "failed to create lazy expander")
	}

	related := make([]*insight.InsightMetric, 0, len(metrics)-1)
	for i := 1; i < len(metrics); i++ {
		m := metrics[i]
		related = append(related, &m)
	}

	s.snapshotID = core.NewSnapshotID()
	s.analyzing = &analyzing
	s.related = related
	s.summary = summary
	s.byDimension = drilldown.BuildDimensionViews(&analyzing.DimensionSliceInfo)
	s.expander = expander
	if _, ok := analyzing.DimensionSliceInfo.Get(s.selectedKey); !ok {
		s.selectedKey = ""
	}

	s.logger.Info("snapshot %s: %s with %d slices, %d top rows, %d dimensions",
		s.snapshotID, analyzing.Name, analyzing.DimensionSliceInfo.Len(), summary.Forest.Len(), len(s.byDimension.Dimensions()))
	return nil
}

// SetMode switches the ranking mode. Grouping is switched back on.
func (s *ComparisonInsightService) SetMode(mode insight.Mode) error {
	if _, err := insight.ParseMode(string(mode)); err != nil {
		return errors.Wrap(err, "cannot set mode")
	}
	params := s.params
	params.Mode = mode
	params.GroupRows = true
	return s.rebuild(params)
}

// SetSensitivity switches the outlier threshold
func (s *ComparisonInsightService) SetSensitivity(sensitivity insight.Sensitivity) error {
	if _, err := insight.ParseSensitivity(string(sensitivity)); err != nil {
		return errors.Wrap(err, "cannot set sensitivity")
	}
	params := s.params
	params.Sensitivity = sensitivity
	return s.rebuild(params)
}

// ToggleGroupRows flips nesting of the top-segment rows
func (s *ComparisonInsightService) ToggleGroupRows() error {
	params := s.params
	params.GroupRows = !params.GroupRows
	return s.rebuild(params)
}

func (s *ComparisonInsightService) rebuild(params drilldown.Params) error {
	if s.analyzing == nil {
		s.params = params
		return nil
	}
	summary, err := drilldown.Summarize(s.analyzing, params)
	if err != nil {
		s.logger.Error("rebuild with %+v failed, keeping previous rows: %v", params, err)
		return errors.Wrap(err, "failed to rebuild rows")
	}
	s.params = params
	s.summary = summary
	s.logger.Debug("rebuilt %s: mode=%s sensitivity=%s group=%t rows=%d clusters=%d",
		s.analyzing.Name, params.Mode, params.Sensitivity, params.GroupRows, summary.Forest.Len(), summary.Clusters.Len())
	return nil
}

// ToggleRow flips the row at keyPath. With a dimension the path is resolved
// in that dimension's view, computing the first row's children on demand.
func (s *ComparisonInsightService) ToggleRow(keyPath []string, dimension string) (*drilldown.RowStatus, error) {
	if s.analyzing == nil {
		return nil, errors.NotReady("no metrics loaded")
	}

	if dimension == "" {
		row, err := s.summary.Forest.ToggleRow(keyPath, nil)
		if err != nil {
			s.logger.Warn("toggle %v: %v", keyPath, err)
			return nil, errors.Wrap(err, "cannot toggle row")
		}
		return row, nil
	}

	view, ok := s.byDimension.Get(dimension)
	if !ok {
		return nil, errors.Wrap(fmt.Errorf("%w: %q", core.ErrUnknownDimension, dimension), "cannot toggle row")
	}
	row, err := view.RowStatus.ToggleRow(keyPath, func(root *drilldown.RowStatus) {
		if s.expander.Expand(root, dimension) {
			s.logger.Debug("expanded %s in %s: %d children", root.SliceKey(), dimension, root.NumChildren())
		}
	})
	if err != nil {
		s.logger.Warn("toggle %v in %s: %v", keyPath, dimension, err)
		return nil, errors.Wrap(err, "cannot toggle row")
	}
	return row, nil
}

// SelectSliceForDetail marks a slice for the detail view
func (s *ComparisonInsightService) SelectSliceForDetail(key string) error {
	if s.analyzing == nil {
		return errors.NotReady("no metrics loaded")
	}
	if _, err := s.analyzing.DimensionSliceInfo.Lookup(key); err != nil {
		return errors.Wrap(err, "cannot select slice")
	}
	s.selectedKey = key
	return nil
}

// SelectedSlice returns the slice chosen for the detail view
func (s *ComparisonInsightService) SelectedSlice() (insight.DimensionSliceInfo, bool) {
	if s.selectedKey == "" {
		return insight.DimensionSliceInfo{}, false
	}
	return s.Slice(s.selectedKey)
}

// Slice returns the analyzed metric's slice stored under key
func (s *ComparisonInsightService) Slice(key string) (insight.DimensionSliceInfo, bool) {
	if s.analyzing == nil {
		return insight.DimensionSliceInfo{}, false
	}
	return s.analyzing.DimensionSliceInfo.Get(key)
}

// Table returns the export of the top-segment rows, or of one dimension's
// rows when dimension is set
func (s *ComparisonInsightService) Table(dimension string) (*drilldown.Table, error) {
	if s.analyzing == nil {
		return nil, errors.NotReady("no metrics loaded")
	}
	if dimension == "" {
		return s.summary.Table, nil
	}
	view, ok := s.byDimension.Get(dimension)
	if !ok {
		return nil, errors.Wrap(fmt.Errorf("%w: %q", core.ErrUnknownDimension, dimension), "cannot export rows")
	}
	return view.RowCSV, nil
}

// View is the state handed to the presentation layer
type View struct {
	SnapshotID                core.SnapshotID           `json:"snapshotId,omitempty"`
	IsLoading                 bool                      `json:"isLoading"`
	Mode                      insight.Mode              `json:"mode"`
	Sensitivity               insight.Sensitivity       `json:"sensitivity"`
	GroupRows                 bool                      `json:"groupRows"`
	Overview                  *Overview                 `json:"overview,omitempty"`
	TableRowStatus            *drilldown.Forest         `json:"tableRowStatus"`
	TableRowCSV               [][]string                `json:"tableRowCSV"`
	TableRowStatusByDimension *drilldown.DimensionViews `json:"tableRowStatusByDimension"`
	Clusters                  []ClusterGroup            `json:"clusters"`
	SelectedSliceKey          string                    `json:"selectedSliceKey,omitempty"`
}

// ClusterGroup is a set of overlapping slices shown as one row
type ClusterGroup struct {
	Representative string   `json:"representative"`
	Members        []string `json:"members"`
}

func clusterGroups(clusters *drilldown.Clusters) []ClusterGroup {
	groups := make([]ClusterGroup, 0, clusters.Len())
	for _, members := range clusters.Groups() {
		rep, _ := clusters.Representative(members[0])
		groups = append(groups, ClusterGroup{
			Representative: rep,
			Members:        append([]string(nil), members...),
		})
	}
	return groups
}

// View snapshots the current state. Forests are shared, not copied.
func (s *ComparisonInsightService) View() *View {
	v := &View{
		SnapshotID:       s.snapshotID,
		IsLoading:        s.isLoading,
		Mode:             s.params.Mode,
		Sensitivity:      s.params.Sensitivity,
		GroupRows:        s.params.GroupRows,
		SelectedSliceKey: s.selectedKey,
	}
	if s.analyzing == nil {
		v.TableRowStatus = drilldown.NewForest()
		v.TableRowCSV = (*drilldown.Table)(nil).Records()
		v.TableRowStatusByDimension = drilldown.NewDimensionViews()
		v.Clusters = []ClusterGroup{}
		return v
	}
	overview := BuildOverview(s.analyzing, s.related, s.summary.Forest.Keys())
	v.Overview = &overview
	v.TableRowStatus = s.summary.Forest
	v.TableRowCSV = s.summary.Table.Records()
	v.TableRowStatusByDimension = s.byDimension
	v.Clusters = clusterGroups(s.summary.Clusters)
	return v
}
