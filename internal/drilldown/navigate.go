package drilldown

import (
	"sliceinsight/domain/core"
)

// ResolvePath walks keyPath from the forest root through each row's children
// and returns the terminal row. onRoot, when set, runs on the top-level row
// before its children are consulted.
func (f *Forest) ResolvePath(keyPath []string, onRoot func(*RowStatus)) (*RowStatus, error) {
	if len(keyPath) == 0 {
		return nil, core.NewUnresolvedPathError(keyPath, -1)
	}
	row, ok := f.Get(keyPath[0])
	if !ok {
		return nil, core.NewUnresolvedPathError(keyPath, 0)
	}
	if onRoot != nil {
		onRoot(row)
	}
	for i := 1; i < len(keyPath); i++ {
		child, ok := row.Child(keyPath[i])
		if !ok {
			return nil, core.NewUnresolvedPathError(keyPath, i)
		}
		row = child
	}
	return row, nil
}

// ToggleRow flips IsExpanded on the row at keyPath. Nothing is flipped when a
// segment does not resolve.
func (f *Forest) ToggleRow(keyPath []string, onRoot func(*RowStatus)) (*RowStatus, error) {
	row, err := f.ResolvePath(keyPath, onRoot)
	if err != nil {
		return nil, err
	}
	row.IsExpanded = !row.IsExpanded
	return row, nil
}
