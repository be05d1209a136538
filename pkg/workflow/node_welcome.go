package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

// maxSelectDatasetAttempts bounds the re-ask loop in select_dataset
// before the session gives up with DATASET_NOT_FOUND.
const maxSelectDatasetAttempts = 3

func runWelcome(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	datasets, err := d.Warehouse.ListDatasets(ctx)
	if err != nil {
		s.fail(CodeWarehouseUnavailable, err)
		return NodeError, nil
	}

	names := make([]string, len(datasets))
	for i, ds := range datasets {
		names[i] = ds.Name
	}
	s.AvailableDatasets = names
	return NodeSelectDataset, nil
}

func runSelectDataset(ctx context.Context, s *AnalysisState, _ *Deps, in InputProvider) (string, error) {
	for attempt := 0; attempt < maxSelectDatasetAttempts; attempt++ {
		idx, err := in.SelectDataset(ctx, s.AvailableDatasets)
		if err != nil {
			s.fail(CodeInternal, err)
			return NodeError, nil
		}
		if idx >= 0 && idx < len(s.AvailableDatasets) {
			s.SelectedDataset = s.AvailableDatasets[idx]
			return NodeShowTables, nil
		}
	}
	s.fail(CodeDatasetNotFound, fmt.Errorf("no valid dataset selected after %d attempts", maxSelectDatasetAttempts))
	return NodeError, nil
}

func runShowTables(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	tables, err := d.Warehouse.ListTables(ctx, s.SelectedDataset)
	if err != nil {
		code := CodeWarehouseUnavailable
		if errors.Is(err, warehouse.ErrDatasetNotFound) {
			code = CodeDatasetNotFound
		}
		s.fail(code, err)
		return NodeError, nil
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	s.TablesInDataset = names
	return NodeGetTask, nil
}
