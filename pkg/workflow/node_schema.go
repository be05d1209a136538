package workflow

import "context"

func runReadSchemas(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	for _, table := range s.TablesInDataset {
		t, err := d.Warehouse.GetSchema(ctx, s.SelectedDataset, table)
		if err != nil {
			s.fail(CodeTableNotFound, err)
			return NodeError, nil
		}
		s.TableSchemas[table] = t.Fields
	}
	return NodeGenerateQueries, nil
}
