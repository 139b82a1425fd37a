package ledger

import "context"

// Calculator aggregates hours and costs for a project and compares them
// against its budgets.
type Calculator struct {
	repo Repository
}

func NewCalculator(repo Repository) *Calculator {
	return &Calculator{repo: repo}
}

func (c *Calculator) ComputeVariance(ctx context.Context, projectID int) (*KPI, error) {
	project, err := c.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	totalHours, err := c.repo.SumTimeLogHours(ctx, projectID)
	if err != nil {
		return nil, err
	}
	totalCost, err := c.repo.SumCostAmounts(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &KPI{
		ProjectID:     projectID,
		TotalHours:    totalHours,
		TotalCost:     totalCost,
		BudgetHours:   project.BudgetHours,
		BudgetCost:    project.BudgetCost,
		HoursVariance: totalHours - project.BudgetHours,
		CostVariance:  totalCost - project.BudgetCost,
	}, nil
}
