package ledger

import (
	"context"
	"math/rand"
	"time"
)

// Seed injects a small demo ledger: one project, two tasks, a handful of time
// logs and two costs. Returns the created project.
func (s *service) Seed(ctx context.Context) (*Project, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	project, err := s.CreateProject(ctx, &Project{
		Name:        "Demo Project",
		Client:      "Demo Client",
		StartDate:   monthStart,
		EndDate:     &today,
		BudgetHours: 120.0,
		BudgetCost:  15000.0,
		Description: "Project injected by /seed",
	})
	if err != nil {
		return nil, err
	}

	structural, err := s.CreateTask(ctx, &Task{
		ProjectID:    project.ID,
		Name:         "Structural work",
		PlannedHours: 60,
		PlannedCost:  8000,
	})
	if err != nil {
		return nil, err
	}
	finishing, err := s.CreateTask(ctx, &Task{
		ProjectID:    project.ID,
		Name:         "Finishing work",
		PlannedHours: 60,
		PlannedCost:  7000,
	})
	if err != nil {
		return nil, err
	}

	for i := 0; i < 3; i++ {
		if _, err := s.CreateTimeLog(ctx, &TimeLog{
			ProjectID: project.ID,
			TaskID:    structural.ID,
			WorkDate:  today,
			Hours:     float64(2 + rand.Intn(5)),
			Worker:    "Crew A",
		}); err != nil {
			return nil, err
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := s.CreateTimeLog(ctx, &TimeLog{
			ProjectID: project.ID,
			TaskID:    finishing.ID,
			WorkDate:  today,
			Hours:     float64(3 + rand.Intn(3)),
			Worker:    "Crew B",
		}); err != nil {
			return nil, err
		}
	}

	if _, err := s.CreateCost(ctx, &Cost{
		ProjectID: project.ID,
		TaskID:    structural.ID,
		CostDate:  today,
		Amount:    2500,
		Category:  "materials",
		Vendor:    "Brico",
		Note:      "Building materials",
	}); err != nil {
		return nil, err
	}
	if _, err := s.CreateCost(ctx, &Cost{
		ProjectID: project.ID,
		TaskID:    finishing.ID,
		CostDate:  today,
		Amount:    1800,
		Category:  "subcontracting",
		Vendor:    "Subcontractor X",
	}); err != nil {
		return nil, err
	}

	return project, nil
}
