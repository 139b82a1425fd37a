package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Repository owns persistence of the four entity kinds and checks foreign-key
// existence before insert. It does not verify that a TimeLog/Cost's task
// belongs to the stated project; both references are checked independently,
// project first.
type Repository interface {
	CreateProject(ctx context.Context, project *Project) (*Project, error)
	GetAllProjects(ctx context.Context) ([]Project, error)
	GetProjectByID(ctx context.Context, id int) (*Project, error)
	ProjectExists(ctx context.Context, id int) (bool, error)

	CreateTask(ctx context.Context, task *Task) (*Task, error)
	GetTasksByProject(ctx context.Context, projectID int) ([]Task, error)
	TaskExists(ctx context.Context, id int) (bool, error)

	CreateTimeLog(ctx context.Context, timeLog *TimeLog) (*TimeLog, error)
	GetTimeLogsByProject(ctx context.Context, projectID int) ([]TimeLog, error)

	CreateCost(ctx context.Context, cost *Cost) (*Cost, error)
	GetCostsByProject(ctx context.Context, projectID int) ([]Cost, error)

	SumTimeLogHours(ctx context.Context, projectID int) (float64, error)
	SumCostAmounts(ctx context.Context, projectID int) (float64, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateProject(ctx context.Context, project *Project) (*Project, error) {
	_, err := r.db.NewInsert().Model(project).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *repository) GetAllProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := r.db.NewSelect().Model(&projects).Order("id").Scan(ctx)
	return projects, err
}

func (r *repository) GetProjectByID(ctx context.Context, id int) (*Project, error) {
	project := new(Project)
	err := r.db.NewSelect().Model(project).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (r *repository) ProjectExists(ctx context.Context, id int) (bool, error) {
	return r.db.NewSelect().Model((*Project)(nil)).Where("id = ?", id).Exists(ctx)
}

func (r *repository) CreateTask(ctx context.Context, task *Task) (*Task, error) {
	exists, err := r.ProjectExists(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRelatedProjectNotFound
	}

	_, err = r.db.NewInsert().Model(task).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *repository) GetTasksByProject(ctx context.Context, projectID int) ([]Task, error) {
	var tasks []Task
	err := r.db.NewSelect().Model(&tasks).Where("project_id = ?", projectID).Order("id").Scan(ctx)
	return tasks, err
}

func (r *repository) TaskExists(ctx context.Context, id int) (bool, error) {
	return r.db.NewSelect().Model((*Task)(nil)).Where("id = ?", id).Exists(ctx)
}

func (r *repository) CreateTimeLog(ctx context.Context, timeLog *TimeLog) (*TimeLog, error) {
	if err := r.checkReferences(ctx, timeLog.ProjectID, timeLog.TaskID); err != nil {
		return nil, err
	}

	timeLog.CreatedAt = time.Now().UTC()
	_, err := r.db.NewInsert().Model(timeLog).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return timeLog, nil
}

func (r *repository) GetTimeLogsByProject(ctx context.Context, projectID int) ([]TimeLog, error) {
	var timeLogs []TimeLog
	err := r.db.NewSelect().Model(&timeLogs).Where("project_id = ?", projectID).Order("id").Scan(ctx)
	return timeLogs, err
}

func (r *repository) CreateCost(ctx context.Context, cost *Cost) (*Cost, error) {
	if err := r.checkReferences(ctx, cost.ProjectID, cost.TaskID); err != nil {
		return nil, err
	}

	cost.CreatedAt = time.Now().UTC()
	_, err := r.db.NewInsert().Model(cost).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return cost, nil
}

func (r *repository) GetCostsByProject(ctx context.Context, projectID int) ([]Cost, error) {
	var costs []Cost
	err := r.db.NewSelect().Model(&costs).Where("project_id = ?", projectID).Order("id").Scan(ctx)
	return costs, err
}

func (r *repository) SumTimeLogHours(ctx context.Context, projectID int) (float64, error) {
	var total float64
	err := r.db.NewSelect().
		Model((*TimeLog)(nil)).
		ColumnExpr("COALESCE(SUM(hours), 0)").
		Where("project_id = ?", projectID).
		Scan(ctx, &total)
	return total, err
}

func (r *repository) SumCostAmounts(ctx context.Context, projectID int) (float64, error) {
	var total float64
	err := r.db.NewSelect().
		Model((*Cost)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("project_id = ?", projectID).
		Scan(ctx, &total)
	return total, err
}

// checkReferences validates both foreign keys of a TimeLog/Cost, project first.
func (r *repository) checkReferences(ctx context.Context, projectID, taskID int) error {
	exists, err := r.ProjectExists(ctx, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRelatedProjectNotFound
	}

	exists, err = r.TaskExists(ctx, taskID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRelatedTaskNotFound
	}
	return nil
}
