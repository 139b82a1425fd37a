package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/steffise60/Suivi-de-chantier/internal/attachment"
)

var (
	ErrProjectNotFound        = errors.New("project not found")
	ErrTaskNotFound           = errors.New("task not found")
	ErrRelatedProjectNotFound = errors.New("related project not found")
	ErrRelatedTaskNotFound    = errors.New("related task not found")
	ErrInvalidInput           = errors.New("invalid input")
)

type Service interface {
	CreateProject(ctx context.Context, project *Project) (*Project, error)
	GetAllProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, id int) error

	CreateTask(ctx context.Context, task *Task) (*Task, error)
	GetTasksForProject(ctx context.Context, projectID int) ([]Task, error)

	CreateTimeLog(ctx context.Context, timeLog *TimeLog) (*TimeLog, error)
	GetTimeLogsForProject(ctx context.Context, projectID int) ([]TimeLog, error)

	CreateCost(ctx context.Context, cost *Cost) (*Cost, error)
	CreateCostWithReceipt(ctx context.Context, cost *Cost, content io.Reader, mediaType string) (*Cost, error)
	GetCostsForProject(ctx context.Context, projectID int) ([]Cost, error)

	ProjectKPI(ctx context.Context, projectID int) (*KPI, error)

	Seed(ctx context.Context) (*Project, error)
}

type service struct {
	repo    Repository
	store   attachment.Store
	cascade *CascadeDeleter
	kpi     *Calculator
	events  EventPublisher
	logger  *slog.Logger
}

func NewService(repo Repository, store attachment.Store, cascade *CascadeDeleter, events EventPublisher, logger *slog.Logger) Service {
	return &service{
		repo:    repo,
		store:   store,
		cascade: cascade,
		kpi:     NewCalculator(repo),
		events:  events,
		logger:  logger,
	}
}

func (s *service) CreateProject(ctx context.Context, project *Project) (*Project, error) {
	created, err := s.repo.CreateProject(ctx, project)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventProjectCreated, created.ID, created.ID)
	return created, nil
}

func (s *service) GetAllProjects(ctx context.Context) ([]Project, error) {
	return s.repo.GetAllProjects(ctx)
}

// DeleteProject resolves the project first so a missing id fails before any
// work, then hands the subtree to the cascade deleter.
func (s *service) DeleteProject(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetProjectByID(ctx, id); err != nil {
		return err
	}
	if err := s.cascade.DeleteProjectTree(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, EventProjectDeleted, id, id)
	return nil
}

func (s *service) CreateTask(ctx context.Context, task *Task) (*Task, error) {
	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventTaskCreated, created.ProjectID, created.ID)
	return created, nil
}

func (s *service) GetTasksForProject(ctx context.Context, projectID int) ([]Task, error) {
	if projectID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetTasksByProject(ctx, projectID)
}

func (s *service) CreateTimeLog(ctx context.Context, timeLog *TimeLog) (*TimeLog, error) {
	created, err := s.repo.CreateTimeLog(ctx, timeLog)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventTimeLogCreated, created.ProjectID, created.ID)
	return created, nil
}

func (s *service) GetTimeLogsForProject(ctx context.Context, projectID int) ([]TimeLog, error) {
	if projectID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetTimeLogsByProject(ctx, projectID)
}

func (s *service) CreateCost(ctx context.Context, cost *Cost) (*Cost, error) {
	created, err := s.repo.CreateCost(ctx, cost)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventCostCreated, created.ProjectID, created.ID)
	return created, nil
}

// CreateCostWithReceipt is a two-phase operation: the receipt file is written
// first, the row inserted second. A crash in between leaves an orphaned file
// with no referencing row (tolerated); a row never references a file that was
// not written. Reference checks run before either phase so a validation
// failure mutates nothing.
func (s *service) CreateCostWithReceipt(ctx context.Context, cost *Cost, content io.Reader, mediaType string) (*Cost, error) {
	exists, err := s.repo.ProjectExists(ctx, cost.ProjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRelatedProjectNotFound
	}
	exists, err = s.repo.TaskExists(ctx, cost.TaskID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRelatedTaskNotFound
	}

	filename, err := s.store.StoreReceipt(cost.ProjectID, cost.TaskID, content, mediaType)
	if err != nil {
		return nil, err
	}
	cost.AttachmentFilename = filename

	created, err := s.repo.CreateCost(ctx, cost)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventCostCreated, created.ProjectID, created.ID)
	return created, nil
}

func (s *service) GetCostsForProject(ctx context.Context, projectID int) ([]Cost, error) {
	if projectID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetCostsByProject(ctx, projectID)
}

func (s *service) ProjectKPI(ctx context.Context, projectID int) (*KPI, error) {
	if projectID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.kpi.ComputeVariance(ctx, projectID)
}
