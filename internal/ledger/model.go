package ledger

import (
	"time"

	"github.com/uptrace/bun"
)

// Project is the root of the ledger hierarchy for one construction job.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          int        `bun:"id,pk,autoincrement" json:"id"`
	Name        string     `bun:"name,notnull" json:"name" validate:"required"`
	Client      string     `bun:"client,nullzero" json:"client,omitempty"`
	StartDate   time.Time  `bun:"start_date,notnull" json:"start_date" validate:"required"`
	EndDate     *time.Time `bun:"end_date,nullzero" json:"end_date,omitempty"`
	BudgetHours float64    `bun:"budget_hours,notnull,default:0" json:"budget_hours" validate:"gte=0"`
	BudgetCost  float64    `bun:"budget_cost,notnull,default:0" json:"budget_cost" validate:"gte=0"`
	Description string     `bun:"description,nullzero" json:"description,omitempty"`
}

// Task is a scoped unit of work within a Project.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID           int        `bun:"id,pk,autoincrement" json:"id"`
	ProjectID    int        `bun:"project_id,notnull" json:"project_id" validate:"required"`
	Name         string     `bun:"name,notnull" json:"name" validate:"required"`
	PlannedHours float64    `bun:"planned_hours,notnull,default:0" json:"planned_hours" validate:"gte=0"`
	PlannedCost  float64    `bun:"planned_cost,notnull,default:0" json:"planned_cost" validate:"gte=0"`
	StartDate    *time.Time `bun:"start_date,nullzero" json:"start_date,omitempty"`
	EndDate      *time.Time `bun:"end_date,nullzero" json:"end_date,omitempty"`
}

// TimeLog records labor hours against a Task. Hours are caller-supplied and
// carry no sign constraint (negative corrections are allowed).
type TimeLog struct {
	bun.BaseModel `bun:"table:time_logs,alias:tl"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	ProjectID int       `bun:"project_id,notnull" json:"project_id" validate:"required"`
	TaskID    int       `bun:"task_id,notnull" json:"task_id" validate:"required"`
	WorkDate  time.Time `bun:"work_date,notnull" json:"work_date" validate:"required"`
	Hours     float64   `bun:"hours,notnull" json:"hours"`
	Worker    string    `bun:"worker,nullzero" json:"worker,omitempty"`
	Note      string    `bun:"note,nullzero" json:"note,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Cost records an expense against a Task, optionally with a receipt stored in
// the attachment store. AttachmentFilename is an opaque stable token once set.
type Cost struct {
	bun.BaseModel `bun:"table:costs,alias:c"`

	ID                 int       `bun:"id,pk,autoincrement" json:"id"`
	ProjectID          int       `bun:"project_id,notnull" json:"project_id" validate:"required"`
	TaskID             int       `bun:"task_id,notnull" json:"task_id" validate:"required"`
	CostDate           time.Time `bun:"cost_date,notnull" json:"cost_date" validate:"required"`
	Amount             float64   `bun:"amount,notnull" json:"amount"`
	Category           string    `bun:"category,notnull" json:"category" validate:"required"`
	Vendor             string    `bun:"vendor,nullzero" json:"vendor,omitempty"`
	Note               string    `bun:"note,nullzero" json:"note,omitempty"`
	AttachmentFilename string    `bun:"attachment_filename,nullzero" json:"attachment_filename,omitempty"`
	CreatedAt          time.Time `bun:"created_at,notnull" json:"created_at"`
}

// KPI carries actual totals, echoed budgets and their variances so a caller
// never needs a second lookup. Values are raw floating-point sums.
type KPI struct {
	ProjectID     int     `json:"project_id"`
	TotalHours    float64 `json:"total_hours"`
	TotalCost     float64 `json:"total_cost"`
	BudgetHours   float64 `json:"budget_hours"`
	BudgetCost    float64 `json:"budget_cost"`
	HoursVariance float64 `json:"hours_variance"`
	CostVariance  float64 `json:"cost_variance"`
}
