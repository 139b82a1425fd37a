package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/steffise60/Suivi-de-chantier/internal/attachment"
	"github.com/steffise60/Suivi-de-chantier/internal/httputil"
	"github.com/steffise60/Suivi-de-chantier/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/projects", h.CreateProject)
	router.Get("/projects", h.GetAllProjects)
	router.Delete("/projects/{id}", h.DeleteProject)
	router.Get("/projects/{id}/tasks", h.GetTasks)
	router.Get("/projects/{id}/timelogs", h.GetTimeLogs)
	router.Get("/projects/{id}/costs", h.GetCosts)
	router.Get("/projects/{id}/kpi", h.ProjectKPI)
	router.Post("/tasks", h.CreateTask)
	router.Post("/timelogs", h.CreateTimeLog)
	router.Post("/costs", h.CreateCost)
	router.Post("/costs-with-file", h.CreateCostWithFile)
	router.Post("/seed", h.Seed)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var project Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil || h.validate.Struct(&project) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating project", "name", project.Name)
	created, err := h.service.CreateProject(r.Context(), &project)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordProjectCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all projects")

	projects, err := h.service.GetAllProjects(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []Project{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, projects)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting project", "project_id", id)
	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordProjectDeleted(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil || h.validate.Struct(&task) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating task", "name", task.Name, "project_id", task.ProjectID)
	created, err := h.service.CreateTask(r.Context(), &task)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordTaskCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	tasks, err := h.service.GetTasksForProject(r.Context(), projectID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, tasks)
}

func (h *Handler) CreateTimeLog(w http.ResponseWriter, r *http.Request) {
	var timeLog TimeLog
	if err := json.NewDecoder(r.Body).Decode(&timeLog); err != nil || h.validate.Struct(&timeLog) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating time log", "project_id", timeLog.ProjectID, "task_id", timeLog.TaskID)
	created, err := h.service.CreateTimeLog(r.Context(), &timeLog)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordTimeLogRecorded(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetTimeLogs(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	timeLogs, err := h.service.GetTimeLogsForProject(r.Context(), projectID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if timeLogs == nil {
		timeLogs = []TimeLog{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, timeLogs)
}

func (h *Handler) CreateCost(w http.ResponseWriter, r *http.Request) {
	var cost Cost
	if err := json.NewDecoder(r.Body).Decode(&cost); err != nil || h.validate.Struct(&cost) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating cost", "project_id", cost.ProjectID, "task_id", cost.TaskID)
	created, err := h.service.CreateCost(r.Context(), &cost)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordCostRecorded(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

// CreateCostWithFile accepts a multipart form: the cost fields plus an
// optional "file" part holding a PDF receipt.
func (h *Handler) CreateCostWithFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	cost, err := costFromForm(r)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if h.validate.Struct(cost) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating cost with receipt", "project_id", cost.ProjectID, "task_id", cost.TaskID)

	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		created, err := h.service.CreateCost(r.Context(), cost)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		h.metrics.RecordCostRecorded(r.Context())
		httputil.RespondWithJSON(w, http.StatusCreated, created)
		return
	}
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid file upload")
		return
	}
	defer file.Close()

	created, err := h.service.CreateCostWithReceipt(r.Context(), cost, file, header.Header.Get("Content-Type"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordCostRecorded(r.Context())
	h.metrics.RecordAttachmentStored(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetCosts(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	costs, err := h.service.GetCostsForProject(r.Context(), projectID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if costs == nil {
		costs = []Cost{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, costs)
}

func (h *Handler) ProjectKPI(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	h.logger.InfoContext(r.Context(), "computing project KPI", "project_id", projectID)
	kpi, err := h.service.ProjectKPI(r.Context(), projectID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordKPIComputed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, kpi)
}

func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "seeding demo data")

	project, err := h.service.Seed(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]int{"project_id": project.ID})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound):
		h.logger.Info("project not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, ErrTaskNotFound):
		h.logger.Info("task not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, ErrRelatedProjectNotFound):
		h.logger.Info("related project not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Related project not found")
	case errors.Is(err, ErrRelatedTaskNotFound):
		h.logger.Info("related task not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Related task not found")
	case errors.Is(err, attachment.ErrUnsupportedMediaType):
		h.logger.Info("unsupported attachment media type")
		httputil.RespondWithError(w, http.StatusUnsupportedMediaType, "Only PDF files are allowed")
	case errors.Is(err, ErrInvalidInput):
		h.logger.Info("invalid input")
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func costFromForm(r *http.Request) (*Cost, error) {
	projectID, err := strconv.Atoi(r.FormValue("project_id"))
	if err != nil {
		return nil, err
	}
	taskID, err := strconv.Atoi(r.FormValue("task_id"))
	if err != nil {
		return nil, err
	}
	costDate, err := parseDate(r.FormValue("cost_date"))
	if err != nil {
		return nil, err
	}
	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		return nil, err
	}

	return &Cost{
		ProjectID: projectID,
		TaskID:    taskID,
		CostDate:  costDate,
		Amount:    amount,
		Category:  r.FormValue("category"),
		Vendor:    r.FormValue("vendor"),
		Note:      r.FormValue("note"),
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
