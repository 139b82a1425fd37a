package ledger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/steffise60/Suivi-de-chantier/internal/ledger"
	"github.com/steffise60/Suivi-de-chantier/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) (chi.Router, *serviceFixture) {
	t.Helper()

	f := setupService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := ledger.NewHandler(f.service, logger, metrics.NewMock())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, f
}

func postJSON(t *testing.T, router chi.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func multipartCost(t *testing.T, fields map[string]string, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestProjectHandlers(t *testing.T) {
	t.Run("CreateProject", func(t *testing.T) {
		router, _ := setupHandler(t)

		w := postJSON(t, router, "/projects", map[string]interface{}{
			"name":         "Harbor warehouse",
			"client":       "Acme Construction",
			"start_date":   "2025-01-06T00:00:00Z",
			"budget_hours": 120,
			"budget_cost":  15000,
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response ledger.Project
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.NotZero(t, response.ID)
		assert.Equal(t, "Harbor warehouse", response.Name)
		assert.Equal(t, 120.0, response.BudgetHours)
	})

	t.Run("CreateProjectMissingName", func(t *testing.T) {
		router, _ := setupHandler(t)

		w := postJSON(t, router, "/projects", map[string]interface{}{
			"start_date": "2025-01-06T00:00:00Z",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListProjects", func(t *testing.T) {
		router, f := setupHandler(t)
		f.createProject(t, 0, 0)
		f.createProject(t, 0, 0)

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response []ledger.Project
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Len(t, response, 2)
	})

	t.Run("DeleteProject", func(t *testing.T) {
		router, f := setupHandler(t)
		project := f.createProject(t, 0, 0)

		req := httptest.NewRequest(http.MethodDelete, "/projects/"+strconv.Itoa(project.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)

		// Deleting again reports the project as gone
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandlers(t *testing.T) {
	t.Run("CreateTaskForMissingProject", func(t *testing.T) {
		router, _ := setupHandler(t)

		w := postJSON(t, router, "/tasks", map[string]interface{}{
			"project_id": 12345,
			"name":       "Orphan task",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Related project not found", response["error"])
	})

	t.Run("CreateAndListTasks", func(t *testing.T) {
		router, f := setupHandler(t)
		project := f.createProject(t, 0, 0)

		w := postJSON(t, router, "/tasks", map[string]interface{}{
			"project_id":    project.ID,
			"name":          "Foundations",
			"planned_hours": 40,
			"planned_cost":  5000,
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/projects/%d/tasks", project.ID), nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response []ledger.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response, 1)
		assert.Equal(t, "Foundations", response[0].Name)
	})
}

func TestTimeLogHandlers(t *testing.T) {
	router, f := setupHandler(t)
	project := f.createProject(t, 0, 0)
	task := f.createTask(t, project.ID)

	w := postJSON(t, router, "/timelogs", map[string]interface{}{
		"project_id": project.ID,
		"task_id":    task.ID,
		"work_date":  "2025-02-03T00:00:00Z",
		"hours":      7.5,
		"worker":     "Crew A",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created ledger.TimeLog
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedAt)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/projects/%d/timelogs", project.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var listed []ledger.TimeLog
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 7.5, listed[0].Hours)
}

func TestCostHandlers(t *testing.T) {
	t.Run("CreateCostJSON", func(t *testing.T) {
		router, f := setupHandler(t)
		project := f.createProject(t, 0, 0)
		task := f.createTask(t, project.ID)

		w := postJSON(t, router, "/costs", map[string]interface{}{
			"project_id": project.ID,
			"task_id":    task.ID,
			"cost_date":  "2025-02-03T00:00:00Z",
			"amount":     2500,
			"category":   "materials",
			"vendor":     "Brico",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var created ledger.Cost
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Empty(t, created.AttachmentFilename)
	})

	t.Run("CreateCostWithPDF", func(t *testing.T) {
		router, f := setupHandler(t)
		project := f.createProject(t, 0, 0)
		task := f.createTask(t, project.ID)

		body, contentType := multipartCost(t, map[string]string{
			"project_id": strconv.Itoa(project.ID),
			"task_id":    strconv.Itoa(task.ID),
			"cost_date":  "2025-02-03",
			"amount":     "99.90",
			"category":   "materials",
		}, "receipt.pdf", "application/pdf", "%PDF-1.4")

		req := httptest.NewRequest(http.MethodPost, "/costs-with-file", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created ledger.Cost
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		require.NotEmpty(t, created.AttachmentFilename)
		assert.FileExists(t, filepath.Join(f.store.Dir(), created.AttachmentFilename))
	})

	t.Run("CreateCostWithNonPDF", func(t *testing.T) {
		router, f := setupHandler(t)
		project := f.createProject(t, 0, 0)
		task := f.createTask(t, project.ID)

		body, contentType := multipartCost(t, map[string]string{
			"project_id": strconv.Itoa(project.ID),
			"task_id":    strconv.Itoa(task.ID),
			"cost_date":  "2025-02-03",
			"amount":     "99.90",
			"category":   "materials",
		}, "receipt.txt", "text/plain", "just text")

		req := httptest.NewRequest(http.MethodPost, "/costs-with-file", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

		costs, err := f.service.GetCostsForProject(context.Background(), project.ID)
		require.NoError(t, err)
		assert.Empty(t, costs)

		entries, err := os.ReadDir(f.store.Dir())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("CreateCostWithoutFilePart", func(t *testing.T) {
		router, f := setupHandler(t)
		project := f.createProject(t, 0, 0)
		task := f.createTask(t, project.ID)

		body, contentType := multipartCost(t, map[string]string{
			"project_id": strconv.Itoa(project.ID),
			"task_id":    strconv.Itoa(task.ID),
			"cost_date":  "2025-02-03",
			"amount":     "50",
			"category":   "materials",
		}, "", "", "")

		req := httptest.NewRequest(http.MethodPost, "/costs-with-file", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created ledger.Cost
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Empty(t, created.AttachmentFilename)
	})
}

func TestKPIHandler(t *testing.T) {
	t.Run("ComputesVariance", func(t *testing.T) {
		router, f := setupHandler(t)
		project := f.createProject(t, 120, 15000)
		task := f.createTask(t, project.ID)

		ctx := context.Background()
		_, err := f.service.CreateTimeLog(ctx, &ledger.TimeLog{
			ProjectID: project.ID, TaskID: task.ID,
			WorkDate: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			Hours:    5,
		})
		require.NoError(t, err)
		_, err = f.service.CreateCost(ctx, &ledger.Cost{
			ProjectID: project.ID, TaskID: task.ID,
			CostDate: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			Amount:   2500, Category: "materials",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/projects/%d/kpi", project.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var kpi ledger.KPI
		require.NoError(t, json.NewDecoder(w.Body).Decode(&kpi))
		assert.Equal(t, 5.0, kpi.TotalHours)
		assert.Equal(t, 2500.0, kpi.TotalCost)
		assert.Equal(t, -115.0, kpi.HoursVariance)
		assert.Equal(t, -12500.0, kpi.CostVariance)
	})

	t.Run("UnknownProject", func(t *testing.T) {
		router, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/projects/99999/kpi", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSeedHandler(t *testing.T) {
	router, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/seed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotZero(t, response["project_id"])
}
