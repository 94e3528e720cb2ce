package v1

import (
	"net/http"
	"strconv"

	"go-todo-backend/internal/delivery/http/middleware"
	"go-todo-backend/internal/delivery/http/response"
	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	taskUC domain.TaskUsecase
}

func NewDashboardHandler(protected *gin.RouterGroup, taskUC domain.TaskUsecase) {
	handler := &DashboardHandler{taskUC: taskUC}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("", handler.Load)
		dashboard.POST("/tasks", handler.Add)
		dashboard.GET("/tasks/export", handler.Export)
		dashboard.PATCH("/tasks/:id/toggle", handler.Toggle)
		dashboard.DELETE("/tasks/:id", handler.Delete)
	}
}

type AddTaskRequest struct {
	Task string `json:"task"`
}

type AddTaskResponse struct {
	Added     bool              `json:"added"`
	Dashboard *domain.Dashboard `json:"dashboard"`
}

type DeleteTaskResponse struct {
	RowsAffected int64             `json:"rows_affected"`
	Dashboard    *domain.Dashboard `json:"dashboard"`
}

func taskID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid task ID")
	}
	return id, nil
}

// Load godoc
// @Summary      Load dashboard
// @Description  All tasks for admins, own tasks otherwise, ordered by id, with today/completed/pending buckets
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.Dashboard}
// @Failure      401  {object}  response.Response
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Load(c *gin.Context) {
	d, err := h.taskUC.Load(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Tasks loaded", d)
}

// Add godoc
// @Summary      Add task
// @Description  Blank text is ignored and the current list is returned
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      AddTaskRequest  true  "Task text"
// @Success      201   {object}  response.Response{data=AddTaskResponse}
// @Success      200   {object}  response.Response{data=AddTaskResponse}
// @Router       /v1/dashboard/tasks [post]
func (h *DashboardHandler) Add(c *gin.Context) {
	var req AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	d, added, err := h.taskUC.Add(c.Request.Context(), middleware.SessionFrom(c), req.Task)
	if err != nil {
		c.Error(err)
		return
	}

	code, msg := http.StatusCreated, "Task added"
	if !added {
		code, msg = http.StatusOK, "Nothing to add"
	}
	response.Success(c, code, msg, AddTaskResponse{Added: added, Dashboard: d})
}

// Toggle godoc
// @Summary      Toggle task status
// @Description  Flips Complete and Not started
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  response.Response{data=domain.Dashboard}
// @Failure      404  {object}  response.Response
// @Router       /v1/dashboard/tasks/{id}/toggle [patch]
func (h *DashboardHandler) Toggle(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		c.Error(err)
		return
	}

	d, err := h.taskUC.ToggleStatus(c.Request.Context(), middleware.SessionFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Task updated", d)
}

// Delete godoc
// @Summary      Delete task
// @Description  Deleting a task that no longer exists succeeds with rows_affected 0
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  response.Response{data=DeleteTaskResponse}
// @Router       /v1/dashboard/tasks/{id} [delete]
func (h *DashboardHandler) Delete(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		c.Error(err)
		return
	}

	d, n, err := h.taskUC.Delete(c.Request.Context(), middleware.SessionFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Task deleted", DeleteTaskResponse{RowsAffected: n, Dashboard: d})
}

// Export godoc
// @Summary      Export tasks
// @Description  XLSX workbook with one sheet per bucket
// @Tags         dashboard
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /v1/dashboard/tasks/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	data, filename, err := h.taskUC.Export(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
