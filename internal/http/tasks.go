package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookoutlet/internal/tasks"
)

const taskStatusTimeout = 5 * time.Second

var taskStatusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

// TaskRunResponse is returned by POST /api/tasks/:type/run. TaskID is empty
// when the task ran inline because the queue is disabled.
type TaskRunResponse struct {
	Type    string `json:"type"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

type TaskStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TasksController exposes the maintenance tasks (slug backfill, catalog
// export, admin log pruning) to administrators.
type TasksController struct {
	dispatcher *tasks.Dispatcher
}

func NewTasksController(dispatcher *tasks.Dispatcher) *TasksController {
	return &TasksController{dispatcher: dispatcher}
}

// ListTaskTypes handles GET /api/tasks/types.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"task_types": tasks.Types(),
		"queued":     tc.dispatcher.Queued(),
	})
}

// GetTaskStatus handles GET /api/tasks/:id. Without a queue every ID is
// reported as not_found.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	id := c.Param("id")
	status, err := tc.dispatcher.Status(ctx, id)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	c.JSON(http.StatusOK, TaskStatusResponse{ID: id, Status: taskStatusToString(status)})
}

// RunTask handles POST /api/tasks/:type/run: 202 when queued, 200 when run inline.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	task, err := tasks.NewTask(taskType, tc.dispatcher.Dependencies())
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	taskID, err := tc.dispatcher.Dispatch(c.Request.Context(), task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "task_failed"})
		return
	}

	if taskID == "" {
		c.JSON(http.StatusOK, TaskRunResponse{Type: taskType, Message: "task completed"})
		return
	}
	c.JSON(http.StatusAccepted, TaskRunResponse{Type: taskType, TaskID: taskID, Message: "task enqueued"})
}

func taskStatusToString(status backlite.TaskStatus) string {
	if name, ok := taskStatusNames[status]; ok {
		return name
	}
	return "unknown"
}
