package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/handlers"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
)

// TaskRoutes handles the setup of task-related routes
type TaskRoutes struct {
	handler *handlers.TaskHandler
}

// NewTaskRoutes creates a new TaskRoutes instance
func NewTaskRoutes(handler *handlers.TaskHandler) *TaskRoutes {
	return &TaskRoutes{handler: handler}
}

// RegisterRoutes registers all task-related routes
func (r *TaskRoutes) RegisterRoutes(api *gin.RouterGroup, validation *middleware.ValidationMiddleware) {
	tasks := api.Group("/tasks")

	tasks.GET("", validation.ValidateQuery(&dto.TaskFilterRequest{}), r.handler.ListTasks)
	tasks.POST("", validation.ValidateRequest(&dto.CreateTaskRequest{}), r.handler.CreateTask)
	tasks.GET("/:id", r.handler.GetTask)
	tasks.PUT("/:id", validation.ValidateRequest(&dto.UpdateTaskRequest{}), r.handler.UpdateTask)
	tasks.DELETE("/:id", r.handler.DeleteTask)
	tasks.POST("/:id/complete", r.handler.CompleteTask)

	// Subtasks
	tasks.GET("/:id/subtasks", r.handler.ListSubtasks)
	tasks.POST("/:id/subtasks", validation.ValidateRequest(&dto.SubtaskRequest{}), r.handler.AddSubtask)
	tasks.PUT("/:id/subtasks/:subtaskId", validation.ValidateRequest(&dto.SubtaskRequest{}), r.handler.RenameSubtask)
	tasks.DELETE("/:id/subtasks/:subtaskId", r.handler.DeleteSubtask)
	tasks.POST("/:id/subtasks/:subtaskId/complete", r.handler.CompleteSubtask)

	// Notes
	tasks.GET("/:id/notes", r.handler.ListNotes)
	tasks.POST("/:id/notes", validation.ValidateRequest(&dto.NoteRequest{}), r.handler.AddNote)
	tasks.DELETE("/:id/notes/:noteId", r.handler.DeleteNote)

	// Tags
	tasks.PUT("/:id/tags/:tagId", r.handler.AttachTag)
	tasks.DELETE("/:id/tags/:tagId", r.handler.DetachTag)
}
