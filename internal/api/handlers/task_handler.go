package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/task"
	"go.uber.org/zap"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	service task.Service
	logger  *zap.Logger
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(service task.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// CreateTask godoc
// @Summary Create a new task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := boundBody[dto.CreateTaskRequest](c)
	if !ok {
		return
	}

	var priority task.Priority
	if req.Priority != "" {
		p, err := task.ParsePriority(req.Priority)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		priority = p
	}

	created, err := h.service.CreateTask(c.Request.Context(), task.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(created)})
}

// GetTask returns a task with its subtasks and notes.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"task":     TaskToResponse(t),
		"subtasks": SubtasksToResponse(t.Subtasks),
		"notes":    NotesToResponse(t.Notes),
	}})
}

// ListTasks godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param completed query bool false "Completion state"
// @Param priority query string false "LOW, MEDIUM, HIGH or URGENT"
// @Param category_id query string false "Category ID"
// @Param tag_id query string false "Tag ID"
// @Param page query int false "Page number (0-based)"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.TaskListResponse
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	query, ok := middleware.GetValidatedQuery[dto.TaskFilterRequest](c)
	if !ok {
		query = &dto.TaskFilterRequest{}
		if err := c.ShouldBindQuery(query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
	}

	filter := task.TaskFilter{
		UserID:       userID,
		Completed:    query.Completed,
		DueDateStart: query.DueFrom,
		DueDateEnd:   query.DueTo,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	if query.Priority != "" {
		p, err := task.ParsePriority(query.Priority)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		filter.Priority = &p
	}
	if query.CategoryID != "" {
		id, err := uuid.Parse(query.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		filter.CategoryID = &id
	}
	if query.TagID != "" {
		id, err := uuid.Parse(query.TagID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag_id"})
			return
		}
		filter.TagID = &id
	}

	tasks, total, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(tasks)
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.TaskListResponse{
		Tasks:      TasksToResponse(tasks),
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   pageSize,
	}})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := boundBody[dto.UpdateTaskRequest](c)
	if !ok {
		return
	}

	input := task.UpdateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		ClearDescription: req.ClearDescription,
		DueDate:          req.DueDate,
		ClearDueDate:     req.ClearDueDate,
		CategoryID:       req.CategoryID,
		ClearCategory:    req.ClearCategory,
	}
	if req.Priority != nil {
		p, err := task.ParsePriority(*req.Priority)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		input.Priority = &p
	}

	updated, err := h.service.UpdateTask(c.Request.Context(), userID, id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// CompleteTask godoc
// @Summary Complete a task and collect points, streak and achievements
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} dto.CompletionResponse
// @Failure 409 {object} map[string]string "Task already completed"
// @Router /api/tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.CompleteTask(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": CompletionToResponse(result)})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subtasks

func (h *TaskHandler) AddSubtask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := boundBody[dto.SubtaskRequest](c)
	if !ok {
		return
	}

	subtask, err := h.service.AddSubtask(c.Request.Context(), userID, taskID, req.Title)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": SubtaskToResponse(subtask)})
}

func (h *TaskHandler) ListSubtasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	subtasks, err := h.service.ListSubtasks(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": SubtasksToResponse(subtasks)})
}

func (h *TaskHandler) RenameSubtask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtaskId")
	if !ok {
		return
	}
	req, ok := boundBody[dto.SubtaskRequest](c)
	if !ok {
		return
	}

	subtask, err := h.service.RenameSubtask(c.Request.Context(), userID, taskID, subtaskID, req.Title)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": SubtaskToResponse(subtask)})
}

func (h *TaskHandler) CompleteSubtask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtaskId")
	if !ok {
		return
	}

	subtask, err := h.service.CompleteSubtask(c.Request.Context(), userID, taskID, subtaskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": SubtaskToResponse(subtask)})
}

func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtaskId")
	if !ok {
		return
	}

	if err := h.service.DeleteSubtask(c.Request.Context(), userID, taskID, subtaskID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Notes

func (h *TaskHandler) AddNote(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := boundBody[dto.NoteRequest](c)
	if !ok {
		return
	}

	note, err := h.service.AddNote(c.Request.Context(), userID, taskID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": NoteToResponse(note)})
}

func (h *TaskHandler) ListNotes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	notes, err := h.service.ListNotes(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": NotesToResponse(notes)})
}

func (h *TaskHandler) DeleteNote(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(c, "noteId")
	if !ok {
		return
	}

	if err := h.service.DeleteNote(c.Request.Context(), userID, taskID, noteID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Tags

func (h *TaskHandler) AttachTag(c *gin.Context) {
	h.changeTag(c, h.service.AttachTag)
}

func (h *TaskHandler) DetachTag(c *gin.Context) {
	h.changeTag(c, h.service.DetachTag)
}

func (h *TaskHandler) changeTag(c *gin.Context, op func(ctx context.Context, userID, taskID, tagID uuid.UUID) (*task.Task, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tagId")
	if !ok {
		return
	}

	updated, err := op(c.Request.Context(), userID, taskID, tagID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}
