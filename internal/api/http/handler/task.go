package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/olopez/tasknest/internal/api/http/middleware"
	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/model"
	"github.com/olopez/tasknest/internal/service"
)

// TaskService manages user-owned tasks.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string, attachments []service.Attachment) (model.Task, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Get(ctx context.Context, id, userID uuid.UUID) (model.Task, error)
	Update(ctx context.Context, id, userID uuid.UUID, update service.TaskUpdate) (model.Task, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Task handles the task endpoints. All of them run behind the gate.
type Task struct {
	service TaskService
	logger  *logger.Logger
}

func NewTask(service TaskService, logger *logger.Logger) *Task {
	return &Task{
		service: service,
		logger:  logger,
	}
}

// Create accepts a multipart form: "title" and "description" fields plus
// zero or more "attachments" files.
func (t *Task) Create(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid multipart form",
		})
	}

	title := formValue(form.Value, "title")
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title must not be empty",
		})
	}
	description := formValue(form.Value, "description")

	attachments := make([]service.Attachment, 0, len(form.File["attachments"]))
	closers := make([]func() error, 0, len(form.File["attachments"]))
	defer func() {
		for _, closeFile := range closers {
			closeFile()
		}
	}()

	for _, fileHeader := range form.File["attachments"] {
		attachment, file, err := openAttachment(fileHeader)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to read uploaded file",
			})
		}
		closers = append(closers, file.Close)
		attachments = append(attachments, attachment)
	}

	task, err := t.service.Create(c.Context(), claims.UserID, title, description, attachments)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

func (t *Task) List(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	tasks, err := t.service.List(c.Context(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}

	if tasks == nil {
		tasks = []model.Task{}
	}

	return c.Status(fiber.StatusOK).JSON(tasks)
}

func (t *Task) Get(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid task id",
		})
	}

	task, err := t.service.Get(c.Context(), id, claims.UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(task)
}

func (t *Task) Update(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid task id",
		})
	}

	var req updateTaskRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	task, err := t.service.Update(c.Context(), id, claims.UserID, service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Done:        req.Done,
	})
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(task)
}

func (t *Task) Delete(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid task id",
		})
	}

	if err := t.service.Delete(c.Context(), id, claims.UserID); err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Task deleted successfully",
	})
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
