package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olopez/tasknest/internal/api/http/middleware"
	"github.com/olopez/tasknest/internal/model"
	"github.com/olopez/tasknest/internal/service"
	"github.com/olopez/tasknest/internal/testutil"
)

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) Create(ctx context.Context, userID uuid.UUID, title, description string, attachments []service.Attachment) (model.Task, error) {
	args := m.Called(ctx, userID, title, description, attachments)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *mockTaskService) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *mockTaskService) Get(ctx context.Context, id, userID uuid.UUID) (model.Task, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *mockTaskService) Update(ctx context.Context, id, userID uuid.UUID, update service.TaskUpdate) (model.Task, error) {
	args := m.Called(ctx, id, userID, update)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *mockTaskService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func newTaskApp(svc TaskService, user model.User) *fiber.App {
	h := NewTask(svc, testutil.MakeNoopLogger())

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals(middleware.ClaimsKey, model.SessionClaims{UserID: user.ID, Username: user.Username, Email: user.Email})
		return c.Next()
	})
	app.Post("/tasks", h.Create)
	app.Get("/tasks", h.List)
	app.Get("/tasks/:id", h.Get)
	app.Put("/tasks/:id", h.Update)
	app.Delete("/tasks/:id", h.Delete)

	return app
}

func TestTaskHandler_Create_Success(t *testing.T) {
	user := model.User{ID: uuid.New()}
	svc := &mockTaskService{}
	created := model.Task{ID: uuid.New(), UserID: user.ID, Title: "buy milk"}
	svc.On("Create", mock.Anything, user.ID, "buy milk", "2 liters", mock.MatchedBy(func(a []service.Attachment) bool {
		return len(a) == 2
	})).Return(created, nil)

	app := newTaskApp(svc, user)

	resp, err := app.Test(multipartRequest(t, "/tasks",
		map[string]string{"title": "buy milk", "description": "2 liters"},
		map[string][]string{"attachments": {"a.png", "b.pdf"}},
	))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body model.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, created.ID, body.ID)
	svc.AssertExpectations(t)
}

func TestTaskHandler_Create_MissingTitle(t *testing.T) {
	svc := &mockTaskService{}
	app := newTaskApp(svc, model.User{ID: uuid.New()})

	resp, err := app.Test(multipartRequest(t, "/tasks",
		map[string]string{"description": "no title"}, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_List(t *testing.T) {
	user := model.User{ID: uuid.New()}

	t.Run("with tasks", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("List", mock.Anything, user.ID).Return([]model.Task{{Title: "a"}, {Title: "b"}}, nil)
		app := newTaskApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body []model.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body, 2)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("List", mock.Anything, user.ID).Return(nil, nil)
		app := newTaskApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(raw))
	})
}

func TestTaskHandler_Get(t *testing.T) {
	user := model.User{ID: uuid.New()}
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("Get", mock.Anything, id, user.ID).Return(model.Task{ID: id, Title: "a"}, nil)
		app := newTaskApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks/"+id.String(), nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not owner's", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("Get", mock.Anything, id, user.ID).Return(model.Task{}, model.ErrNotFound)
		app := newTaskApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks/"+id.String(), nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := &mockTaskService{}
		app := newTaskApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTaskHandler_Update(t *testing.T) {
	user := model.User{ID: uuid.New()}
	id := uuid.New()

	svc := &mockTaskService{}
	svc.On("Update", mock.Anything, id, user.ID, mock.MatchedBy(func(u service.TaskUpdate) bool {
		return u.Title != nil && *u.Title == "new" && u.Done != nil && *u.Done && u.Description == nil
	})).Return(model.Task{ID: id, Title: "new", Done: true}, nil)

	app := newTaskApp(svc, user)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/tasks/"+id.String(), map[string]any{
		"title": "new",
		"done":  true,
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestTaskHandler_Delete(t *testing.T) {
	user := model.User{ID: uuid.New()}
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("Delete", mock.Anything, id, user.ID).Return(nil)
		app := newTaskApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/tasks/"+id.String(), nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("Delete", mock.Anything, id, user.ID).Return(model.ErrNotFound)
		app := newTaskApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/tasks/"+id.String(), nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
