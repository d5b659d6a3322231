package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
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

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) UpdateProfileImage(ctx context.Context, userID uuid.UUID, image service.Attachment) (model.User, error) {
	args := m.Called(ctx, userID, image)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockProfileService) GetProfileImage(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// newProfileApp wires the handler behind a locals-injecting stub so the
// gate itself stays out of the picture.
func newProfileApp(svc ProfileService, user model.User) *fiber.App {
	h := NewProfile(svc, testutil.MakeNoopLogger())

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals(middleware.ClaimsKey, model.SessionClaims{UserID: user.ID, Username: user.Username, Email: user.Email})
		return c.Next()
	})
	app.Post("/upload-profile-image", h.UploadImage)
	app.Get("/profile-image", h.GetImage)

	return app
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string][]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := w.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = io.WriteString(fw, "file-bytes")
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestProfileHandler_UploadImage_Success(t *testing.T) {
	user := model.User{ID: uuid.New(), Username: "alice"}
	key := "profile/key.png"
	updated := user
	updated.ProfileImage = &key

	svc := &mockProfileService{}
	svc.On("UpdateProfileImage", mock.Anything, user.ID, mock.MatchedBy(func(a service.Attachment) bool {
		return a.Filename == "me.png" && a.Size > 0
	})).Return(updated, nil)

	app := newProfileApp(svc, user)

	resp, err := app.Test(multipartRequest(t, "/upload-profile-image", nil, map[string][]string{
		"iconProfile": {"me.png"},
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, key, body["profileImage"])
	svc.AssertExpectations(t)
}

func TestProfileHandler_UploadImage_NoFile(t *testing.T) {
	svc := &mockProfileService{}
	app := newProfileApp(svc, model.User{ID: uuid.New()})

	resp, err := app.Test(multipartRequest(t, "/upload-profile-image", nil, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "UpdateProfileImage", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileHandler_GetImage(t *testing.T) {
	user := model.User{ID: uuid.New()}

	t.Run("set", func(t *testing.T) {
		svc := &mockProfileService{}
		svc.On("GetProfileImage", mock.Anything, user.ID).Return("profile/key.png", nil)
		app := newProfileApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile-image", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "profile/key.png", body["profileImage"])
	})

	t.Run("unset", func(t *testing.T) {
		svc := &mockProfileService{}
		svc.On("GetProfileImage", mock.Anything, user.ID).Return("", model.ErrNoProfileImage)
		app := newProfileApp(svc, user)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile-image", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
