package handler

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/olopez/tasknest/internal/api/http/middleware"
	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/model"
	"github.com/olopez/tasknest/internal/service"
)

// ProfileService manages the profile image lifecycle.
type ProfileService interface {
	UpdateProfileImage(ctx context.Context, userID uuid.UUID, image service.Attachment) (model.User, error)
	GetProfileImage(ctx context.Context, userID uuid.UUID) (string, error)
}

// Profile handles the profile image endpoints. Both run behind the gate.
type Profile struct {
	service ProfileService
	logger  *logger.Logger
}

func NewProfile(service ProfileService, logger *logger.Logger) *Profile {
	return &Profile{
		service: service,
		logger:  logger,
	}
}

func (p *Profile) UploadImage(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	fileHeader, err := c.FormFile("iconProfile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image provided",
		})
	}

	attachment, file, err := openAttachment(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer file.Close()

	updated, err := p.service.UpdateProfileImage(c.Context(), claims.UserID, attachment)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated.Profile())
}

func (p *Profile) GetImage(c fiber.Ctx) error {
	claims := c.Locals(middleware.ClaimsKey).(model.SessionClaims)

	image, err := p.service.GetProfileImage(c.Context(), claims.UserID)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"profileImage": image,
	})
}

func openAttachment(fh *multipart.FileHeader) (service.Attachment, multipart.File, error) {
	file, err := fh.Open()
	if err != nil {
		return service.Attachment{}, nil, err
	}

	return service.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      file,
	}, file, nil
}
