package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/model"
)

// Profile manages the user's profile image: bytes in object storage, a
// key reference on the user record.
type Profile struct {
	userStore model.UserStore
	storage   model.Storage
	logger    *logger.Logger
}

func NewProfile(userStore model.UserStore, storage model.Storage, logger *logger.Logger) *Profile {
	return &Profile{
		userStore: userStore,
		storage:   storage,
		logger:    logger,
	}
}

// UpdateProfileImage stores the new image, points the user at it and
// removes the previous object. A failed removal of the old object is
// logged, the new image is already in place.
func (p *Profile) UpdateProfileImage(ctx context.Context, userID uuid.UUID, image Attachment) (model.User, error) {
	p.logger.Debug("Profile service: updating profile image",
		"user_id", userID)

	user, err := p.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		p.logger.Error("Profile service: failed to get user by id",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	key := fmt.Sprintf("profile/%s/%s%s", userID, uuid.New(), filepath.Ext(image.Filename))
	if err := p.storage.Upload(ctx, key, image.Reader, image.Size, image.ContentType); err != nil {
		p.logger.Error("Profile service: failed to upload profile image",
			"user_id", userID,
			"key", key,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to upload profile image: %w", err)
	}

	previous := user.ProfileImage
	user.ProfileImage = &key

	user, err = p.userStore.Save(ctx, user)
	if err != nil {
		p.logger.Error("Profile service: failed to save profile image reference",
			"user_id", userID,
			"error", err.Error())
		if delErr := p.storage.Delete(ctx, key); delErr != nil {
			p.logger.Error("Profile service: failed to delete orphaned object",
				"key", key,
				"error", delErr.Error())
		}
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	if previous != nil {
		if err := p.storage.Delete(ctx, *previous); err != nil {
			p.logger.Error("Profile service: failed to delete previous profile image",
				"key", *previous,
				"error", err.Error())
		}
	}

	p.logger.Info("Profile service: profile image updated",
		"user_id", userID,
		"key", key)

	return user, nil
}

// GetProfileImage returns the user's stored image reference.
func (p *Profile) GetProfileImage(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := p.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.ErrNotFound
		}
		p.logger.Error("Profile service: failed to get user by id",
			"user_id", userID,
			"error", err.Error())
		return "", fmt.Errorf("failed to get user by id: %w", err)
	}

	if user.ProfileImage == nil {
		return "", model.ErrNoProfileImage
	}

	return *user.ProfileImage, nil
}
