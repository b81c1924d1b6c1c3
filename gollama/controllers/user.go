package controllers

import (
	"context"
	"io"
	"time"

	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/sources/storage"
	"gollama/gollama/utils/types"
)

const maxAvatarSize = 5 * 1024 * 1024

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

type UserController struct {
	userDAO *dao.UserDAO
	store   *storage.MinIOClient
}

func NewUserController(userDAO *dao.UserDAO, store *storage.MinIOClient) *UserController {
	return &UserController{userDAO: userDAO, store: store}
}

func (c *UserController) Profile(ctx context.Context, userID int) (*types.Profile, error) {
	user, err := c.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	profile := ProfileOf(user)
	return &profile, nil
}

func (c *UserController) UpdateProfile(ctx context.Context, userID int, req types.ProfileUpdateRequest) (*types.Profile, error) {
	user, err := c.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.DOB != nil {
		if dob, err := time.Parse("2006-01-02", *req.DOB); err == nil {
			user.DOB = &dob
		}
	}

	if err := c.userDAO.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	profile := ProfileOf(user)
	return &profile, nil
}

// UploadAvatar stores a new profile picture. Files with an unexpected content
// type or over the size cap are silently skipped, mirroring the profile
// form's behavior, and the current profile is returned either way.
func (c *UserController) UploadAvatar(ctx context.Context, userID int, body io.Reader, size int64, contentType string) (*types.Profile, error) {
	user, err := c.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	ext, allowed := avatarTypes[contentType]
	if !allowed || size > maxAvatarSize {
		profile := ProfileOf(user)
		return &profile, nil
	}

	key, err := c.store.UploadAvatar(ctx, userID, ext, body, size, contentType)
	if err != nil {
		return nil, err
	}
	url := c.store.AvatarURL(key)
	user.AvatarURL = &url
	if err := c.userDAO.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	profile := ProfileOf(user)
	return &profile, nil
}
