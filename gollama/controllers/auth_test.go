package controllers

import (
	"context"
	"testing"

	"gollama/gollama/config"
	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/utils/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig() config.Config {
	cfg := testConfig()
	cfg.JWTSecret = "test-secret"
	return cfg
}

func validRegistration() types.RegisterRequest {
	return types.RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Phone:           "555-0100",
		Gender:          "F",
		DOB:             "1990-04-01",
		Password:        "hunter2hunter2",
		PasswordConfirm: "hunter2hunter2",
	}
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewAuthController(dao.NewUserDAO(db), authConfig())

	resp, err := ctrl.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	require.NotNil(t, resp.User.DOB)
	assert.Equal(t, "1990-04-01", *resp.User.DOB)
}

func TestRegisterValidationErrors(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewAuthController(dao.NewUserDAO(db), authConfig())

	req := types.RegisterRequest{
		Username:        "",
		Email:           "not-an-email",
		Gender:          "X",
		DOB:             "01/04/1990",
		Password:        "short",
		PasswordConfirm: "different",
	}
	_, err := ctrl.Register(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required", verr.Fields["username"])
	assert.Equal(t, "Enter a valid email address", verr.Fields["email"])
	assert.Equal(t, "Must be one of M, F, O", verr.Fields["gender"])
	assert.Equal(t, "Enter a valid date (YYYY-MM-DD)", verr.Fields["dob"])
	assert.Equal(t, "Password must be at least 8 characters", verr.Fields["password"])
	assert.Equal(t, "Passwords don't match", verr.Fields["password_confirm"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewAuthController(dao.NewUserDAO(db), authConfig())
	ctx := context.Background()

	_, err := ctrl.Register(ctx, validRegistration())
	require.NoError(t, err)

	again := validRegistration()
	again.Email = "alice2@example.com"
	_, err = ctrl.Register(ctx, again)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "A user with that username already exists", verr.Fields["username"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewAuthController(dao.NewUserDAO(db), authConfig())
	ctx := context.Background()

	_, err := ctrl.Register(ctx, validRegistration())
	require.NoError(t, err)

	again := validRegistration()
	again.Username = "alice2"
	_, err = ctrl.Register(ctx, again)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "A user with that email already exists", verr.Fields["email"])
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewAuthController(dao.NewUserDAO(db), authConfig())
	ctx := context.Background()

	_, err := ctrl.Register(ctx, validRegistration())
	require.NoError(t, err)

	resp, err := ctrl.Login(ctx, types.LoginRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)

	_, err = ctrl.Login(ctx, types.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, err = ctrl.Login(ctx, types.LoginRequest{Username: "nobody", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, err = ctrl.Login(ctx, types.LoginRequest{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
