package controllers

import (
	"context"
	"strings"
	"time"

	"gollama/gollama/config"
	"gollama/gollama/middlewares"
	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/sources/psql/models"
	"gollama/gollama/utils/types"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type AuthController struct {
	userDAO *dao.UserDAO
	cfg     config.Config
}

func NewAuthController(userDAO *dao.UserDAO, cfg config.Config) *AuthController {
	return &AuthController{userDAO: userDAO, cfg: cfg}
}

func ProfileOf(user *models.User) types.Profile {
	var dob *string
	if user.DOB != nil {
		s := user.DOB.Format("2006-01-02")
		dob = &s
	}
	return types.Profile{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Phone:      user.Phone,
		Gender:     user.Gender,
		DOB:        dob,
		AvatarURL:  user.AvatarURL,
		DateJoined: user.DateJoined.Format(time.RFC3339),
	}
}

func (c *AuthController) validateRegistration(ctx context.Context, req types.RegisterRequest) (map[string]string, *time.Time) {
	fields := map[string]string{}

	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = "This field is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "This field is required"
	} else if !strings.Contains(req.Email, "@") {
		fields["email"] = "Enter a valid email address"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = "Password must be at least 8 characters"
	}
	if req.Password != req.PasswordConfirm {
		fields["password_confirm"] = "Passwords don't match"
	}
	switch req.Gender {
	case "", "M", "F", "O":
	default:
		fields["gender"] = "Must be one of M, F, O"
	}

	var dob *time.Time
	if req.DOB != "" {
		parsed, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			fields["dob"] = "Enter a valid date (YYYY-MM-DD)"
		} else {
			dob = &parsed
		}
	}

	if _, ok := fields["username"]; !ok {
		if existing, err := c.userDAO.GetUserByUsername(ctx, req.Username); err == nil && existing != nil {
			fields["username"] = "A user with that username already exists"
		}
	}
	if _, ok := fields["email"]; !ok {
		if existing, err := c.userDAO.GetUserByEmail(ctx, req.Email); err == nil && existing != nil {
			fields["email"] = "A user with that email already exists"
		}
	}

	return fields, dob
}

func (c *AuthController) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	fields, dob := c.validateRegistration(ctx, req)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Gender:       req.Gender,
		DOB:          dob,
	}
	if err := c.userDAO.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	token, err := middlewares.GenerateToken(user.ID, c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &types.AuthResponse{
		Message: "User registered successfully",
		User:    ProfileOf(&user),
		Token:   token,
	}, nil
}

func (c *AuthController) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, &ValidationError{Fields: map[string]string{
			"error": "Username and password required",
		}}
	}

	user, err := c.userDAO.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidLogin
	}

	token, err := middlewares.GenerateToken(user.ID, c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &types.AuthResponse{
		Message: "Login successful",
		User:    ProfileOf(user),
		Token:   token,
	}, nil
}
