package services

import (
	"errors"
	"time"

	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"

	"github.com/alphabatem/common/context"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	context.DefaultService

	postgres *PostgresService
	jwt      *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwt = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         shared.RoleUser,
		IsActive:     true,
		Level:        1,
	}

	created, err := svc.postgres.CreateUser(user)
	if err != nil {
		if IsDuplicateErr(err) {
			return nil, shared.NewConflictError(err, "Username or email already taken")
		}
		return nil, shared.NewInternalError(err, "Failed to create user")
	}

	return &dto.RegisterResponse{
		UserID:   created.ID,
		Username: created.Username,
		Email:    created.Email,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.postgres.GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
		}
		return nil, shared.NewInternalError(err, "Failed to look up user")
	}

	if !user.IsActive {
		return nil, shared.NewForbiddenError(nil, "Account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
	}

	token, err := svc.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := svc.postgres.UpdateUser(user); err != nil {
		return nil, shared.NewInternalError(err, "Failed to record login")
	}

	return &dto.LoginResponse{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: token,
		ExpiresIn:   int64(svc.jwt.TTL().Seconds()),
		LoggedInAt:  now,
	}, nil
}
