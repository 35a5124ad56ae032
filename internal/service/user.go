package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ClearTracker/internal/auth"
	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"

	"github.com/sirupsen/logrus"
)

// UserService 注册与登录
type UserService struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
	logger *logrus.Logger
}

// NewUserService 创建 UserService
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, logger *logrus.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, logger: logger}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 用户名或邮箱已被占用时返回 ErrConflict
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if utf8.RuneCountInString(req.Password) < model.PasswordMinLength {
		return nil, model.NewValidationError("password", "password must be at least %d characters", model.PasswordMinLength)
	}
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username or email already registered", model.ErrConflict)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}
	u := &model.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("用户已注册")
	return u, nil
}

// Authenticate 用户名或密码不正确、账户已停用时都返回 (nil, nil)
func (s *UserService) Authenticate(ctx context.Context, req LoginRequest) (*model.User, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil || u == nil {
		return nil, err
	}
	if !u.IsActive || !s.hasher.Verify(u.HashedPassword, req.Password) {
		s.logger.WithField("username", req.Username).Warn("登录失败")
		return nil, nil
	}
	return u, nil
}

// Get 按 ID 查询用户
func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}
