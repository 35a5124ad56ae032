package api

import (
	"net/http"

	"ClearTracker/internal/auth"
	"ClearTracker/internal/repository"
	"ClearTracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 注册与登录
type AuthHandler struct {
	userService *service.UserService
	tokens      *auth.TokenIssuer
	logger      *logrus.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(db *gorm.DB, logger *logrus.Logger, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		userService: service.NewUserService(repository.NewUserRepository(db), auth.NewBcryptHasher(bcrypt.DefaultCost), logger),
		tokens:      tokens,
		logger:      logger,
	}
}

// Register 注册
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "Register", err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

// Login 登录并签发访问令牌
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.userService.Authenticate(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "Login", err)
		return
	}
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		writeError(c, h.logger, "Login", err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
		User:        toUserResponse(u),
	})
}

// Me 当前登录用户
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.userService.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, "Me", err)
		return
	}
	if u == nil {
		notFound(c, "user")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}
