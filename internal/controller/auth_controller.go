package controller

import (
	"errors"
	"finlit_backend/internal/model"
	"finlit_backend/internal/service"
	"finlit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register godoc
// @Summary 注册新用户
// @Description 使用提供的信息注册新用户
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Student,
	}

	if err := c.AuthService.Register(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, "该邮箱已被注册")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 邮箱密码登录，返回JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response{data=object} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "凭证无效"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.Error(ctx, 401, "invalid credentials")
		return
	}

	util.Success(ctx, gin.H{"token": token})
}
