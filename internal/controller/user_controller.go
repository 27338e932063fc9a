package controller

import (
	"errors"
	"finlit_backend/internal/service"
	"finlit_backend/internal/util"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService    *service.UserService
	StorageService *service.StorageService
}

func NewUserController(userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		UserService:    userService,
		StorageService: storageService,
	}
}

// GetProfile godoc
// @Summary 个人主页
// @Description 获取当前用户资料、经验等级与完成课程数
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/user/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	profile, err := c.UserService.GetProfile(ctx.Request.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, profile)
}

// UpdateProfile godoc
// @Summary 修改资料
// @Description 修改昵称与语言偏好
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request: "+err.Error())
		return
	}
	updated, err := c.UserService.UpdateProfile(user.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{
		"name":     updated.Name,
		"language": updated.Language,
	})
}

// UploadAvatar godoc
// @Summary 上传头像
// @Description 上传头像图片并更新用户资料
// @Tags 用户
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "头像图片"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /api/user/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "Avatar file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage})
	if err != nil || !util.IsImage(mimeType) {
		util.BadRequest(ctx, "Only image files are allowed")
		return
	}
	if _, err := src.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := "avatars/" + strconv.FormatUint(uint64(user.UserID), 10) + "_" + util.GenerateRandomString(8) + ext
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.UserService.UpdateAvatar(user.UserID, url); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"avatar": url})
}

// GetQuizHistory godoc
// @Summary 测验历史
// @Description 当前用户的测验提交记录，可按课程过滤
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param lesson query string false "课程ID"
// @Param limit query int false "返回条数，默认20"
// @Success 200 {object} util.Response
// @Router /api/user/quiz-history [get]
func (c *UserController) GetQuizHistory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	records, err := c.UserService.GetQuizHistory(user.UserID, ctx.Query("lesson"), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// GetUserOverview godoc
// @Summary 用户概览
// @Description 管理员按ID查看任意用户的资料与完成统计
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/overview [get]
func (c *UserController) GetUserOverview(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "Invalid user id")
		return
	}
	overview, err := c.UserService.GetUserOverview(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, overview)
}

// GetLeaderboard godoc
// @Summary 排行榜
// @Description 按经验值排名的用户榜单
// @Tags 用户
// @Produce json
// @Param limit query int false "返回条数，默认10"
// @Success 200 {object} util.Response
// @Router /api/leaderboard [get]
func (c *UserController) GetLeaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	entries, err := c.UserService.GetLeaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
