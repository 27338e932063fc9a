package controller

import (
	"errors"
	"finlit_backend/internal/service"
	"finlit_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StoryController struct {
	StoryService *service.StoryService
}

func NewStoryController(storyService *service.StoryService) *StoryController {
	return &StoryController{StoryService: storyService}
}

// CommentRequest 评论请求
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetStories godoc
// @Summary 动态列表
// @Description 分页获取社区动态，支持 latest/popular 标签
// @Tags 社区
// @Produce json
// @Param page query int false "页码，默认1"
// @Param limit query int false "每页条数，默认10"
// @Param tab query string false "latest 或 popular"
// @Success 200 {object} util.Response
// @Router /api/stories [get]
func (c *StoryController) GetStories(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	tab := ctx.DefaultQuery("tab", "latest")

	var userID uint
	if user := util.GetUserFromContext(ctx); user != nil {
		userID = user.UserID
	}

	stories, total, err := c.StoryService.GetStories(page, limit, tab, userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  stories,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetStory godoc
// @Summary 动态详情
// @Tags 社区
// @Produce json
// @Param id path string true "动态ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "动态不存在"
// @Router /api/stories/{id} [get]
func (c *StoryController) GetStory(ctx *gin.Context) {
	var userID uint
	if user := util.GetUserFromContext(ctx); user != nil {
		userID = user.UserID
	}

	story, err := c.StoryService.GetStory(ctx.Param("id"), userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, story)
}

// CreateStory godoc
// @Summary 发布动态
// @Tags 社区
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.StoryRequest true "动态内容"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "内容为空或超长"
// @Router /api/stories [post]
func (c *StoryController) CreateStory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.StoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request: "+err.Error())
		return
	}
	story, err := c.StoryService.CreateStory(user.UserID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Created(ctx, story)
}

// DeleteStory godoc
// @Summary 删除动态
// @Description 仅作者本人或管理员可删除
// @Tags 社区
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "无权限"
// @Router /api/stories/{id} [delete]
func (c *StoryController) DeleteStory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.StoryService.DeleteStory(user.UserID, ctx.Param("id"), user.Role); err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// GetComments godoc
// @Summary 评论列表
// @Tags 社区
// @Produce json
// @Param id path string true "动态ID"
// @Param page query int false "页码，默认1"
// @Param limit query int false "每页条数，默认20"
// @Success 200 {object} util.Response
// @Router /api/stories/{id}/comments [get]
func (c *StoryController) GetComments(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	comments, total, err := c.StoryService.GetComments(ctx.Param("id"), page, limit)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  comments,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// CreateComment godoc
// @Summary 发表评论
// @Tags 社区
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Param request body CommentRequest true "评论内容"
// @Success 201 {object} util.Response
// @Router /api/stories/{id}/comments [post]
func (c *StoryController) CreateComment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request: "+err.Error())
		return
	}
	comment, err := c.StoryService.CreateComment(user.UserID, ctx.Param("id"), req.Content)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

// ToggleLike godoc
// @Summary 点赞/取消点赞
// @Tags 社区
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Success 200 {object} util.Response
// @Router /api/stories/{id}/like [post]
func (c *StoryController) ToggleLike(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	liked, err := c.StoryService.ToggleLike(user.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"liked": liked})
}

// UploadMedia godoc
// @Summary 上传动态媒体
// @Description 上传图片或短视频，返回可引用的地址
// @Tags 社区
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param media formData file true "媒体文件"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /api/stories/media [post]
func (c *StoryController) UploadMedia(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	file, err := ctx.FormFile("media")
	if err != nil {
		util.BadRequest(ctx, "Media file is required")
		return
	}
	url, err := c.StoryService.UploadMedia(ctx, user.UserID, file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

func (c *StoryController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrStoryNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrEmptyContent),
		errors.Is(err, util.ErrContentTooLong),
		errors.Is(err, util.ErrUnsupportedFile):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
