package controller

import (
	"errors"
	"finlit_backend/internal/service"
	"finlit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
	QuizService   *service.QuizService
}

func NewLessonController(lessonService *service.LessonService, quizService *service.QuizService) *LessonController {
	return &LessonController{
		LessonService: lessonService,
		QuizService:   quizService,
	}
}

// GetLessons godoc
// @Summary 课程列表
// @Description 按分类获取课程目录
// @Tags 课程
// @Produce json
// @Param category query string false "课程分类"
// @Success 200 {object} util.Response
// @Router /api/lessons [get]
func (c *LessonController) GetLessons(ctx *gin.Context) {
	category := ctx.Query("category")
	util.Success(ctx, c.LessonService.ListLessons(category))
}

// GetLesson godoc
// @Summary 课程详情
// @Description 获取课程正文与测验题目（不含答案）
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/lessons/{id} [get]
func (c *LessonController) GetLesson(ctx *gin.Context) {
	lesson, err := c.LessonService.GetLesson(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// GetProgress godoc
// @Summary 学习进度
// @Description 获取已完成课程列表与完成百分比
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/lessons/progress [get]
func (c *LessonController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, c.QuizService.GetProgress(ctx.Request.Context(), user.UserID))
}
