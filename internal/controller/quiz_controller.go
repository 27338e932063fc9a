package controller

import (
	"errors"
	"finlit_backend/internal/service"
	"finlit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// AnswerRequest 作答请求
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// StartQuiz godoc
// @Summary 开始测验
// @Description 为指定课程开启新的答题会话，已有会话会被覆盖
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "课程没有可用测验"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/lessons/{id}/quiz/start [post]
func (c *QuizController) StartQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attempt, err := c.QuizService.StartQuiz(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// GetAttempt godoc
// @Summary 当前会话
// @Description 查询指定课程的答题会话
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/lessons/{id}/quiz [get]
func (c *QuizController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attempt, err := c.QuizService.GetAttempt(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Answer godoc
// @Summary 记录答案
// @Description 记录当前题目的答案，重复作答覆盖旧答案
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body AnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "答案为空"
// @Router /api/lessons/{id}/quiz/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request: "+err.Error())
		return
	}
	attempt, err := c.QuizService.Answer(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Answer)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Next godoc
// @Summary 下一题
// @Description 当前题已作答时前进到下一题
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "当前题未作答或已到最后一题"
// @Router /api/lessons/{id}/quiz/next [post]
func (c *QuizController) Next(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attempt, err := c.QuizService.Next(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Previous godoc
// @Summary 上一题
// @Description 回退到上一题，已有作答保留
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "已在第一题"
// @Router /api/lessons/{id}/quiz/previous [post]
func (c *QuizController) Previous(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attempt, err := c.QuizService.Previous(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Submit godoc
// @Summary 提交测验
// @Description 判分并返回结果，满分触发课程完成
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "未到最后一题或存在未作答题目"
// @Failure 409 {object} util.Response "提交正在进行中"
// @Router /api/lessons/{id}/quiz/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attempt, err := c.QuizService.Submit(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// Retake godoc
// @Summary 重新测验
// @Description 清空上次结果并重新开始作答
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "测验尚未提交"
// @Router /api/lessons/{id}/quiz/retake [post]
func (c *QuizController) Retake(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attempt, err := c.QuizService.Retake(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// ReviewIncorrect godoc
// @Summary 错题回看
// @Description 提交后定位某道错题对应的正文段落
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "测验尚未提交"
// @Failure 404 {object} util.Response "错题不存在"
// @Router /api/lessons/{id}/quiz/review/{questionId} [get]
func (c *QuizController) ReviewIncorrect(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	target, err := c.QuizService.ReviewIncorrect(ctx.Request.Context(), user.UserID, ctx.Param("id"), ctx.Param("questionId"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	util.Success(ctx, target)
}

// Abandon godoc
// @Summary 放弃测验
// @Description 丢弃当前会话，幂等操作
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/quiz [delete]
func (c *QuizController) Abandon(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.QuizService.Abandon(ctx.Request.Context(), user.UserID, ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"abandoned": true})
}

// respondError 将测验领域错误映射为统一响应
func (c *QuizController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrQuizUnavailable),
		errors.Is(err, util.ErrMissingAnswer),
		errors.Is(err, util.ErrAlreadyAtFirstQuestion),
		errors.Is(err, util.ErrAlreadyAtLastQuestion),
		errors.Is(err, util.ErrNotAtLastQuestion),
		errors.Is(err, util.ErrQuizNotSubmitted),
		errors.Is(err, util.ErrQuizAlreadySubmitted):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrSubmitInProgress):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
