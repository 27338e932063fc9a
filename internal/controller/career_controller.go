package controller

import (
	"errors"
	"finlit_backend/internal/service"
	"finlit_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CareerController struct {
	CareerService *service.CareerService
}

func NewCareerController(careerService *service.CareerService) *CareerController {
	return &CareerController{CareerService: careerService}
}

// GetCareers godoc
// @Summary 职业列表
// @Description 按分类获取职业介绍
// @Tags 职业
// @Produce json
// @Param category query string false "职业分类"
// @Success 200 {object} util.Response
// @Router /api/careers [get]
func (c *CareerController) GetCareers(ctx *gin.Context) {
	careers, err := c.CareerService.GetCareers(ctx.Query("category"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, careers)
}

// GetCareer godoc
// @Summary 职业详情
// @Tags 职业
// @Produce json
// @Param id path int true "职业ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "职业不存在"
// @Router /api/careers/{id} [get]
func (c *CareerController) GetCareer(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "Invalid career id")
		return
	}

	career, err := c.CareerService.GetCareer(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, career)
}

// GetCostOfLiving godoc
// @Summary 生活成本
// @Description 按城市或地区查询生活成本明细与月度合计
// @Tags 职业
// @Produce json
// @Param city query string false "城市"
// @Param region query string false "地区"
// @Success 200 {object} util.Response
// @Router /api/cost-of-living [get]
func (c *CareerController) GetCostOfLiving(ctx *gin.Context) {
	entries, err := c.CareerService.GetCostOfLiving(ctx.Query("city"), ctx.Query("region"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
