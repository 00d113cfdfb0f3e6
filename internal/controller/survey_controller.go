package controller

import (
	"fmt"
	"net/http"
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	Service *service.SurveyService
	Export  *service.ExportService
}

func NewSurveyController(svc *service.SurveyService, export *service.ExportService) *SurveyController {
	return &SurveyController{Service: svc, Export: export}
}

// @Summary 创建问卷
// @Tags 问卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateSurveyReq true "问卷信息"
// @Success 201 {object} util.IDResponse
// @Failure 400 {object} util.ErrorResponse
// @Router /surveys [post]
func (c *SurveyController) CreateSurvey(ctx *gin.Context) {
	var req service.CreateSurveyReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	id, err := c.Service.CreateSurvey(ctx.Request.Context(), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, util.IDResponse{ID: id})
}

// @Summary 获取问卷列表
// @Tags 问卷模块
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} model.Survey
// @Router /surveys [get]
func (c *SurveyController) ListSurveys(ctx *gin.Context) {
	surveys, err := c.Service.ListSurveys(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, surveys)
}

// @Summary 获取问卷详情
// @Tags 问卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} model.Survey
// @Failure 404 {object} util.ErrorResponse
// @Router /surveys/{id} [get]
func (c *SurveyController) GetSurvey(ctx *gin.Context) {
	survey, err := c.Service.GetSurvey(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, survey)
}

// @Summary 删除问卷（连同题目与答卷）
// @Tags 问卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} util.MessageResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /surveys/{id} [delete]
func (c *SurveyController) DeleteSurvey(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := c.Service.DeleteSurvey(ctx.Request.Context(), id); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.MessageResponse{Message: fmt.Sprintf("Survey %s deleted successfully", id)})
}

// @Summary 提交答卷
// @Tags 答卷模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Param body body service.SubmitResponseReq true "答卷"
// @Success 201 {object} util.IDResponse
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 409 {object} util.ErrorResponse
// @Router /surveys/{id}/response [post]
func (c *SurveyController) SubmitResponse(ctx *gin.Context) {
	var req service.SubmitResponseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	id, err := c.Service.SubmitResponse(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, util.IDResponse{ID: id})
}

// @Summary 获取问卷的全部答卷
// @Tags 答卷模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {array} model.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /surveys/{id}/responses [get]
func (c *SurveyController) ListResponses(ctx *gin.Context) {
	responses, err := c.Service.ListResponses(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, responses)
}

// @Summary 获取问卷结果与逐题统计
// @Tags 结果模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} service.SurveyResults
// @Failure 404 {object} util.ErrorResponse
// @Router /surveys/{id}/results [get]
func (c *SurveyController) GetResults(ctx *gin.Context) {
	results, err := c.Service.GetResults(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, results)
}

// @Summary 导出问卷结果 CSV
// @Tags 结果模块
// @Produce text/csv
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {file} file
// @Failure 404 {object} util.ErrorResponse
// @Router /surveys/{id}/results/export [get]
func (c *SurveyController) ExportResults(ctx *gin.Context) {
	id := ctx.Param("id")

	data, err := c.Export.RenderCSV(ctx.Request.Context(), id)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="survey-%s-results.csv"`, id))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// @Summary 归档问卷结果到对象存储
// @Tags 结果模块
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 201 {object} service.ArchiveResult
// @Failure 404 {object} util.ErrorResponse
// @Router /surveys/{id}/results/archive [post]
func (c *SurveyController) ArchiveResults(ctx *gin.Context) {
	result, err := c.Export.Archive(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, result)
}
