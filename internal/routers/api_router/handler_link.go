package api_router

import (
	"github.com/petalpost/proposal-link-service/internal/app"
	"github.com/petalpost/proposal-link-service/internal/domain"
	"github.com/petalpost/proposal-link-service/internal/dto"
	pkgapp "github.com/petalpost/proposal-link-service/pkg/app"
	"github.com/petalpost/proposal-link-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// LinkHandler 提案链接 API 路由处理器
// Uses App Container to inject dependencies
// 使用 App Container 注入依赖
type LinkHandler struct {
	*Handler
}

// NewLinkHandler 创建 LinkHandler 实例
func NewLinkHandler(a *app.App) *LinkHandler {
	return &LinkHandler{
		Handler: NewHandler(a),
	}
}

// requestMeta 提取请求来源上下文，只存档不回显
func requestMeta(c *gin.Context) domain.RequestMeta {
	return domain.RequestMeta{
		UserAgent: c.Request.UserAgent(),
		IP:        pkgapp.GetRequestIP(c),
	}
}

// Create creates a proposal link
// @Summary Create proposal link
// @Description Create a personalized proposal page behind a fresh unguessable short link
// @Tags Link
// @Accept json
// @Produce json
// @Param params body dto.LinkCreateRequest true "Link Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkCreateResponse} "Success"
// @Router /api/links [post]
func (h *LinkHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkCreateRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	res, err := h.App.LinkService.Create(c.Request.Context(), params, requestMeta(c))
	if err != nil {
		if cObj, ok := err.(*code.Code); ok {
			response.ToResponse(cObj)
		} else {
			response.ToResponse(code.Failed.WithDetails(err.Error()))
		}
		return
	}

	response.ToResponse(code.Success.WithData(res))
}

// Get retrieves the proposal page payload
// @Summary Get proposal link
// @Description Retrieve the public view of a link; every retrieval counts as a view
// @Tags Link
// @Produce json
// @Param slug path string true "Link slug"
// @Success 200 {object} pkgapp.Res{data=dto.LinkViewResponse} "Success"
// @Router /api/links/{slug} [get]
func (h *LinkHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	res, err := h.App.LinkService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if cObj, ok := err.(*code.Code); ok {
			response.ToResponse(cObj)
		} else {
			response.ToResponse(code.Failed.WithDetails(err.Error()))
		}
		return
	}

	response.ToResponse(code.Success.WithData(res))
}

// GetStatus retrieves the answer status
// @Summary Get link answer status
// @Description Poll the answer status of a link without affecting its view count
// @Tags Link
// @Produce json
// @Param slug path string true "Link slug"
// @Success 200 {object} pkgapp.Res{data=dto.LinkStatusResponse} "Success"
// @Router /api/links/{slug}/status [get]
func (h *LinkHandler) GetStatus(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	res, err := h.App.LinkService.GetStatus(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if cObj, ok := err.(*code.Code); ok {
			response.ToResponse(cObj)
		} else {
			response.ToResponse(code.Failed.WithDetails(err.Error()))
		}
		return
	}

	response.ToResponse(code.Success.WithData(res))
}

// SubmitAnswer records the recipient's final answer
// @Summary Submit link answer
// @Description Record the one-time answer; once answered the decision is final
// @Tags Link
// @Accept json
// @Produce json
// @Param slug path string true "Link slug"
// @Param params body dto.LinkAnswerRequest true "Answer Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkAnswerResponse} "Success"
// @Router /api/links/{slug}/answer [post]
func (h *LinkHandler) SubmitAnswer(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.LinkAnswerRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	res, err := h.App.LinkService.SubmitAnswer(c.Request.Context(), c.Param("slug"), params, requestMeta(c))
	if err != nil {
		if cObj, ok := err.(*code.Code); ok {
			response.ToResponse(cObj)
		} else {
			response.ToResponse(code.Failed.WithDetails(err.Error()))
		}
		return
	}

	response.ToResponse(code.Success.WithData(res))
}
