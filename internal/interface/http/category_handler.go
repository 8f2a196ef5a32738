package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
	"github.com/khadamatapp/marketplace-api/pkg/response"
	"github.com/khadamatapp/marketplace-api/pkg/validation"
)

type CategoryHandler struct {
	Svc    *app.CatalogService
	Logger *logrus.Logger
}

func NewCategoryHandler(svc *app.CatalogService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{Svc: svc, Logger: logger}
}

type createCategoryRequest struct {
	Slug          string `json:"slug" binding:"required,lowercase"`
	Title         string `json:"title" binding:"required"`
	TitleAr       string `json:"title_ar"`
	Description   string `json:"description"`
	DescriptionAr string `json:"description_ar"`
	ImageSrc      string `json:"image_src"`
}

type updateCategoryRequest struct {
	Title         *string `json:"title"`
	TitleAr       *string `json:"title_ar"`
	Description   *string `json:"description"`
	DescriptionAr *string `json:"description_ar"`
	ImageSrc      *string `json:"image_src"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.Svc.ListCategories(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categoriesJSON(cats), "categories", gin.H{"count": len(cats)})
}

func (h *CategoryHandler) Get(c *gin.Context) {
	cat, err := h.Svc.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	svcs, err := h.Svc.ListServices(c.Request.Context(), repo.ServiceFilter{Category: cat.Slug})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := categoryJSON(cat)
	out["services"] = servicesJSON(svcs)
	response.Success(c, http.StatusOK, out, "category", nil)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cat := &entity.Category{
		Slug:          req.Slug,
		Title:         req.Title,
		TitleAr:       req.TitleAr,
		Description:   req.Description,
		DescriptionAr: req.DescriptionAr,
		ImageSrc:      req.ImageSrc,
	}
	if err := h.Svc.CreateCategory(c.Request.Context(), cat); err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, categoryJSON(cat), "category created", nil)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cat, err := h.Svc.UpdateCategory(c.Request.Context(), c.Param("slug"), repo.CategoryUpdate{
		Title:         req.Title,
		TitleAr:       req.TitleAr,
		Description:   req.Description,
		DescriptionAr: req.DescriptionAr,
		ImageSrc:      req.ImageSrc,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categoryJSON(cat), "category updated", nil)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteCategory(c.Request.Context(), c.Param("slug")); err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "category deleted", nil)
}
