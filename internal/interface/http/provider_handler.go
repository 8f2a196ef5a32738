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

type ProviderHandler struct {
	Catalog   *app.CatalogService
	ReviewSvc *app.ReviewService
	Logger    *logrus.Logger
}

func NewProviderHandler(catalog *app.CatalogService, reviews *app.ReviewService, logger *logrus.Logger) *ProviderHandler {
	return &ProviderHandler{Catalog: catalog, ReviewSvc: reviews, Logger: logger}
}

type createProviderRequest struct {
	Name         string   `json:"name" binding:"required"`
	Image        string   `json:"image"`
	CoverImage   string   `json:"cover_image"`
	Location     string   `json:"location"`
	Categories   []string `json:"categories"`
	Description  string   `json:"description"`
	ContactEmail string   `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string   `json:"contact_phone" binding:"omitempty,phone"`
	Website      string   `json:"website" binding:"omitempty,url"`
	WorkingHours string   `json:"working_hours"`
	Gallery      []string `json:"gallery"`
}

type updateProviderRequest struct {
	Name              *string   `json:"name"`
	Image             *string   `json:"image"`
	CoverImage        *string   `json:"cover_image"`
	Location          *string   `json:"location"`
	Categories        *[]string `json:"categories"`
	Description       *string   `json:"description"`
	ContactEmail      *string   `json:"contact_email" binding:"omitempty,email"`
	ContactPhone      *string   `json:"contact_phone"`
	Website           *string   `json:"website"`
	WorkingHours      *string   `json:"working_hours"`
	Gallery           *[]string `json:"gallery"`
	CompletedProjects *int      `json:"completed_projects"`
}

func (h *ProviderHandler) List(c *gin.Context) {
	filter := repo.ProviderFilter{
		Category:     c.Query("category"),
		VerifiedOnly: c.Query("verified") == "true",
		Limit:        intQuery(c, "limit"),
	}
	list, err := h.Catalog.ListProviders(c.Request.Context(), filter)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, providersJSON(list), "providers", gin.H{"count": len(list)})
}

func (h *ProviderHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, services, reviews, err := h.Catalog.ProviderDetail(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := providerJSON(p)
	out["services"] = servicesJSON(services)
	out["reviews"] = reviewsJSON(reviews)
	response.Success(c, http.StatusOK, out, "provider", nil)
}

func (h *ProviderHandler) Create(c *gin.Context) {
	var req createProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p := &entity.Provider{
		Name:         req.Name,
		Image:        req.Image,
		CoverImage:   req.CoverImage,
		Location:     req.Location,
		Categories:   req.Categories,
		Description:  req.Description,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Website:      req.Website,
		WorkingHours: req.WorkingHours,
		Gallery:      req.Gallery,
	}
	if err := h.Catalog.CreateProvider(c.Request.Context(), c.GetString("userID"), p); err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, providerJSON(p), "provider created", nil)
}

func (h *ProviderHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Catalog.UpdateProvider(c.Request.Context(), id, c.GetString("userID"), repo.ProviderUpdate{
		Name:              req.Name,
		Image:             req.Image,
		CoverImage:        req.CoverImage,
		Location:          req.Location,
		Categories:        req.Categories,
		Description:       req.Description,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
		Website:           req.Website,
		WorkingHours:      req.WorkingHours,
		Gallery:           req.Gallery,
		CompletedProjects: req.CompletedProjects,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, providerJSON(p), "provider updated", nil)
}

// Services lists a provider's offerings.
func (h *ProviderHandler) Services(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.Catalog.ProviderServices(c.Request.Context(), id, intQuery(c, "limit"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, servicesJSON(list), "provider services", gin.H{"count": len(list)})
}

// Reviews lists a provider's reviews across all of its services.
func (h *ProviderHandler) Reviews(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.ReviewSvc.ListByProvider(c.Request.Context(), id, intQuery(c, "limit"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reviewsJSON(list), "provider reviews", gin.H{"count": len(list)})
}
