package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
	"github.com/khadamatapp/marketplace-api/pkg/response"
	"github.com/khadamatapp/marketplace-api/pkg/validation"
)

type ServiceHandler struct {
	Svc    *app.CatalogService
	Logger *logrus.Logger
}

func NewServiceHandler(svc *app.CatalogService, logger *logrus.Logger) *ServiceHandler {
	return &ServiceHandler{Svc: svc, Logger: logger}
}

type createServiceRequest struct {
	Title        string   `json:"title" binding:"required"`
	PriceRange   string   `json:"price_range"`
	ImageSrc     string   `json:"image_src"`
	Category     string   `json:"category" binding:"required"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	DeliveryTime string   `json:"delivery_time"`
	Images       []string `json:"images"`
	Features     []string `json:"features"`
	IsPopular    bool     `json:"is_popular"`
}

type updateServiceRequest struct {
	Title        *string   `json:"title"`
	PriceRange   *string   `json:"price_range"`
	ImageSrc     *string   `json:"image_src"`
	Category     *string   `json:"category"`
	Description  *string   `json:"description"`
	Location     *string   `json:"location"`
	DeliveryTime *string   `json:"delivery_time"`
	Images       *[]string `json:"images"`
	Features     *[]string `json:"features"`
	IsPopular    *bool     `json:"is_popular"`
}

func intQuery(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

func (h *ServiceHandler) List(c *gin.Context) {
	filter := repo.ServiceFilter{
		Category:    c.Query("category"),
		PopularOnly: c.Query("popular") == "true",
		Limit:       intQuery(c, "limit"),
	}
	list, err := h.Svc.ListServices(c.Request.Context(), filter)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, servicesJSON(list), "services", gin.H{"count": len(list)})
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	svc, provider, reviews, err := h.Svc.ServiceDetail(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := serviceJSON(svc)
	if provider != nil {
		out["provider"] = providerJSON(provider)
	}
	out["reviews"] = reviewsJSON(reviews)
	response.Success(c, http.StatusOK, out, "service", nil)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	svc, err := h.Svc.CreateService(c.Request.Context(), c.GetString("userID"), app.CreateServiceInput{
		Title:        req.Title,
		PriceRange:   req.PriceRange,
		ImageSrc:     req.ImageSrc,
		Category:     req.Category,
		Description:  req.Description,
		Location:     req.Location,
		DeliveryTime: req.DeliveryTime,
		Images:       req.Images,
		Features:     req.Features,
		IsPopular:    req.IsPopular,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, serviceJSON(svc), "service created", nil)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	svc, err := h.Svc.UpdateService(c.Request.Context(), id, c.GetString("userID"), repo.ServiceUpdate{
		Title:        req.Title,
		PriceRange:   req.PriceRange,
		ImageSrc:     req.ImageSrc,
		Category:     req.Category,
		Description:  req.Description,
		Location:     req.Location,
		DeliveryTime: req.DeliveryTime,
		Images:       req.Images,
		Features:     req.Features,
		IsPopular:    req.IsPopular,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, serviceJSON(svc), "service updated", nil)
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteService(c.Request.Context(), id, c.GetString("userID")); err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "service deleted", nil)
}

// Search queries the Elasticsearch index.
func (h *ServiceHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	hits, err := h.Svc.SearchServices(c.Request.Context(), q, intQuery(c, "limit"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("service search failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
