package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
	"github.com/khadamatapp/marketplace-api/pkg/response"
)

// pathUUID validates a path parameter as a UUID before any storage lookup.
// A malformed id is a client error, not a missing row.
func pathUUID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid "+name, nil)
		return "", false
	}
	return raw, true
}

// writeDomainError maps service-layer errors onto HTTP statuses. Unknown
// errors become a 500 without leaking internals.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, app.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, repo.ErrDuplicate):
		response.Error[any](c, http.StatusConflict, "already exists", nil)
	case errors.Is(err, app.ErrInvalidRating),
		errors.Is(err, app.ErrEmptyComment),
		errors.Is(err, app.ErrProviderMismatch),
		errors.Is(err, app.ErrInvalidTransition):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"user_type":  u.UserType,
		"phone":      u.Phone,
		"avatar":     u.Avatar,
		"initials":   u.Initials,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

func categoryJSON(c *entity.Category) gin.H {
	return gin.H{
		"id":             c.ID,
		"slug":           c.Slug,
		"title":          c.Title,
		"title_ar":       c.TitleAr,
		"description":    c.Description,
		"description_ar": c.DescriptionAr,
		"image_src":      c.ImageSrc,
		"created_at":     c.CreatedAt,
		"updated_at":     c.UpdatedAt,
	}
}

func providerJSON(p *entity.Provider) gin.H {
	return gin.H{
		"id":                 p.ID,
		"user_id":            p.UserID,
		"name":               p.Name,
		"image":              p.Image,
		"cover_image":        p.CoverImage,
		"rating":             p.Rating,
		"review_count":       p.ReviewCount,
		"location":           p.Location,
		"categories":         p.Categories,
		"is_verified":        p.IsVerified,
		"completed_projects": p.CompletedProjects,
		"description":        p.Description,
		"contact_email":      p.ContactEmail,
		"contact_phone":      p.ContactPhone,
		"website":            p.Website,
		"working_hours":      p.WorkingHours,
		"gallery":            p.Gallery,
		"created_at":         p.CreatedAt,
		"updated_at":         p.UpdatedAt,
	}
}

func serviceJSON(s *entity.Service) gin.H {
	return gin.H{
		"id":            s.ID,
		"provider_id":   s.ProviderID,
		"title":         s.Title,
		"provider_name": s.ProviderName,
		"rating":        s.Rating,
		"review_count":  s.ReviewCount,
		"price_range":   s.PriceRange,
		"image_src":     s.ImageSrc,
		"category":      s.Category,
		"description":   s.Description,
		"location":      s.Location,
		"delivery_time": s.DeliveryTime,
		"images":        s.Images,
		"features":      s.Features,
		"is_popular":    s.IsPopular,
		"created_at":    s.CreatedAt,
		"updated_at":    s.UpdatedAt,
	}
}

func orderJSON(o *entity.Order) gin.H {
	return gin.H{
		"id":             o.ID,
		"user_id":        o.UserID,
		"service_id":     o.ServiceID,
		"provider_id":    o.ProviderID,
		"status":         o.Status,
		"price":          o.Price,
		"payment_status": o.PaymentStatus,
		"requirements":   o.Requirements,
		"delivery_date":  o.DeliveryDate,
		"created_at":     o.CreatedAt,
		"updated_at":     o.UpdatedAt,
	}
}

func reviewJSON(r *entity.Review) gin.H {
	return gin.H{
		"id":          r.ID,
		"user_id":     r.UserID,
		"service_id":  r.ServiceID,
		"provider_id": r.ProviderID,
		"rating":      r.Rating,
		"comment":     r.Comment,
		"created_at":  r.CreatedAt,
		"updated_at":  r.UpdatedAt,
	}
}

func servicesJSON(list []*entity.Service) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, serviceJSON(s))
	}
	return out
}

func providersJSON(list []*entity.Provider) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, p := range list {
		out = append(out, providerJSON(p))
	}
	return out
}

func categoriesJSON(list []*entity.Category) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, c := range list {
		out = append(out, categoryJSON(c))
	}
	return out
}

func ordersJSON(list []*entity.Order) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, o := range list {
		out = append(out, orderJSON(o))
	}
	return out
}

func reviewsJSON(list []*entity.Review) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, r := range list {
		out = append(out, reviewJSON(r))
	}
	return out
}
