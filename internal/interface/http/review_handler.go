package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/pkg/response"
	"github.com/khadamatapp/marketplace-api/pkg/validation"
)

type ReviewHandler struct {
	Svc    *app.ReviewService
	Logger *logrus.Logger
}

func NewReviewHandler(svc *app.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Svc: svc, Logger: logger}
}

type createReviewRequest struct {
	ServiceID  string `json:"service_id" binding:"required,uuid"`
	ProviderID string `json:"provider_id" binding:"required,uuid"`
	Rating     int    `json:"rating" binding:"required,rating"`
	Comment    string `json:"comment" binding:"required"`
}

// Create stores a review and refreshes the rating aggregates. If an
// aggregate write fails the review still stands: the response is a 201 with
// a stale-aggregates marker, and a heal job is already queued.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rv, err := h.Svc.RecordReview(c.Request.Context(), app.RecordReviewInput{
		UserID:     c.GetString("userID"),
		ServiceID:  req.ServiceID,
		ProviderID: req.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		if errors.Is(err, app.ErrAggregateStale) && rv != nil {
			if h.Logger != nil {
				h.Logger.WithFields(logrus.Fields{
					"review_id":  rv.ID,
					"service_id": rv.ServiceID,
				}).Warn("review stored with stale aggregates")
			}
			response.Success(c, http.StatusCreated, reviewJSON(rv), "review created", gin.H{"aggregates": "stale"})
			return
		}
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, reviewJSON(rv), "review created", nil)
}

// ListByService returns a service's reviews, newest first.
func (h *ReviewHandler) ListByService(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.Svc.ListByService(c.Request.Context(), id, intQuery(c, "limit"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reviewsJSON(list), "service reviews", gin.H{"count": len(list)})
}
