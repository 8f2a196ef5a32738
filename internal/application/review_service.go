package application

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
)

// ReviewService records reviews and maintains the denormalized rating
// aggregates on services and providers.
type ReviewService struct {
	Reviews   repo.ReviewRepository
	Services  repo.ServiceRepository
	Providers repo.ProviderRepository
	Logger    *logrus.Logger
	ReaggPub  Publisher
}

func NewReviewService(reviews repo.ReviewRepository, services repo.ServiceRepository, providers repo.ProviderRepository, logger *logrus.Logger, reaggPub Publisher) *ReviewService {
	return &ReviewService{
		Reviews:   reviews,
		Services:  services,
		Providers: providers,
		Logger:    logger,
		ReaggPub:  reaggPub,
	}
}

type RecordReviewInput struct {
	UserID     string
	ServiceID  string
	ProviderID string
	Rating     int
	Comment    string
}

// RecordReview validates and stores a review, then recomputes the service
// aggregate followed by the provider aggregate, both from the full review
// set. The three writes are not atomic: if an aggregate write fails after
// the review row exists, the review is returned together with
// ErrAggregateStale and a re-aggregation job is queued to heal the numbers.
func (s *ReviewService) RecordReview(ctx context.Context, in RecordReviewInput) (*entity.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if in.Comment == "" {
		return nil, ErrEmptyComment
	}

	svc, err := s.Services.GetByID(in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != in.ProviderID {
		return nil, ErrProviderMismatch
	}
	if _, err := s.Providers.GetByID(svc.ProviderID); err != nil {
		return nil, err
	}

	rv := &entity.Review{
		UserID:     in.UserID,
		ServiceID:  svc.ID,
		ProviderID: svc.ProviderID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}
	if err := s.Reviews.Create(rv); err != nil {
		return nil, err
	}

	if err := s.recomputeService(svc.ID); err != nil {
		return rv, s.stale(ctx, svc.ID, svc.ProviderID, "service", err)
	}
	if err := s.recomputeProvider(svc.ProviderID); err != nil {
		return rv, s.stale(ctx, svc.ID, svc.ProviderID, "provider", err)
	}
	return rv, nil
}

func (s *ReviewService) stale(ctx context.Context, serviceID, providerID, stage string, cause error) error {
	if s.Logger != nil {
		s.Logger.WithError(cause).WithFields(logrus.Fields{
			"service_id":  serviceID,
			"provider_id": providerID,
			"stage":       stage,
		}).Error("aggregate update failed, review kept")
	}
	if s.ReaggPub != nil {
		job := ReaggregateJob{ServiceID: serviceID, ProviderID: providerID}
		if err := s.ReaggPub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("service_id", serviceID).Warn("reaggregate enqueue failed")
		}
	}
	return fmt.Errorf("%s aggregate: %w", stage, ErrAggregateStale)
}

// Reaggregate recomputes both aggregates from the review table. It is
// idempotent; the worker calls it for queued heal jobs.
func (s *ReviewService) Reaggregate(ctx context.Context, job ReaggregateJob) error {
	if job.ServiceID != "" {
		if err := s.recomputeService(job.ServiceID); err != nil {
			return err
		}
	}
	if job.ProviderID != "" {
		if err := s.recomputeProvider(job.ProviderID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReviewService) recomputeService(serviceID string) error {
	reviews, err := s.Reviews.ListByService(serviceID)
	if err != nil {
		return err
	}
	avg, count := aggregate(reviews)
	return s.Services.UpdateAggregates(serviceID, avg, count)
}

func (s *ReviewService) recomputeProvider(providerID string) error {
	reviews, err := s.Reviews.ListByProvider(providerID)
	if err != nil {
		return err
	}
	avg, count := aggregate(reviews)
	return s.Providers.UpdateAggregates(providerID, avg, count)
}

// aggregate returns the average rating rounded to one decimal and the review
// count. An empty set yields (0, 0).
func aggregate(reviews []*entity.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10, len(reviews)
}

// ListByService returns a service's reviews, newest first, after checking
// the service exists.
func (s *ReviewService) ListByService(ctx context.Context, serviceID string, limit int) ([]*entity.Review, error) {
	if _, err := s.Services.GetByID(serviceID); err != nil {
		return nil, err
	}
	if limit > 0 {
		return s.Reviews.ListLatestByService(serviceID, limit)
	}
	return s.Reviews.ListByService(serviceID)
}

// ListByProvider returns a provider's reviews across all services, newest first.
func (s *ReviewService) ListByProvider(ctx context.Context, providerID string, limit int) ([]*entity.Review, error) {
	if _, err := s.Providers.GetByID(providerID); err != nil {
		return nil, err
	}
	if limit > 0 {
		return s.Reviews.ListLatestByProvider(providerID, limit)
	}
	return s.Reviews.ListByProvider(providerID)
}
