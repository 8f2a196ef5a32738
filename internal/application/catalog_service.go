package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
	"github.com/khadamatapp/marketplace-api/pkg/helpers"
)

const (
	categoriesCacheKey = "cache:categories"
	categoriesCacheTTL = 5 * time.Minute

	detailReviewLimit  = 5
	detailServiceLimit = 5
)

// CatalogService covers the public catalog: categories, services and
// provider profiles. Service and provider mutations are restricted to the
// user owning the provider profile.
type CatalogService struct {
	Categories repo.CategoryRepository
	Services   repo.ServiceRepository
	Providers  repo.ProviderRepository
	Reviews    repo.ReviewRepository
	Redis      *redis.Client
	Logger     *logrus.Logger
	ES         *elasticsearch.Client
	ESIndex    string
	ReaggPub   Publisher
}

func NewCatalogService(categories repo.CategoryRepository, services repo.ServiceRepository, providers repo.ProviderRepository, reviews repo.ReviewRepository, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, reaggPub Publisher) *CatalogService {
	return &CatalogService{
		Categories: categories,
		Services:   services,
		Providers:  providers,
		Reviews:    reviews,
		Redis:      rdb,
		Logger:     logger,
		ES:         es,
		ESIndex:    esIndex,
		ReaggPub:   reaggPub,
	}
}

// ListCategories serves from the Redis cache when possible.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	if s.Redis != nil {
		var cached []*entity.Category
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, categoriesCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}
	cats, err := s.Categories.List()
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, categoriesCacheKey, cats, categoriesCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("category cache write failed")
		}
	}
	return cats, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*entity.Category, error) {
	return s.Categories.GetBySlug(slug)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *entity.Category) error {
	if err := s.Categories.Create(c); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, slug string, upd repo.CategoryUpdate) (*entity.Category, error) {
	c, err := s.Categories.UpdateBySlug(slug, upd)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.Categories.DeleteBySlug(slug); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, categoriesCacheKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("category cache invalidation failed")
	}
}

func (s *CatalogService) ListServices(ctx context.Context, f repo.ServiceFilter) ([]*entity.Service, error) {
	return s.Services.List(f)
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*entity.Service, error) {
	return s.Services.GetByID(id)
}

// ServiceDetail returns a service with its provider profile and the latest
// reviews. A missing provider row does not fail the detail view.
func (s *CatalogService) ServiceDetail(ctx context.Context, id string) (*entity.Service, *entity.Provider, []*entity.Review, error) {
	svc, err := s.Services.GetByID(id)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := s.Providers.GetByID(svc.ProviderID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, nil, nil, err
	}
	reviews, err := s.Reviews.ListLatestByService(id, detailReviewLimit)
	if err != nil {
		return nil, nil, nil, err
	}
	return svc, p, reviews, nil
}

// ProviderDetail returns a provider with their top services and latest
// reviews.
func (s *CatalogService) ProviderDetail(ctx context.Context, id string) (*entity.Provider, []*entity.Service, []*entity.Review, error) {
	p, err := s.Providers.GetByID(id)
	if err != nil {
		return nil, nil, nil, err
	}
	services, err := s.Services.ListByProvider(id, detailServiceLimit)
	if err != nil {
		return nil, nil, nil, err
	}
	reviews, err := s.Reviews.ListLatestByProvider(id, detailReviewLimit)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, services, reviews, nil
}

type CreateServiceInput struct {
	Title        string
	PriceRange   string
	ImageSrc     string
	Category     string
	Description  string
	Location     string
	DeliveryTime string
	Images       []string
	Features     []string
	IsPopular    bool
}

// CreateService creates an offering under the acting user's own provider
// profile. ProviderID and ProviderName come from that profile, never from
// the request.
func (s *CatalogService) CreateService(ctx context.Context, actingUserID string, in CreateServiceInput) (*entity.Service, error) {
	p, err := s.Providers.GetByUserID(actingUserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	svc := &entity.Service{
		ProviderID:   p.ID,
		Title:        in.Title,
		ProviderName: p.Name,
		PriceRange:   in.PriceRange,
		ImageSrc:     in.ImageSrc,
		Category:     in.Category,
		Description:  in.Description,
		Location:     in.Location,
		DeliveryTime: in.DeliveryTime,
		Images:       in.Images,
		Features:     in.Features,
		IsPopular:    in.IsPopular,
	}
	if err := s.Services.Create(svc); err != nil {
		return nil, err
	}
	_ = s.indexService(ctx, svc)
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id, actingUserID string, upd repo.ServiceUpdate) (*entity.Service, error) {
	if _, err := s.ownsService(id, actingUserID); err != nil {
		return nil, err
	}
	svc, err := s.Services.Update(id, upd)
	if err != nil {
		return nil, err
	}
	_ = s.indexService(ctx, svc)
	return svc, nil
}

// DeleteService removes a service together with its reviews, then recomputes
// the provider aggregate from the surviving reviews. If that write fails the
// delete still stands and a heal job is queued. The ES document is removed
// best-effort.
func (s *CatalogService) DeleteService(ctx context.Context, id, actingUserID string) error {
	svc, err := s.ownsService(id, actingUserID)
	if err != nil {
		return err
	}
	removed, err := s.Reviews.DeleteByService(id)
	if err != nil {
		return err
	}
	if err := s.Services.Delete(id); err != nil {
		return err
	}
	if s.Logger != nil && removed > 0 {
		s.Logger.WithFields(logrus.Fields{"service_id": id, "reviews": removed}).Info("cascaded review delete")
	}
	s.reaggregateProvider(ctx, svc.ProviderID)
	s.deleteServiceIndex(ctx, id)
	return nil
}

func (s *CatalogService) reaggregateProvider(ctx context.Context, providerID string) {
	err := func() error {
		reviews, err := s.Reviews.ListByProvider(providerID)
		if err != nil {
			return err
		}
		avg, count := aggregate(reviews)
		return s.Providers.UpdateAggregates(providerID, avg, count)
	}()
	if err == nil {
		return
	}
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("provider_id", providerID).Error("provider reaggregation failed, heal job queued")
	}
	if s.ReaggPub != nil {
		job := ReaggregateJob{ProviderID: providerID}
		if pErr := s.ReaggPub.PublishJSON(ctx, job); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("provider_id", providerID).Warn("reaggregate enqueue failed")
		}
	}
}

func (s *CatalogService) ownsService(serviceID, actingUserID string) (*entity.Service, error) {
	svc, err := s.Services.GetByID(serviceID)
	if err != nil {
		return nil, err
	}
	p, err := s.Providers.GetByID(svc.ProviderID)
	if err != nil {
		return nil, err
	}
	if p.UserID != actingUserID {
		return nil, ErrForbidden
	}
	return svc, nil
}

func (s *CatalogService) ListProviders(ctx context.Context, f repo.ProviderFilter) ([]*entity.Provider, error) {
	return s.Providers.List(f)
}

func (s *CatalogService) GetProvider(ctx context.Context, id string) (*entity.Provider, error) {
	return s.Providers.GetByID(id)
}

// CreateProvider creates the acting user's provider profile. One profile
// per user; a second attempt surfaces the uniqueness violation.
func (s *CatalogService) CreateProvider(ctx context.Context, actingUserID string, p *entity.Provider) error {
	p.UserID = actingUserID
	return s.Providers.Create(p)
}

func (s *CatalogService) UpdateProvider(ctx context.Context, id, actingUserID string, upd repo.ProviderUpdate) (*entity.Provider, error) {
	p, err := s.Providers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p.UserID != actingUserID {
		return nil, ErrForbidden
	}
	return s.Providers.Update(id, upd)
}

// ProviderServices lists a provider's offerings, best rated first.
func (s *CatalogService) ProviderServices(ctx context.Context, providerID string, limit int) ([]*entity.Service, error) {
	if _, err := s.Providers.GetByID(providerID); err != nil {
		return nil, err
	}
	return s.Services.ListByProvider(providerID, limit)
}

func (s *CatalogService) indexService(ctx context.Context, svc *entity.Service) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":            svc.ID,
		"provider_id":   svc.ProviderID,
		"title":         svc.Title,
		"provider_name": svc.ProviderName,
		"category":      svc.Category,
		"description":   svc.Description,
		"location":      svc.Location,
		"rating":        svc.Rating,
		"review_count":  svc.ReviewCount,
		"is_popular":    svc.IsPopular,
		"updated_at":    svc.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: svc.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("service_id", svc.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("service_id", svc.ID).Warn("es index response error")
	}
	return nil
}

func (s *CatalogService) deleteServiceIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("service_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchServices queries the Elasticsearch index across title, description
// and category, title weighted highest.
func (s *CatalogService) SearchServices(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
