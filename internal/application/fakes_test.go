package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
)

// In-memory repository fakes. Each write-path fake has a fail switch so
// tests can force storage errors at specific stages.

type fakeUserRepo struct {
	users  map[string]*entity.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(u *entity.User) error {
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) Update(u *entity.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}

type fakeProviderRepo struct {
	providers      map[string]*entity.Provider
	nextID         int
	failAggregates bool
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{providers: map[string]*entity.Provider{}}
}

func (f *fakeProviderRepo) Create(p *entity.Provider) error {
	for _, ex := range f.providers {
		if ex.UserID == p.UserID {
			return repo.ErrDuplicate
		}
	}
	f.nextID++
	p.ID = fmt.Sprintf("prov-%d", f.nextID)
	f.providers[p.ID] = p
	return nil
}

func (f *fakeProviderRepo) GetByID(id string) (*entity.Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProviderRepo) GetByUserID(userID string) (*entity.Provider, error) {
	for _, p := range f.providers {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProviderRepo) List(filter repo.ProviderFilter) ([]*entity.Provider, error) {
	out := []*entity.Provider{}
	for _, p := range f.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

func (f *fakeProviderRepo) Update(id string, upd repo.ProviderUpdate) (*entity.Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	return p, nil
}

func (f *fakeProviderRepo) UpdateAggregates(id string, rating float64, count int) error {
	if f.failAggregates {
		return errors.New("aggregate write refused")
	}
	p, ok := f.providers[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.Rating = rating
	p.ReviewCount = count
	return nil
}

type fakeServiceRepo struct {
	services       map[string]*entity.Service
	nextID         int
	failAggregates bool
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: map[string]*entity.Service{}}
}

func (f *fakeServiceRepo) Create(s *entity.Service) error {
	f.nextID++
	s.ID = fmt.Sprintf("svc-%d", f.nextID)
	f.services[s.ID] = s
	return nil
}

func (f *fakeServiceRepo) GetByID(id string) (*entity.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s, nil
}

func (f *fakeServiceRepo) List(filter repo.ServiceFilter) ([]*entity.Service, error) {
	out := []*entity.Service{}
	for _, s := range f.services {
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.PopularOnly && !s.IsPopular {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

func (f *fakeServiceRepo) ListByProvider(providerID string, limit int) ([]*entity.Service, error) {
	out := []*entity.Service{}
	for _, s := range f.services {
		if s.ProviderID == providerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) Update(id string, upd repo.ServiceUpdate) (*entity.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if upd.Title != nil {
		s.Title = *upd.Title
	}
	if upd.Description != nil {
		s.Description = *upd.Description
	}
	return s, nil
}

func (f *fakeServiceRepo) Delete(id string) error {
	if _, ok := f.services[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.services, id)
	return nil
}

func (f *fakeServiceRepo) UpdateAggregates(id string, rating float64, count int) error {
	if f.failAggregates {
		return errors.New("aggregate write refused")
	}
	s, ok := f.services[id]
	if !ok {
		return repo.ErrNotFound
	}
	s.Rating = rating
	s.ReviewCount = count
	return nil
}

type fakeReviewRepo struct {
	reviews []*entity.Review
	nextID  int
}

func newFakeReviewRepo() *fakeReviewRepo { return &fakeReviewRepo{} }

func (f *fakeReviewRepo) Create(r *entity.Review) error {
	f.nextID++
	r.ID = fmt.Sprintf("rev-%d", f.nextID)
	r.CreatedAt = time.Now()
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeReviewRepo) ListByService(serviceID string) ([]*entity.Review, error) {
	out := []*entity.Review{}
	for _, r := range f.reviews {
		if r.ServiceID == serviceID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListByProvider(providerID string) ([]*entity.Review, error) {
	out := []*entity.Review{}
	for _, r := range f.reviews {
		if r.ProviderID == providerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListLatestByService(serviceID string, limit int) ([]*entity.Review, error) {
	out, _ := f.ListByService(serviceID)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeReviewRepo) ListLatestByProvider(providerID string, limit int) ([]*entity.Review, error) {
	out, _ := f.ListByProvider(providerID)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeReviewRepo) DeleteByService(serviceID string) (int64, error) {
	kept := f.reviews[:0]
	var removed int64
	for _, r := range f.reviews {
		if r.ServiceID == serviceID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.reviews = kept
	return removed, nil
}

type fakeOrderRepo struct {
	orders map[string]*entity.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*entity.Order{}}
}

func (f *fakeOrderRepo) Create(o *entity.Order) error {
	f.nextID++
	o.ID = fmt.Sprintf("order-%d", f.nextID)
	o.CreatedAt = time.Now()
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListByUser(userID string, status entity.OrderStatus) ([]*entity.Order, error) {
	out := []*entity.Order{}
	for _, o := range f.orders {
		if o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrderRepo) Update(id string, upd repo.OrderUpdate) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	if upd.Requirements != nil {
		o.Requirements = *upd.Requirements
	}
	if upd.DeliveryDate != nil {
		o.DeliveryDate = upd.DeliveryDate
	}
	return o, nil
}

type fakeCategoryRepo struct {
	categories map[string]*entity.Category
	nextID     int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]*entity.Category{}}
}

func (f *fakeCategoryRepo) Create(c *entity.Category) error {
	if _, ok := f.categories[c.Slug]; ok {
		return repo.ErrDuplicate
	}
	f.nextID++
	c.ID = fmt.Sprintf("cat-%d", f.nextID)
	f.categories[c.Slug] = c
	return nil
}

func (f *fakeCategoryRepo) GetBySlug(slug string) (*entity.Category, error) {
	c, ok := f.categories[slug]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategoryRepo) List() ([]*entity.Category, error) {
	out := []*entity.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeCategoryRepo) UpdateBySlug(slug string, upd repo.CategoryUpdate) (*entity.Category, error) {
	c, ok := f.categories[slug]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	return c, nil
}

func (f *fakeCategoryRepo) DeleteBySlug(slug string) error {
	if _, ok := f.categories[slug]; !ok {
		return repo.ErrNotFound
	}
	delete(f.categories, slug)
	return nil
}

// fakePublisher records published payloads as raw JSON.
type fakePublisher struct {
	published [][]byte
	fail      bool
}

func (f *fakePublisher) PublishJSON(ctx context.Context, body any) error {
	if f.fail {
		return errors.New("broker down")
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	f.published = append(f.published, b)
	return nil
}
