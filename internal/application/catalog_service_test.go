package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
)

type catalogFixture struct {
	svc       *app.CatalogService
	services  *fakeServiceRepo
	providers *fakeProviderRepo
	reviews   *fakeReviewRepo
	pub       *fakePublisher
	ownerID   string
	provID    string
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	categories := newFakeCategoryRepo()
	services := newFakeServiceRepo()
	providers := newFakeProviderRepo()
	reviews := newFakeReviewRepo()
	pub := &fakePublisher{}

	p := &entity.Provider{UserID: "owner-1", Name: "Studio"}
	require.NoError(t, providers.Create(p))

	return &catalogFixture{
		svc:       app.NewCatalogService(categories, services, providers, reviews, nil, nil, nil, "", pub),
		services:  services,
		providers: providers,
		reviews:   reviews,
		pub:       pub,
		ownerID:   "owner-1",
		provID:    p.ID,
	}
}

func TestCreateService_BindsToOwnProvider(t *testing.T) {
	f := newCatalogFixture(t)

	svc, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{
		Title:    "Logo design",
		Category: "design",
	})
	require.NoError(t, err)
	assert.Equal(t, f.provID, svc.ProviderID)
	assert.Equal(t, "Studio", svc.ProviderName)
}

func TestCreateService_RequiresProviderProfile(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.CreateService(context.Background(), "customer-1", app.CreateServiceInput{Title: "X"})
	assert.ErrorIs(t, err, app.ErrForbidden)
}

func TestUpdateService_OwnershipEnforced(t *testing.T) {
	f := newCatalogFixture(t)

	svc, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Logo design"})
	require.NoError(t, err)

	title := "New title"
	_, err = f.svc.UpdateService(context.Background(), svc.ID, "stranger", repo.ServiceUpdate{Title: &title})
	assert.ErrorIs(t, err, app.ErrForbidden)

	updated, err := f.svc.UpdateService(context.Background(), svc.ID, f.ownerID, repo.ServiceUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
}

func TestDeleteService_CascadesReviews(t *testing.T) {
	f := newCatalogFixture(t)

	svc, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Logo design"})
	require.NoError(t, err)
	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: svc.ID, ProviderID: f.provID, Rating: 5, Comment: "ok"}))
	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: svc.ID, ProviderID: f.provID, Rating: 3, Comment: "ok"}))

	require.NoError(t, f.svc.DeleteService(context.Background(), svc.ID, f.ownerID))

	_, err = f.services.GetByID(svc.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	left, _ := f.reviews.ListByService(svc.ID)
	assert.Empty(t, left)
}

func TestDeleteService_ReaggregatesProvider(t *testing.T) {
	f := newCatalogFixture(t)

	doomed, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Logo design"})
	require.NoError(t, err)
	survivor, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Brand kit"})
	require.NoError(t, err)

	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: doomed.ID, ProviderID: f.provID, Rating: 5, Comment: "ok"}))
	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: doomed.ID, ProviderID: f.provID, Rating: 5, Comment: "ok"}))
	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: survivor.ID, ProviderID: f.provID, Rating: 3, Comment: "ok"}))
	require.NoError(t, f.providers.UpdateAggregates(f.provID, 4.3, 3))

	require.NoError(t, f.svc.DeleteService(context.Background(), doomed.ID, f.ownerID))

	// Only the surviving service's review counts.
	p, err := f.providers.GetByID(f.provID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.Rating)
	assert.Equal(t, 1, p.ReviewCount)
	assert.Empty(t, f.pub.published)
}

func TestDeleteService_AggregateFailureQueuesHeal(t *testing.T) {
	f := newCatalogFixture(t)

	svc, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Logo design"})
	require.NoError(t, err)
	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: svc.ID, ProviderID: f.provID, Rating: 5, Comment: "ok"}))

	f.providers.failAggregates = true
	require.NoError(t, f.svc.DeleteService(context.Background(), svc.ID, f.ownerID))

	// The delete stands; a heal job covers the stale provider aggregate.
	_, err = f.services.GetByID(svc.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	require.Len(t, f.pub.published, 1)
	var job app.ReaggregateJob
	require.NoError(t, json.Unmarshal(f.pub.published[0], &job))
	assert.Equal(t, f.provID, job.ProviderID)
	assert.Empty(t, job.ServiceID)
}

func TestDeleteService_OwnershipEnforced(t *testing.T) {
	f := newCatalogFixture(t)

	svc, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Logo design"})
	require.NoError(t, err)

	err = f.svc.DeleteService(context.Background(), svc.ID, "stranger")
	assert.ErrorIs(t, err, app.ErrForbidden)
	_, err = f.services.GetByID(svc.ID)
	assert.NoError(t, err)
}

func TestCategoryCRUD(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	cat := &entity.Category{Slug: "design", Title: "Design", TitleAr: "تصميم"}
	require.NoError(t, f.svc.CreateCategory(ctx, cat))
	assert.ErrorIs(t, f.svc.CreateCategory(ctx, &entity.Category{Slug: "design", Title: "Again"}), repo.ErrDuplicate)

	got, err := f.svc.GetCategory(ctx, "design")
	require.NoError(t, err)
	assert.Equal(t, "Design", got.Title)

	title := "Graphic Design"
	updated, err := f.svc.UpdateCategory(ctx, "design", repo.CategoryUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Graphic Design", updated.Title)

	require.NoError(t, f.svc.DeleteCategory(ctx, "design"))
	_, err = f.svc.GetCategory(ctx, "design")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestServiceDetail(t *testing.T) {
	f := newCatalogFixture(t)

	svc, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Logo design"})
	require.NoError(t, err)
	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: svc.ID, ProviderID: f.provID, Rating: 5, Comment: "great"}))

	got, provider, reviews, err := f.svc.ServiceDetail(context.Background(), svc.ID)
	require.NoError(t, err)
	assert.Equal(t, svc.ID, got.ID)
	require.NotNil(t, provider)
	assert.Equal(t, f.provID, provider.ID)
	assert.Len(t, reviews, 1)

	_, _, _, err = f.svc.ServiceDetail(context.Background(), "svc-missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestProviderDetail(t *testing.T) {
	f := newCatalogFixture(t)

	svc, err := f.svc.CreateService(context.Background(), f.ownerID, app.CreateServiceInput{Title: "Logo design"})
	require.NoError(t, err)
	require.NoError(t, f.reviews.Create(&entity.Review{ServiceID: svc.ID, ProviderID: f.provID, Rating: 4, Comment: "good"}))

	p, services, reviews, err := f.svc.ProviderDetail(context.Background(), f.provID)
	require.NoError(t, err)
	assert.Equal(t, f.provID, p.ID)
	assert.Len(t, services, 1)
	assert.Len(t, reviews, 1)
}

func TestUpdateProvider_OwnershipEnforced(t *testing.T) {
	f := newCatalogFixture(t)

	name := "Renamed Studio"
	_, err := f.svc.UpdateProvider(context.Background(), f.provID, "stranger", repo.ProviderUpdate{Name: &name})
	assert.ErrorIs(t, err, app.ErrForbidden)

	p, err := f.svc.UpdateProvider(context.Background(), f.provID, f.ownerID, repo.ProviderUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Studio", p.Name)
}
