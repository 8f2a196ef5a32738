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

type reviewFixture struct {
	svc       *app.ReviewService
	services  *fakeServiceRepo
	providers *fakeProviderRepo
	reviews   *fakeReviewRepo
	pub       *fakePublisher
	serviceID string
	provID    string
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	services := newFakeServiceRepo()
	providers := newFakeProviderRepo()
	reviews := newFakeReviewRepo()
	pub := &fakePublisher{}

	p := &entity.Provider{UserID: "owner-1", Name: "Studio"}
	require.NoError(t, providers.Create(p))
	s := &entity.Service{ProviderID: p.ID, Title: "Logo design"}
	require.NoError(t, services.Create(s))

	return &reviewFixture{
		svc:       app.NewReviewService(reviews, services, providers, nil, pub),
		services:  services,
		providers: providers,
		reviews:   reviews,
		pub:       pub,
		serviceID: s.ID,
		provID:    p.ID,
	}
}

func (f *reviewFixture) record(t *testing.T, rating int) *entity.Review {
	t.Helper()
	rv, err := f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID:     "buyer-1",
		ServiceID:  f.serviceID,
		ProviderID: f.provID,
		Rating:     rating,
		Comment:    "good work",
	})
	require.NoError(t, err)
	return rv
}

func TestRecordReview_UpdatesAggregates(t *testing.T) {
	f := newReviewFixture(t)

	f.record(t, 5)
	f.record(t, 3)
	f.record(t, 4)

	s, err := f.services.GetByID(f.serviceID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Rating)
	assert.Equal(t, 3, s.ReviewCount)

	p, err := f.providers.GetByID(f.provID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.Rating)
	assert.Equal(t, 3, p.ReviewCount)

	f.record(t, 2)
	s, _ = f.services.GetByID(f.serviceID)
	assert.Equal(t, 3.5, s.Rating)
	assert.Equal(t, 4, s.ReviewCount)
}

func TestRecordReview_RoundsToOneDecimal(t *testing.T) {
	f := newReviewFixture(t)

	// 5 + 5 + 4 = 14 / 3 = 4.666... -> 4.7
	f.record(t, 5)
	f.record(t, 5)
	f.record(t, 4)

	s, _ := f.services.GetByID(f.serviceID)
	assert.Equal(t, 4.7, s.Rating)
}

func TestRecordReview_ProviderAggregateSpansServices(t *testing.T) {
	f := newReviewFixture(t)

	other := &entity.Service{ProviderID: f.provID, Title: "Brand kit"}
	require.NoError(t, f.services.Create(other))

	f.record(t, 5)
	_, err := f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID:     "buyer-2",
		ServiceID:  other.ID,
		ProviderID: f.provID,
		Rating:     2,
		Comment:    "late delivery",
	})
	require.NoError(t, err)

	// Each service keeps its own aggregate.
	s1, _ := f.services.GetByID(f.serviceID)
	assert.Equal(t, 5.0, s1.Rating)
	assert.Equal(t, 1, s1.ReviewCount)
	s2, _ := f.services.GetByID(other.ID)
	assert.Equal(t, 2.0, s2.Rating)

	// The provider aggregate covers both.
	p, _ := f.providers.GetByID(f.provID)
	assert.Equal(t, 3.5, p.Rating)
	assert.Equal(t, 2, p.ReviewCount)
}

func TestRecordReview_RejectsInvalidInput(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID: "buyer-1", ServiceID: f.serviceID, Rating: 0, Comment: "x",
	})
	assert.ErrorIs(t, err, app.ErrInvalidRating)

	_, err = f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID: "buyer-1", ServiceID: f.serviceID, Rating: 6, Comment: "x",
	})
	assert.ErrorIs(t, err, app.ErrInvalidRating)

	_, err = f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID: "buyer-1", ServiceID: f.serviceID, Rating: 4, Comment: "",
	})
	assert.ErrorIs(t, err, app.ErrEmptyComment)

	// Nothing was stored and no aggregate moved.
	assert.Empty(t, f.reviews.reviews)
	s, _ := f.services.GetByID(f.serviceID)
	assert.Equal(t, 0.0, s.Rating)
}

func TestRecordReview_ProviderMismatch(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID:     "buyer-1",
		ServiceID:  f.serviceID,
		ProviderID: "prov-other",
		Rating:     5,
		Comment:    "great",
	})
	assert.ErrorIs(t, err, app.ErrProviderMismatch)
	assert.Empty(t, f.reviews.reviews)
}

func TestRecordReview_UnknownServiceLeavesNoTrace(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID: "buyer-1", ServiceID: "svc-missing", Rating: 5, Comment: "great",
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.Empty(t, f.reviews.reviews)

	p, _ := f.providers.GetByID(f.provID)
	assert.Equal(t, 0, p.ReviewCount)
}

func TestRecordReview_AggregateFailureKeepsReviewAndQueuesHeal(t *testing.T) {
	f := newReviewFixture(t)
	f.providers.failAggregates = true

	rv, err := f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID: "buyer-1", ServiceID: f.serviceID, ProviderID: f.provID, Rating: 5, Comment: "great",
	})
	assert.ErrorIs(t, err, app.ErrAggregateStale)
	require.NotNil(t, rv)
	assert.NotEmpty(t, rv.ID)

	// The service aggregate was written before the provider write failed.
	s, _ := f.services.GetByID(f.serviceID)
	assert.Equal(t, 5.0, s.Rating)

	require.Len(t, f.pub.published, 1)
	var job app.ReaggregateJob
	require.NoError(t, json.Unmarshal(f.pub.published[0], &job))
	assert.Equal(t, f.serviceID, job.ServiceID)
	assert.Equal(t, f.provID, job.ProviderID)
}

func TestReaggregate_HealsFromReviewTable(t *testing.T) {
	f := newReviewFixture(t)

	f.providers.failAggregates = true
	_, err := f.svc.RecordReview(context.Background(), app.RecordReviewInput{
		UserID: "buyer-1", ServiceID: f.serviceID, ProviderID: f.provID, Rating: 4, Comment: "fine",
	})
	assert.ErrorIs(t, err, app.ErrAggregateStale)

	f.providers.failAggregates = false
	require.NoError(t, f.svc.Reaggregate(context.Background(), app.ReaggregateJob{
		ServiceID:  f.serviceID,
		ProviderID: f.provID,
	}))

	p, _ := f.providers.GetByID(f.provID)
	assert.Equal(t, 4.0, p.Rating)
	assert.Equal(t, 1, p.ReviewCount)
}

func TestReaggregate_EmptySetZeroesAggregates(t *testing.T) {
	f := newReviewFixture(t)

	f.record(t, 5)
	_, err := f.reviews.DeleteByService(f.serviceID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reaggregate(context.Background(), app.ReaggregateJob{
		ServiceID:  f.serviceID,
		ProviderID: f.provID,
	}))

	s, _ := f.services.GetByID(f.serviceID)
	assert.Equal(t, 0.0, s.Rating)
	assert.Equal(t, 0, s.ReviewCount)
	p, _ := f.providers.GetByID(f.provID)
	assert.Equal(t, 0.0, p.Rating)
	assert.Equal(t, 0, p.ReviewCount)
}
