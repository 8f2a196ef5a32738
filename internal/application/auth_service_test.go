package application_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	"github.com/khadamatapp/marketplace-api/pkg/helpers"
	"github.com/khadamatapp/marketplace-api/pkg/mailer"
)

func newAuthService(users *fakeUserRepo, pub *fakePublisher) *app.AuthService {
	jwt := helpers.NewJWTManager("test-access", "test-refresh", time.Minute, time.Hour)
	var p app.Publisher
	if pub != nil {
		p = pub
	}
	return app.NewAuthService(users, jwt, nil, "", nil, nil, p)
}

func TestRegister(t *testing.T) {
	users := newFakeUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(users, pub)

	u, err := svc.Register(context.Background(), app.RegisterInput{
		Name:     "Ahmed Mohammed",
		Email:    "Ahmed@Example.com",
		Password: "password123",
		UserType: entity.UserTypeCustomer,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ahmed@example.com", u.Email)
	assert.Equal(t, "AM", u.Initials)
	assert.NotEqual(t, "password123", u.Password)

	// Welcome email queued.
	require.Len(t, pub.published, 1)
	var job mailer.EmailJob
	require.NoError(t, json.Unmarshal(pub.published[0], &job))
	assert.Equal(t, "ahmed@example.com", job.To)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, nil)

	_, err := svc.Register(context.Background(), app.RegisterInput{
		Name: "First", Email: "dup@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), app.RegisterInput{
		Name: "Second", Email: "dup@example.com", Password: "password456",
	})
	assert.ErrorIs(t, err, app.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, nil)

	_, err := svc.Register(context.Background(), app.RegisterInput{
		Name: "Sara", Email: "sara@example.com", Password: "password123",
	})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "sara@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "SA", u.Initials)

	_, err = svc.Authenticate(context.Background(), "sara@example.com", "wrong")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
	_, err = svc.Authenticate(context.Background(), "missing@example.com", "password123")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestSocialLogin_ProvisionsOnFirstLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, nil)

	u, pair, err := svc.SocialLogin(context.Background(), app.SocialProfile{
		Provider: "google",
		Email:    "new@example.com",
		Name:     "New User",
		Avatar:   "https://example.com/a.png",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "NU", u.Initials)
	assert.Equal(t, entity.UserTypeCustomer, u.UserType)
	assert.NotEmpty(t, pair.AccessToken)

	// Second login reuses the same account.
	again, _, err := svc.SocialLogin(context.Background(), app.SocialProfile{
		Provider: "google", Email: "new@example.com", Name: "New User",
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}

func TestUpdateProfile_KeepsInitials(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, nil)

	u, err := svc.Register(context.Background(), app.RegisterInput{
		Name: "Ahmed Mohammed", Email: "a@example.com", Password: "password123",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), u.ID, app.UpdateProfileInput{Name: "Different Name"})
	require.NoError(t, err)
	assert.Equal(t, "Different Name", updated.Name)
	assert.Equal(t, "AM", updated.Initials)
}
