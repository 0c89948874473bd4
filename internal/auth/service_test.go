package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	nextID    uint64
	users     map[uint64]User
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[uint64]User{}}
}

func (s *fakeStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = *u
	return nil
}

func (s *fakeStore) FindVerifiedByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.Verified {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeStore) FindByID(_ context.Context, id uint64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := u
	return &cp, nil
}

func (s *fakeStore) Save(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

type fakeJobs struct {
	mu        sync.Mutex
	enqueued  []uint64
	cancelled []uint64
}

func (j *fakeJobs) EnqueueSessionExpire(userID uint64, _ string, _ time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.enqueued = append(j.enqueued, userID)
	return nil
}

func (j *fakeJobs) CancelSessionExpire(userID uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelled = append(j.cancelled, userID)
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeJobs) {
	store := newFakeStore()
	jobs := &fakeJobs{}
	svc := &Service{Store: store, JWT: NewJWT("test-secret"), Jobs: jobs}
	return svc, store, jobs
}

func TestSignup(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, SubscriptionStarter, u.Subscription)
	assert.True(t, u.Verified)
	assert.NotEqual(t, "longenough1", u.PasswordHash)
	assert.True(t, ComparePassword(u.PasswordHash, "longenough1"))

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, stored.Email)
}

func TestSignup_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"missing email", "", "longenough1", ErrMissingCredentials},
		{"missing password", "a@b.com", "", ErrMissingCredentials},
		{"bad email", "not-an-email", "longenough1", ErrInvalidEmail},
		{"bad email no tld", "a@b", "longenough1", ErrInvalidEmail},
		{"short password", "a@b.com", "short", ErrPasswordTooShort},
		{"short multibyte password", "a@b.com", "абвг", ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// length is counted in characters, not bytes
	t.Run("multibyte password long enough", func(t *testing.T) {
		_, err := svc.Signup(ctx, "multibyte@b.com", "абвгдежз")
		assert.NoError(t, err)
	})
}

func TestSignup_StoreOutageIsNotEmailInUse(t *testing.T) {
	svc, store, _ := newTestService()
	store.createErr = errors.New("connection refused")

	_, err := svc.Signup(context.Background(), "a@b.com", "longenough1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailInUse)
}

func TestSignup_DuplicateFromStore(t *testing.T) {
	svc, store, _ := newTestService()
	store.createErr = ErrEmailInUse

	_, err := svc.Signup(context.Background(), "a@b.com", "longenough1")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignup_EmailInUse(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "A@B.com", "different-pass")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestLogin(t *testing.T) {
	svc, store, jobs := newTestService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, "a@b.com", res.User.Email)

	uid, err := svc.JWT.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SessionToken)
	assert.Equal(t, res.Token, *stored.SessionToken)

	assert.Equal(t, []uint64{u.ID}, jobs.enqueued)
}

func TestLogin_IdenticalFailureMessages(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)

	_, errUnknown := svc.Login(ctx, "nobody@b.com", "longenough1")
	_, errWrongPass := svc.Login(ctx, "a@b.com", "wrongpassword")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
}

func TestLogin_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Login(ctx, "", "longenough1")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Login(ctx, "a@b.com", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Login(ctx, "not-an-email", "longenough1")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLogin_UnverifiedUserCannotLogin(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	hash, err := HashPassword("longenough1")
	require.NoError(t, err)
	u := &User{Email: "a@b.com", PasswordHash: hash, Subscription: SubscriptionStarter}
	require.NoError(t, store.Create(ctx, u))

	_, err = svc.Login(ctx, "a@b.com", "longenough1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	svc, store, jobs := newTestService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID))

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SessionToken)
	assert.Contains(t, jobs.cancelled, u.ID)
}

func TestLogout_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Logout(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUpdateSubscription(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)

	updated, err := svc.UpdateSubscription(ctx, u.ID, u.ID, SubscriptionPro)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionPro, updated.Subscription)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionPro, stored.Subscription)
}

func TestUpdateSubscription_ForbiddenForOtherUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)

	_, err = svc.UpdateSubscription(ctx, u.ID, u.ID+1, SubscriptionPro)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateSubscription_InvalidValue(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, "a@b.com", "longenough1")
	require.NoError(t, err)

	_, err = svc.UpdateSubscription(ctx, u.ID, u.ID, Subscription("gold"))
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}
