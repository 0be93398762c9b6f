package users

import (
	"context"
	"testing"
	"time"

	"user-profile-service/internal/models"
	emailSvc "user-profile-service/pkg/email"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	FindByIDFunc             func(ctx context.Context, userID string) (*models.User, error)
	FindByEmailFunc          func(ctx context.Context, email string) (*models.User, error)
	FindByNicknameFunc       func(ctx context.Context, nickname string) (*models.User, error)
	FindByResetTokenFunc     func(ctx context.Context, token string) (*models.User, error)
	CreateInactiveUserFunc   func(ctx context.Context, user *models.User, passwordHash, activationToken string, expiresAt time.Time) (*models.User, error)
	UpdateFunc               func(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)
	UpdatePasswordFunc       func(ctx context.Context, userID, passwordHash string) error
	DeleteFunc               func(ctx context.Context, userID string) error
	ListAllFunc              func(ctx context.Context, page, limit int) ([]models.User, int, error)
	SetResetTokenFunc        func(ctx context.Context, userID, token string, expiresAt time.Time) error
	UpdateActivationFunc     func(ctx context.Context, userID, newToken string, expiresAt time.Time) error
	ActivateUserFunc         func(ctx context.Context, token string) (*models.User, error)
	CreateOAuthUserFunc      func(ctx context.Context, user *models.User) (*models.User, error)
	lastListPage, lastListLn int
}

func (m *mockUserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *mockUserRepository) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	if m.FindByNicknameFunc != nil {
		return m.FindByNicknameFunc(ctx, nickname)
	}
	return nil, models.ErrNotFound
}

func (m *mockUserRepository) FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	if m.FindByResetTokenFunc != nil {
		return m.FindByResetTokenFunc(ctx, token)
	}
	return nil, models.ErrInvalidToken
}

func (m *mockUserRepository) SetPasswordResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, userID, token, expiresAt)
	}
	return nil
}

func (m *mockUserRepository) UpdatePasswordAndClearResetToken(ctx context.Context, userID, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, passwordHash)
	}
	return nil
}

func (m *mockUserRepository) UpdateActivationToken(ctx context.Context, userID, newToken string, expiresAt time.Time) error {
	if m.UpdateActivationFunc != nil {
		return m.UpdateActivationFunc(ctx, userID, newToken, expiresAt)
	}
	return nil
}

func (m *mockUserRepository) CreateInactiveUser(ctx context.Context, user *models.User, passwordHash, activationToken string, expiresAt time.Time) (*models.User, error) {
	if m.CreateInactiveUserFunc != nil {
		return m.CreateInactiveUserFunc(ctx, user, passwordHash, activationToken, expiresAt)
	}
	user.ID = "user-new"
	return user, nil
}

func (m *mockUserRepository) ActivateUser(ctx context.Context, token string) (*models.User, error) {
	if m.ActivateUserFunc != nil {
		return m.ActivateUserFunc(ctx, token)
	}
	return nil, models.ErrInvalidToken
}

func (m *mockUserRepository) CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateOAuthUserFunc != nil {
		return m.CreateOAuthUserFunc(ctx, user)
	}
	user.ID = "user-oauth"
	return user, nil
}

func (m *mockUserRepository) Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, data)
	}
	return &models.User{ID: userID}, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) ListAll(ctx context.Context, page, limit int) ([]models.User, int, error) {
	m.lastListPage, m.lastListLn = page, limit
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, page, limit)
	}
	return nil, 0, nil
}

// mockEmailer records sends on a channel so tests can wait for the
// background goroutine.
type mockEmailer struct {
	sent chan string
}

func newMockEmailer() *mockEmailer {
	return &mockEmailer{sent: make(chan string, 4)}
}

func (m *mockEmailer) SendEmail(ctx context.Context, to, subject, plainText, htmlContent string) error {
	m.sent <- to
	return nil
}

type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, collection, action, accountID, entryID string) {
	m.published = append(m.published, collection+"/"+action)
}

const testJWTSecret = "unit-test-secret"

func newTestService(t *testing.T, repo *mockUserRepository, emailer emailSvc.ServiceInterface, pub *mockPublisher) ServiceInterface {
	t.Helper()
	tm, err := emailSvc.NewTemplateManager()
	require.NoError(t, err)
	return NewService(repo, emailer, tm, pub, testJWTSecret, "http://localhost:3000", nil)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestSignup_CreatesInactiveUserAndEmailsActivationLink(t *testing.T) {
	repo := &mockUserRepository{}
	var captured struct {
		hash  string
		token string
	}
	repo.CreateInactiveUserFunc = func(ctx context.Context, user *models.User, passwordHash, activationToken string, expiresAt time.Time) (*models.User, error) {
		captured.hash = passwordHash
		captured.token = activationToken
		user.ID = "user-new"
		return user, nil
	}
	emailer := newMockEmailer()
	svc := newTestService(t, repo, emailer, &mockPublisher{})

	user, err := svc.Signup(context.Background(), models.SignupRequest{
		Nickname: "jane",
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-new", user.ID)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(captured.hash), []byte("hunter2hunter2")))
	assert.NotEmpty(t, captured.token)

	select {
	case to := <-emailer.sent:
		assert.Equal(t, "jane@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("activation email was never sent")
	}
}

func TestSignup_TakenEmailConflicts(t *testing.T) {
	repo := &mockUserRepository{}
	repo.FindByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: "existing", Email: email}, nil
	}
	created := false
	repo.CreateInactiveUserFunc = func(ctx context.Context, user *models.User, passwordHash, activationToken string, expiresAt time.Time) (*models.User, error) {
		created = true
		return user, nil
	}
	svc := newTestService(t, repo, newMockEmailer(), &mockPublisher{})

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Nickname: "jane",
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.False(t, created)
}

func TestLogin_IssuesTokenWithRoleClaim(t *testing.T) {
	repo := &mockUserRepository{}
	repo.FindByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{
			ID:           "user-1",
			Email:        email,
			Role:         models.RoleAdmin,
			PasswordHash: hashFor(t, "correct horse"),
		}, nil
	}
	svc := newTestService(t, repo, newMockEmailer(), &mockPublisher{})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "jane@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.User.PasswordHash, "hash must never leave the service")

	claims := &models.JwtCustomClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(token *jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &mockUserRepository{}
	repo.FindByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: "user-1", PasswordHash: hashFor(t, "correct horse")}, nil
	}
	svc := newTestService(t, repo, newMockEmailer(), &mockPublisher{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailLooksLikeBadCredentials(t *testing.T) {
	svc := newTestService(t, &mockUserRepository{}, newMockEmailer(), &mockPublisher{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	svc := newTestService(t, &mockUserRepository{}, newMockEmailer(), &mockPublisher{})

	_, err := svc.ResetPassword(context.Background(), "bogus", "newpassword123")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestRequestPasswordReset_UnknownEmailStaysQuiet(t *testing.T) {
	repo := &mockUserRepository{}
	tokenStored := false
	repo.SetResetTokenFunc = func(ctx context.Context, userID, token string, expiresAt time.Time) error {
		tokenStored = true
		return nil
	}
	svc := newTestService(t, repo, newMockEmailer(), &mockPublisher{})

	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err, "unknown emails succeed to prevent enumeration")
	assert.False(t, tokenStored)
}

func TestUpdateUserProfile_NicknameTaken(t *testing.T) {
	repo := &mockUserRepository{}
	repo.FindByNicknameFunc = func(ctx context.Context, nickname string) (*models.User, error) {
		return &models.User{ID: "someone-else", Nickname: nickname}, nil
	}
	svc := newTestService(t, repo, newMockEmailer(), &mockPublisher{})

	nickname := "taken"
	_, err := svc.UpdateUserProfile(context.Background(), "user-1", models.UserUpdateData{Nickname: &nickname})
	assert.ErrorIs(t, err, models.ErrNicknameTaken)
}

func TestUpdateUserProfile_KeepingOwnNicknameIsFine(t *testing.T) {
	repo := &mockUserRepository{}
	repo.FindByNicknameFunc = func(ctx context.Context, nickname string) (*models.User, error) {
		return &models.User{ID: "user-1", Nickname: nickname}, nil
	}
	pub := &mockPublisher{}
	svc := newTestService(t, repo, newMockEmailer(), pub)

	nickname := "jane"
	_, err := svc.UpdateUserProfile(context.Background(), "user-1", models.UserUpdateData{Nickname: &nickname})
	require.NoError(t, err)
	assert.Equal(t, []string{"profile/updated"}, pub.published)
}

func TestDeleteAccount_PublishesRemoval(t *testing.T) {
	pub := &mockPublisher{}
	svc := newTestService(t, &mockUserRepository{}, newMockEmailer(), pub)

	err := svc.DeleteAccount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"profile/removed"}, pub.published)
}

func TestAdminListUsers_ClampsPagination(t *testing.T) {
	repo := &mockUserRepository{}
	svc := newTestService(t, repo, newMockEmailer(), &mockPublisher{})

	_, _, err := svc.AdminListUsers(context.Background(), -3, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastListPage)
	assert.Equal(t, 20, repo.lastListLn)
}
