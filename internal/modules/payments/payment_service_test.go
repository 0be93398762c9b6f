package payments

import (
	"context"
	"testing"
	"time"

	"user-profile-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTx embeds pgx.Tx for interface satisfaction; only Commit and
// Rollback are expected to be called.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

// mockRepository simulates the storage layer. Each method records its
// invocation so tests can assert exactly which scoped writes ran.
type mockRepository struct {
	tx *mockTx

	ListFunc         func(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	FindByIDFunc     func(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error)
	InsertFunc       func(ctx context.Context, userID string, pm models.PaymentMethod) (*models.PaymentMethod, error)
	UpdateFieldsFunc func(ctx context.Context, userID, methodID string, data models.PaymentMethodCandidate) (*models.PaymentMethod, error)
	ClearDefaultFunc func(ctx context.Context, userID, exceptID string) error
	DeleteFunc       func(ctx context.Context, userID, methodID string) error

	listCalls         int
	findCalls         int
	insertCalls       int
	updateCalls       int
	clearDefaultCalls int
	deleteCalls       int
	inTxCalls         int // writes issued through the WithTx repository
}

func newMockRepository() *mockRepository {
	return &mockRepository{tx: &mockTx{}}
}

func (m *mockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return m.tx, nil
}

// WithTx returns a view of the same mock that counts transactional writes.
func (m *mockRepository) WithTx(tx pgx.Tx) RepositoryInterface {
	return &txMockRepository{m}
}

func (m *mockRepository) List(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	m.listCalls++
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockRepository) FindByID(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error) {
	m.findCalls++
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, userID, methodID)
	}
	return nil, models.ErrNotFound
}

func (m *mockRepository) Insert(ctx context.Context, userID string, pm models.PaymentMethod) (*models.PaymentMethod, error) {
	m.insertCalls++
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, userID, pm)
	}
	pm.ID = "generated-id"
	pm.UserID = userID
	pm.CreatedAt = time.Now()
	pm.UpdatedAt = pm.CreatedAt
	return &pm, nil
}

func (m *mockRepository) UpdateFields(ctx context.Context, userID, methodID string, data models.PaymentMethodCandidate) (*models.PaymentMethod, error) {
	m.updateCalls++
	if m.UpdateFieldsFunc != nil {
		return m.UpdateFieldsFunc(ctx, userID, methodID, data)
	}
	return &models.PaymentMethod{ID: methodID, UserID: userID}, nil
}

func (m *mockRepository) ClearDefault(ctx context.Context, userID, exceptID string) error {
	m.clearDefaultCalls++
	if m.ClearDefaultFunc != nil {
		return m.ClearDefaultFunc(ctx, userID, exceptID)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, userID, methodID string) error {
	m.deleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, methodID)
	}
	return nil
}

// txMockRepository counts writes that run inside the transaction.
type txMockRepository struct {
	*mockRepository
}

func (m *txMockRepository) Insert(ctx context.Context, userID string, pm models.PaymentMethod) (*models.PaymentMethod, error) {
	m.inTxCalls++
	return m.mockRepository.Insert(ctx, userID, pm)
}

func (m *txMockRepository) UpdateFields(ctx context.Context, userID, methodID string, data models.PaymentMethodCandidate) (*models.PaymentMethod, error) {
	m.inTxCalls++
	return m.mockRepository.UpdateFields(ctx, userID, methodID, data)
}

func (m *txMockRepository) ClearDefault(ctx context.Context, userID, exceptID string) error {
	m.inTxCalls++
	return m.mockRepository.ClearDefault(ctx, userID, exceptID)
}

// mockPublisher records published events.
type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, collection, action, accountID, entryID string) {
	m.published = append(m.published, collection+"/"+action)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *models.FlexInt {
	f := models.FlexInt(n)
	return &f
}

func cardCandidate() models.PaymentMethodCandidate {
	year := time.Now().Year() + 3
	y := models.FlexInt(year)
	return models.PaymentMethodCandidate{
		Type:           strPtr(models.PaymentTypeCreditCard),
		Provider:       strPtr(models.ProviderVisa),
		CardNumber:     strPtr("4242424242424242"),
		CVV:            strPtr("123"),
		ExpiryMonth:    intPtr(12),
		ExpiryYear:     &y,
		CardholderName: strPtr("Jane Doe"),
	}
}

func storedCard(id string, isDefault bool) *models.PaymentMethod {
	return &models.PaymentMethod{
		ID:             id,
		UserID:         "user-1",
		Type:           models.PaymentTypeCreditCard,
		Provider:       models.ProviderVisa,
		Last4:          "4242",
		ExpiryMonth:    12,
		ExpiryYear:     time.Now().Year() + 3,
		CardholderName: "Jane Doe",
		IsDefault:      isDefault,
		IsActive:       true,
	}
}

func TestAddPaymentMethod_NonDefaultIsAppendedDirectly(t *testing.T) {
	repo := newMockRepository()
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	created, err := svc.AddPaymentMethod(context.Background(), "user-1", cardCandidate())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, 1, repo.insertCalls)
	assert.Equal(t, 0, repo.clearDefaultCalls, "non-default add must not touch siblings")
	assert.Equal(t, 0, repo.inTxCalls, "non-default add needs no transaction")
	assert.False(t, repo.tx.committed)
	assert.Equal(t, []string{"payment_methods/added"}, pub.published)
}

func TestAddPaymentMethod_DefaultClearsSiblingsAtomically(t *testing.T) {
	repo := newMockRepository()
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	c := cardCandidate()
	c.IsDefault = boolPtr(true)

	created, err := svc.AddPaymentMethod(context.Background(), "user-1", c)
	require.NoError(t, err)
	assert.True(t, created.IsDefault)

	assert.Equal(t, 1, repo.clearDefaultCalls)
	assert.Equal(t, 1, repo.insertCalls)
	assert.Equal(t, 2, repo.inTxCalls, "clear and insert must both run inside the transaction")
	assert.True(t, repo.tx.committed)
	assert.False(t, repo.tx.rolledBack)
}

func TestAddPaymentMethod_ValidationFailureWritesNothing(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockPublisher{})

	c := cardCandidate()
	c.Provider = strPtr("acme")
	c.CardholderName = strPtr("")

	_, err := svc.AddPaymentMethod(context.Background(), "user-1", c)
	require.Error(t, err)

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, repo.insertCalls)
	assert.Equal(t, 0, repo.clearDefaultCalls)
}

func TestAddPaymentMethod_NeverReadsSiblings(t *testing.T) {
	// A collection holding a legacy entry with a long-expired card must
	// not block a new, valid add: the write path may not list or load any
	// existing entry.
	repo := newMockRepository()
	svc := NewService(repo, &mockPublisher{})

	c := cardCandidate()
	c.IsDefault = boolPtr(true)

	_, err := svc.AddPaymentMethod(context.Background(), "user-1", c)
	require.NoError(t, err)

	assert.Equal(t, 0, repo.listCalls)
	assert.Equal(t, 0, repo.findCalls)
}

func TestAddPaymentMethod_DiscardsRawCardData(t *testing.T) {
	repo := newMockRepository()
	var inserted models.PaymentMethod
	repo.InsertFunc = func(ctx context.Context, userID string, pm models.PaymentMethod) (*models.PaymentMethod, error) {
		inserted = pm
		pm.ID = "pm-1"
		return &pm, nil
	}
	svc := NewService(repo, &mockPublisher{})

	_, err := svc.AddPaymentMethod(context.Background(), "user-1", cardCandidate())
	require.NoError(t, err)

	assert.Equal(t, "4242", inserted.Last4)
}

func TestAddPaymentMethod_PersistsCoercedExpiry(t *testing.T) {
	repo := newMockRepository()
	var inserted models.PaymentMethod
	repo.InsertFunc = func(ctx context.Context, userID string, pm models.PaymentMethod) (*models.PaymentMethod, error) {
		inserted = pm
		pm.ID = "pm-1"
		return &pm, nil
	}
	svc := NewService(repo, &mockPublisher{})

	c := cardCandidate()
	var month models.FlexInt
	require.NoError(t, month.UnmarshalJSON([]byte(`"11"`)))
	c.ExpiryMonth = &month

	_, err := svc.AddPaymentMethod(context.Background(), "user-1", c)
	require.NoError(t, err)
	assert.Equal(t, 11, inserted.ExpiryMonth, "string expiry must be stored as an integer")
}

func TestUpdatePaymentMethod_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockPublisher{})

	_, err := svc.UpdatePaymentMethod(context.Background(), "user-1", "missing", models.PaymentMethodCandidate{})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestUpdatePaymentMethod_SetDefaultClearsSiblings(t *testing.T) {
	repo := newMockRepository()
	repo.FindByIDFunc = func(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error) {
		return storedCard(methodID, false), nil
	}
	var clearedExcept string
	repo.ClearDefaultFunc = func(ctx context.Context, userID, exceptID string) error {
		clearedExcept = exceptID
		return nil
	}
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	req := models.PaymentMethodCandidate{IsDefault: boolPtr(true)}
	_, err := svc.UpdatePaymentMethod(context.Background(), "user-1", "pm-A", req)
	require.NoError(t, err)

	assert.Equal(t, "pm-A", clearedExcept, "the target entry must be excluded from the sibling sweep")
	assert.Equal(t, 1, repo.clearDefaultCalls)
	assert.Equal(t, 1, repo.updateCalls)
	assert.Equal(t, 2, repo.inTxCalls)
	assert.True(t, repo.tx.committed)
	assert.Equal(t, []string{"payment_methods/updated"}, pub.published)
}

func TestUpdatePaymentMethod_SetDefaultIsIdempotent(t *testing.T) {
	// Re-setting the entry that is already the default takes the targeted
	// single-row path: no transaction, no sibling sweep.
	repo := newMockRepository()
	repo.FindByIDFunc = func(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error) {
		return storedCard(methodID, true), nil
	}
	svc := NewService(repo, &mockPublisher{})

	req := models.PaymentMethodCandidate{IsDefault: boolPtr(true)}
	_, err := svc.UpdatePaymentMethod(context.Background(), "user-1", "pm-A", req)
	require.NoError(t, err)

	assert.Equal(t, 0, repo.clearDefaultCalls)
	assert.Equal(t, 0, repo.inTxCalls)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestUpdatePaymentMethod_MergeIsValidatedAsAWhole(t *testing.T) {
	// Changing the type to paypal without a compatible provider must fail:
	// the merged candidate (paypal + visa) is inconsistent.
	repo := newMockRepository()
	repo.FindByIDFunc = func(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error) {
		return storedCard(methodID, false), nil
	}
	svc := NewService(repo, &mockPublisher{})

	req := models.PaymentMethodCandidate{Type: strPtr(models.PaymentTypePayPal)}
	_, err := svc.UpdatePaymentMethod(context.Background(), "user-1", "pm-A", req)

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestUpdatePaymentMethod_PatchNeverCarriesRawCardData(t *testing.T) {
	repo := newMockRepository()
	repo.FindByIDFunc = func(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error) {
		return storedCard(methodID, false), nil
	}
	var patch models.PaymentMethodCandidate
	repo.UpdateFieldsFunc = func(ctx context.Context, userID, methodID string, data models.PaymentMethodCandidate) (*models.PaymentMethod, error) {
		patch = data
		return storedCard(methodID, false), nil
	}
	svc := NewService(repo, &mockPublisher{})

	req := models.PaymentMethodCandidate{
		CardNumber: strPtr("5555444433332222"),
		CVV:        strPtr("999"),
	}
	_, err := svc.UpdatePaymentMethod(context.Background(), "user-1", "pm-A", req)
	require.NoError(t, err)

	assert.Nil(t, patch.CardNumber)
	assert.Nil(t, patch.CVV)
	require.NotNil(t, patch.Last4)
	assert.Equal(t, "2222", *patch.Last4)
}

func TestDeletePaymentMethod_NoDefaultPromotion(t *testing.T) {
	// Removing the current default leaves the collection with zero
	// defaults; nothing else is read or written.
	repo := newMockRepository()
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	err := svc.DeletePaymentMethod(context.Background(), "user-1", "pm-B")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.deleteCalls)
	assert.Equal(t, 0, repo.clearDefaultCalls)
	assert.Equal(t, 0, repo.updateCalls)
	assert.Equal(t, 0, repo.listCalls)
	assert.Equal(t, []string{"payment_methods/removed"}, pub.published)
}

func TestDeletePaymentMethod_NotFound(t *testing.T) {
	repo := newMockRepository()
	repo.DeleteFunc = func(ctx context.Context, userID, methodID string) error {
		return models.ErrNotFound
	}
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	err := svc.DeletePaymentMethod(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, pub.published, "no event for a failed mutation")
}
