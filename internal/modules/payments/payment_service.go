package payments

import (
	"context"
	"fmt"
	"time"

	"user-profile-service/internal/models"
	"user-profile-service/internal/validation"
	"user-profile-service/pkg/events"
)

// ServiceInterface defines business logic for the payment method
// collection.
type ServiceInterface interface {
	ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, userID string, req models.PaymentMethodCandidate) (*models.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, userID, methodID string, req models.PaymentMethodCandidate) (*models.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, methodID string) error
}

// Service validates candidates and dispatches each mutation to the
// narrowest storage path that can satisfy it:
//
//   - mutation sets is_default        -> one transaction: clear siblings'
//     is_default + targeted insert/update, committed together;
//   - mutation leaves is_default off  -> single targeted insert/update;
//   - remove                          -> delete by id.
//
// No path ever reads, validates or rewrites sibling entries beyond the
// is_default column, so a collection holding an entry that predates the
// current rules (say, a card that expired years ago) never blocks an
// unrelated write.
type Service struct {
	repo     RepositoryInterface
	notifier events.Publisher
}

func NewService(repo RepositoryInterface, notifier events.Publisher) ServiceInterface {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	methods, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListPaymentMethods: %w", err)
	}
	return methods, nil
}

func (s *Service) AddPaymentMethod(ctx context.Context, userID string, req models.PaymentMethodCandidate) (*models.PaymentMethod, error) {
	pm, err := validation.ValidatePaymentMethod(req, time.Now())
	if err != nil {
		return nil, err
	}

	// Fast path: a non-default entry is simply appended.
	if !pm.IsDefault {
		created, err := s.repo.Insert(ctx, userID, pm)
		if err != nil {
			return nil, fmt.Errorf("service.AddPaymentMethod: %w", err)
		}
		s.notifier.Publish(ctx, events.CollectionPaymentMethods, events.ActionAdded, userID, created.ID)
		return created, nil
	}

	// The new entry becomes the default, so every sibling's is_default is
	// cleared in the same transaction as the insert. Commit-or-nothing:
	// there is no window with two defaults, and a concurrent race between
	// two set-default writers resolves to a single winner.
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AddPaymentMethod: %w", err)
	}
	defer tx.Rollback(ctx)

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.ClearDefault(ctx, userID, ""); err != nil {
		return nil, fmt.Errorf("service.AddPaymentMethod: %w", err)
	}
	created, err := txRepo.Insert(ctx, userID, pm)
	if err != nil {
		return nil, fmt.Errorf("service.AddPaymentMethod: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("service.AddPaymentMethod: %w", err)
	}

	s.notifier.Publish(ctx, events.CollectionPaymentMethods, events.ActionAdded, userID, created.ID)
	return created, nil
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, userID, methodID string, req models.PaymentMethodCandidate) (*models.PaymentMethod, error) {
	existing, err := s.repo.FindByID(ctx, userID, methodID)
	if err != nil {
		return nil, err
	}

	// Merge the stored entry with the partial body and validate the result
	// as a whole, so an update cannot introduce an inconsistent combination
	// (e.g. a new type without a compatible provider).
	merged := mergeCandidate(*existing, req)
	pm, err := validation.ValidatePaymentMethod(merged, time.Now())
	if err != nil {
		return nil, err
	}

	// Only the submitted fields are written back, carrying the normalized
	// values from validation. The raw card number and CVV stop here.
	patch := req
	patch.CardNumber = nil
	patch.CVV = nil
	if req.CardNumber != nil {
		patch.Last4 = &pm.Last4
	}

	if !pm.IsDefault || existing.IsDefault {
		// Either the entry is not becoming the default, or it already is
		// the default (idempotent re-set): a targeted single-row update is
		// enough and siblings stay untouched.
		updated, err := s.repo.UpdateFields(ctx, userID, methodID, patch)
		if err != nil {
			return nil, fmt.Errorf("service.UpdatePaymentMethod: %w", err)
		}
		s.notifier.Publish(ctx, events.CollectionPaymentMethods, events.ActionUpdated, userID, methodID)
		return updated, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.UpdatePaymentMethod: %w", err)
	}
	defer tx.Rollback(ctx)

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.ClearDefault(ctx, userID, methodID); err != nil {
		return nil, fmt.Errorf("service.UpdatePaymentMethod: %w", err)
	}
	updated, err := txRepo.UpdateFields(ctx, userID, methodID, patch)
	if err != nil {
		return nil, fmt.Errorf("service.UpdatePaymentMethod: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("service.UpdatePaymentMethod: %w", err)
	}

	s.notifier.Publish(ctx, events.CollectionPaymentMethods, events.ActionUpdated, userID, methodID)
	return updated, nil
}

// DeletePaymentMethod removes the entry by id. Removing the current
// default leaves the collection with zero defaults until the user picks a
// new one; nothing is promoted implicitly.
func (s *Service) DeletePaymentMethod(ctx context.Context, userID, methodID string) error {
	if err := s.repo.Delete(ctx, userID, methodID); err != nil {
		return err
	}
	s.notifier.Publish(ctx, events.CollectionPaymentMethods, events.ActionRemoved, userID, methodID)
	return nil
}

// mergeCandidate overlays the submitted fields on top of the stored entry,
// producing the complete candidate that gets validated. Stored expiry
// fields of zero mean "absent" and stay absent.
func mergeCandidate(existing models.PaymentMethod, req models.PaymentMethodCandidate) models.PaymentMethodCandidate {
	merged := models.PaymentMethodCandidate{
		Type:           &existing.Type,
		Provider:       &existing.Provider,
		Last4:          &existing.Last4,
		CardholderName: &existing.CardholderName,
		Nickname:       &existing.Nickname,
		IsDefault:      &existing.IsDefault,
		IsActive:       &existing.IsActive,
	}
	if existing.ExpiryMonth != 0 {
		m := models.FlexInt(existing.ExpiryMonth)
		merged.ExpiryMonth = &m
	}
	if existing.ExpiryYear != 0 {
		y := models.FlexInt(existing.ExpiryYear)
		merged.ExpiryYear = &y
	}

	if req.Type != nil {
		merged.Type = req.Type
	}
	if req.Provider != nil {
		merged.Provider = req.Provider
	}
	if req.CardNumber != nil {
		merged.CardNumber = req.CardNumber
		merged.Last4 = nil
	}
	if req.Last4 != nil {
		merged.Last4 = req.Last4
	}
	if req.ExpiryMonth != nil {
		merged.ExpiryMonth = req.ExpiryMonth
	}
	if req.ExpiryYear != nil {
		merged.ExpiryYear = req.ExpiryYear
	}
	if req.CardholderName != nil {
		merged.CardholderName = req.CardholderName
	}
	if req.Nickname != nil {
		merged.Nickname = req.Nickname
	}
	if req.IsDefault != nil {
		merged.IsDefault = req.IsDefault
	}
	if req.IsActive != nil {
		merged.IsActive = req.IsActive
	}
	return merged
}
