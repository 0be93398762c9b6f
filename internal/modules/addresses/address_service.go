package addresses

import (
	"context"
	"fmt"

	"user-profile-service/internal/models"
	"user-profile-service/internal/validation"
	"user-profile-service/pkg/events"
)

// ServiceInterface defines business logic for the address collection.
type ServiceInterface interface {
	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	AddAddress(ctx context.Context, userID string, req models.AddressCandidate) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req models.AddressCandidate) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

// Service applies the same dispatch rules as the payment method service:
// a mutation that sets is_default runs as one transaction clearing the
// siblings' flag alongside the targeted write; anything else is a single
// scoped insert, update or delete. Sibling rows are never read or
// re-validated.
type Service struct {
	repo     RepositoryInterface
	notifier events.Publisher
}

func NewService(repo RepositoryInterface, notifier events.Publisher) ServiceInterface {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	result, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListAddresses: %w", err)
	}
	return result, nil
}

func (s *Service) AddAddress(ctx context.Context, userID string, req models.AddressCandidate) (*models.Address, error) {
	addr, err := validation.ValidateAddress(req)
	if err != nil {
		return nil, err
	}

	if !addr.IsDefault {
		created, err := s.repo.Insert(ctx, userID, addr)
		if err != nil {
			return nil, fmt.Errorf("service.AddAddress: %w", err)
		}
		s.notifier.Publish(ctx, events.CollectionAddresses, events.ActionAdded, userID, created.ID)
		return created, nil
	}

	// New default: clear the old default and insert in one transaction.
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AddAddress: %w", err)
	}
	defer tx.Rollback(ctx)

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.ClearDefault(ctx, userID, ""); err != nil {
		return nil, fmt.Errorf("service.AddAddress: %w", err)
	}
	created, err := txRepo.Insert(ctx, userID, addr)
	if err != nil {
		return nil, fmt.Errorf("service.AddAddress: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("service.AddAddress: %w", err)
	}

	s.notifier.Publish(ctx, events.CollectionAddresses, events.ActionAdded, userID, created.ID)
	return created, nil
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, req models.AddressCandidate) (*models.Address, error) {
	existing, err := s.repo.FindByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	merged := mergeCandidate(*existing, req)
	if _, err := validation.ValidateAddress(merged); err != nil {
		return nil, err
	}

	if !merged.SetsDefault() || existing.IsDefault {
		updated, err := s.repo.UpdateFields(ctx, userID, addressID, req)
		if err != nil {
			return nil, fmt.Errorf("service.UpdateAddress: %w", err)
		}
		s.notifier.Publish(ctx, events.CollectionAddresses, events.ActionUpdated, userID, addressID)
		return updated, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateAddress: %w", err)
	}
	defer tx.Rollback(ctx)

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.ClearDefault(ctx, userID, addressID); err != nil {
		return nil, fmt.Errorf("service.UpdateAddress: %w", err)
	}
	updated, err := txRepo.UpdateFields(ctx, userID, addressID, req)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateAddress: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("service.UpdateAddress: %w", err)
	}

	s.notifier.Publish(ctx, events.CollectionAddresses, events.ActionUpdated, userID, addressID)
	return updated, nil
}

// DeleteAddress removes the address by id. No other address is promoted
// to default when the current default is removed.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if err := s.repo.Delete(ctx, userID, addressID); err != nil {
		return err
	}
	s.notifier.Publish(ctx, events.CollectionAddresses, events.ActionRemoved, userID, addressID)
	return nil
}

// mergeCandidate overlays the submitted fields on the stored address to
// build the complete candidate that gets validated.
func mergeCandidate(existing models.Address, req models.AddressCandidate) models.AddressCandidate {
	merged := models.AddressCandidate{
		Label:         &existing.Label,
		RecipientName: &existing.RecipientName,
		StreetAddress: &existing.StreetAddress,
		City:          &existing.City,
		State:         &existing.State,
		PostalCode:    &existing.PostalCode,
		Country:       &existing.Country,
		Phone:         &existing.Phone,
		IsDefault:     &existing.IsDefault,
	}

	if req.Label != nil {
		merged.Label = req.Label
	}
	if req.RecipientName != nil {
		merged.RecipientName = req.RecipientName
	}
	if req.StreetAddress != nil {
		merged.StreetAddress = req.StreetAddress
	}
	if req.City != nil {
		merged.City = req.City
	}
	if req.State != nil {
		merged.State = req.State
	}
	if req.PostalCode != nil {
		merged.PostalCode = req.PostalCode
	}
	if req.Country != nil {
		merged.Country = req.Country
	}
	if req.Phone != nil {
		merged.Phone = req.Phone
	}
	if req.IsDefault != nil {
		merged.IsDefault = req.IsDefault
	}
	return merged
}
