package wishlist

import (
	"context"
	"fmt"

	"user-profile-service/internal/models"
	"user-profile-service/pkg/events"
)

// ServiceInterface defines business logic for the wishlist.
type ServiceInterface interface {
	ListItems(ctx context.Context, userID string) ([]models.WishlistItem, error)
	AddItem(ctx context.Context, userID string, req models.AddWishlistItemRequest) (*models.WishlistItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, req models.UpdateWishlistItemRequest) (*models.WishlistItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}

type Service struct {
	repo     RepositoryInterface
	notifier events.Publisher
}

func NewService(repo RepositoryInterface, notifier events.Publisher) ServiceInterface {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) ListItems(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListItems: %w", err)
	}
	return items, nil
}

func (s *Service) AddItem(ctx context.Context, userID string, req models.AddWishlistItemRequest) (*models.WishlistItem, error) {
	item := models.WishlistItem{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		ImageURL:    req.ImageURL,
		Note:        req.Note,
	}

	created, err := s.repo.Insert(ctx, userID, item)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, events.CollectionWishlist, events.ActionAdded, userID, created.ID)
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, req models.UpdateWishlistItemRequest) (*models.WishlistItem, error) {
	updated, err := s.repo.UpdateFields(ctx, userID, itemID, req)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ctx, events.CollectionWishlist, events.ActionUpdated, userID, itemID)
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, userID, itemID string) error {
	if err := s.repo.Delete(ctx, userID, itemID); err != nil {
		return err
	}
	s.notifier.Publish(ctx, events.CollectionWishlist, events.ActionRemoved, userID, itemID)
	return nil
}
