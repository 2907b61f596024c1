package list

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
	"github.com/cenovnik-bg/backend-cenovnik/internal/obs"
)

// Service enforces membership rules on top of list persistence.
type Service struct {
	repo repoProvider
}

// NewService constructs a Service instance.
func NewService(repo repoProvider) (*Service, error) {
	if repo == nil {
		return nil, errors.New("list: repo is required")
	}
	return &Service{repo: repo}, nil
}

// AddItemParams describes one item addition. Exactly one of ProductID
// and CustomName must be set.
type AddItemParams struct {
	ProductID  *uuid.UUID
	CustomName *string
	Quantity   int
}

var (
	errForbidden = common.NewAppError("FORBIDDEN", "you are not a member of this list", http.StatusForbidden, nil)
	errNotOwner  = common.NewAppError("FORBIDDEN", "only the list owner can do this", http.StatusForbidden, nil)
	errNotFound  = common.NewAppError("NOT_FOUND", "list not found", http.StatusNotFound, nil)
)

// Create makes a new list owned by the caller.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string) (List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return List{}, common.NewAppError("VALIDATION_ERROR", "name is required", http.StatusBadRequest, nil)
	}
	l, err := s.repo.CreateList(ctx, name, userID)
	if err != nil {
		return List{}, fmt.Errorf("create list: %w", err)
	}
	return l, nil
}

// Lists returns every list the caller belongs to.
func (s *Service) Lists(ctx context.Context, userID uuid.UUID) ([]List, error) {
	lists, err := s.repo.ListsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lists for user: %w", err)
	}
	return lists, nil
}

// Get returns the list with its items, members only.
func (s *Service) Get(ctx context.Context, userID, listID uuid.UUID) (Snapshot, error) {
	if _, err := s.requireMember(ctx, listID, userID); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(ctx, listID)
}

// Snapshot loads a list and its items without a membership check. The
// caller is responsible for authorization.
func (s *Service) Snapshot(ctx context.Context, listID uuid.UUID) (Snapshot, error) {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Snapshot{}, errNotFound
		}
		return Snapshot{}, fmt.Errorf("get list: %w", err)
	}
	items, err := s.repo.ListItems(ctx, listID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list items: %w", err)
	}
	return Snapshot{List: l, Items: items}, nil
}

// Rename changes the list name, owner only.
func (s *Service) Rename(ctx context.Context, userID, listID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.NewAppError("VALIDATION_ERROR", "name is required", http.StatusBadRequest, nil)
	}
	if err := s.requireOwner(ctx, listID, userID); err != nil {
		return err
	}
	if err := s.repo.RenameList(ctx, listID, name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errNotFound
		}
		return fmt.Errorf("rename list: %w", err)
	}
	return nil
}

// Delete removes the list and everything attached to it, owner only.
func (s *Service) Delete(ctx context.Context, userID, listID uuid.UUID) error {
	if err := s.requireOwner(ctx, listID, userID); err != nil {
		return err
	}
	if err := s.repo.DeleteList(ctx, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// AddItem applies the merge rule: adding an item that already exists in
// the list (same product, or same custom name ignoring case) increases
// the existing row's quantity instead of creating a duplicate.
func (s *Service) AddItem(ctx context.Context, userID, listID uuid.UUID, arg AddItemParams) (Item, error) {
	if _, err := s.requireMember(ctx, listID, userID); err != nil {
		return Item{}, err
	}

	hasProduct := arg.ProductID != nil
	name := ""
	if arg.CustomName != nil {
		name = strings.TrimSpace(*arg.CustomName)
	}
	if hasProduct == (name != "") {
		return Item{}, common.NewAppError("VALIDATION_ERROR", "provide exactly one of product_id and custom_name", http.StatusBadRequest, nil)
	}
	if arg.Quantity == 0 {
		arg.Quantity = 1
	}
	if arg.Quantity < 1 {
		return Item{}, common.NewAppError("VALIDATION_ERROR", "quantity must be positive", http.StatusBadRequest, nil)
	}

	params := upsertItemParams{ListID: listID, ProductID: arg.ProductID, Quantity: arg.Quantity}
	if !hasProduct {
		params.CustomName = &name
	}
	item, inserted, err := s.repo.UpsertItem(ctx, params)
	if err != nil {
		return Item{}, fmt.Errorf("upsert item: %w", err)
	}
	if obs.ListMergeTotal != nil {
		outcome := "merged"
		if inserted {
			outcome = "inserted"
		}
		obs.ListMergeTotal.WithLabelValues(outcome).Inc()
	}
	return item, nil
}

// UpdateItem changes quantity or checked state of one item.
func (s *Service) UpdateItem(ctx context.Context, userID, listID, itemID uuid.UUID, quantity *int, isChecked *bool) (Item, error) {
	if _, err := s.requireMember(ctx, listID, userID); err != nil {
		return Item{}, err
	}
	if quantity != nil && *quantity < 1 {
		return Item{}, common.NewAppError("VALIDATION_ERROR", "quantity must be positive", http.StatusBadRequest, nil)
	}
	item, err := s.repo.UpdateItem(ctx, listID, itemID, quantity, isChecked)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Item{}, common.NewAppError("NOT_FOUND", "item not found", http.StatusNotFound, err)
		}
		return Item{}, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// RemoveItem deletes one item from the list.
func (s *Service) RemoveItem(ctx context.Context, userID, listID, itemID uuid.UUID) error {
	if _, err := s.requireMember(ctx, listID, userID); err != nil {
		return err
	}
	if err := s.repo.RemoveItem(ctx, listID, itemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewAppError("NOT_FOUND", "item not found", http.StatusNotFound, err)
		}
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// Members returns list membership, members only.
func (s *Service) Members(ctx context.Context, userID, listID uuid.UUID) ([]Member, error) {
	if _, err := s.requireMember(ctx, listID, userID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// AddMember shares the list with another user by email, owner only.
func (s *Service) AddMember(ctx context.Context, userID, listID uuid.UUID, email string) error {
	if err := s.requireOwner(ctx, listID, userID); err != nil {
		return err
	}
	normalized := strings.TrimSpace(strings.ToLower(email))
	memberID, err := s.repo.FindUserIDByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewAppError("NOT_FOUND", "no user with this email", http.StatusNotFound, err)
		}
		return fmt.Errorf("find user: %w", err)
	}
	if err := s.repo.AddMember(ctx, listID, memberID, RoleEditor); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember unshares the list, owner only. The owner membership
// itself cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, userID, listID, memberID uuid.UUID) error {
	if err := s.requireOwner(ctx, listID, userID); err != nil {
		return err
	}
	if memberID == userID {
		return common.NewAppError("VALIDATION_ERROR", "the owner cannot leave their own list", http.StatusBadRequest, nil)
	}
	if err := s.repo.RemoveMember(ctx, listID, memberID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// RequireMember exposes the membership check for other packages.
func (s *Service) RequireMember(ctx context.Context, listID, userID uuid.UUID) error {
	_, err := s.requireMember(ctx, listID, userID)
	return err
}

func (s *Service) requireMember(ctx context.Context, listID, userID uuid.UUID) (string, error) {
	role, err := s.repo.MemberRole(ctx, listID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, lerr := s.repo.GetList(ctx, listID); errors.Is(lerr, ErrNotFound) {
				return "", errNotFound
			}
			return "", errForbidden
		}
		return "", fmt.Errorf("member role: %w", err)
	}
	return role, nil
}

func (s *Service) requireOwner(ctx context.Context, listID, userID uuid.UUID) error {
	role, err := s.requireMember(ctx, listID, userID)
	if err != nil {
		return err
	}
	if role != RoleOwner {
		return errNotOwner
	}
	return nil
}
