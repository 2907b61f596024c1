package list

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

type fakeRepo struct {
	lists   map[uuid.UUID]List
	members map[uuid.UUID]map[uuid.UUID]string
	items   map[uuid.UUID][]Item
	users   map[string]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		lists:   map[uuid.UUID]List{},
		members: map[uuid.UUID]map[uuid.UUID]string{},
		items:   map[uuid.UUID][]Item{},
		users:   map[string]uuid.UUID{},
	}
}

func (f *fakeRepo) CreateList(_ context.Context, name string, ownerID uuid.UUID) (List, error) {
	l := List{ID: uuid.New(), Name: name, OwnerID: ownerID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.lists[l.ID] = l
	f.members[l.ID] = map[uuid.UUID]string{ownerID: RoleOwner}
	return l, nil
}

func (f *fakeRepo) GetList(_ context.Context, listID uuid.UUID) (List, error) {
	l, ok := f.lists[listID]
	if !ok {
		return List{}, ErrNotFound
	}
	return l, nil
}

func (f *fakeRepo) ListsForUser(_ context.Context, userID uuid.UUID) ([]List, error) {
	out := make([]List, 0)
	for listID, members := range f.members {
		if _, ok := members[userID]; ok {
			out = append(out, f.lists[listID])
		}
	}
	return out, nil
}

func (f *fakeRepo) RenameList(_ context.Context, listID uuid.UUID, name string) error {
	l, ok := f.lists[listID]
	if !ok {
		return ErrNotFound
	}
	l.Name = name
	f.lists[listID] = l
	return nil
}

func (f *fakeRepo) DeleteList(_ context.Context, listID uuid.UUID) error {
	delete(f.lists, listID)
	delete(f.members, listID)
	delete(f.items, listID)
	return nil
}

func (f *fakeRepo) MemberRole(_ context.Context, listID, userID uuid.UUID) (string, error) {
	role, ok := f.members[listID][userID]
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func (f *fakeRepo) AddMember(_ context.Context, listID, userID uuid.UUID, role string) error {
	if _, ok := f.members[listID][userID]; !ok {
		f.members[listID][userID] = role
	}
	return nil
}

func (f *fakeRepo) RemoveMember(_ context.Context, listID, userID uuid.UUID) error {
	if f.members[listID][userID] != RoleOwner {
		delete(f.members[listID], userID)
	}
	return nil
}

func (f *fakeRepo) ListMembers(_ context.Context, listID uuid.UUID) ([]Member, error) {
	out := make([]Member, 0)
	for userID, role := range f.members[listID] {
		out = append(out, Member{UserID: userID, Role: role})
	}
	return out, nil
}

func (f *fakeRepo) FindUserIDByEmail(_ context.Context, email string) (uuid.UUID, error) {
	id, ok := f.users[email]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func (f *fakeRepo) UpsertItem(_ context.Context, arg upsertItemParams) (Item, bool, error) {
	items := f.items[arg.ListID]
	for i, existing := range items {
		same := false
		if arg.ProductID != nil && existing.ProductID != nil && *existing.ProductID == *arg.ProductID {
			same = true
		}
		if arg.CustomName != nil && existing.CustomName != nil &&
			strings.EqualFold(*existing.CustomName, *arg.CustomName) {
			same = true
		}
		if same {
			items[i].Quantity += arg.Quantity
			return items[i], false, nil
		}
	}
	item := Item{
		ID:         uuid.New(),
		ListID:     arg.ListID,
		ProductID:  arg.ProductID,
		CustomName: arg.CustomName,
		Quantity:   arg.Quantity,
	}
	f.items[arg.ListID] = append(items, item)
	return item, true, nil
}

func (f *fakeRepo) UpdateItem(_ context.Context, listID, itemID uuid.UUID, quantity *int, isChecked *bool) (Item, error) {
	for i, item := range f.items[listID] {
		if item.ID == itemID {
			if quantity != nil {
				f.items[listID][i].Quantity = *quantity
			}
			if isChecked != nil {
				f.items[listID][i].IsChecked = *isChecked
			}
			return f.items[listID][i], nil
		}
	}
	return Item{}, ErrNotFound
}

func (f *fakeRepo) RemoveItem(_ context.Context, listID, itemID uuid.UUID) error {
	for i, item := range f.items[listID] {
		if item.ID == itemID {
			f.items[listID] = append(f.items[listID][:i], f.items[listID][i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) ListItems(_ context.Context, listID uuid.UUID) ([]Item, error) {
	return f.items[listID], nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestAddItemMergesSameProduct(t *testing.T) {
	svc, repo := newTestService(t)
	owner := uuid.New()
	l, err := svc.Create(context.Background(), owner, "Седмично пазаруване")
	require.NoError(t, err)

	productID := uuid.New()
	first, err := svc.AddItem(context.Background(), owner, l.ID, AddItemParams{ProductID: &productID, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, 2, first.Quantity)

	second, err := svc.AddItem(context.Background(), owner, l.ID, AddItemParams{ProductID: &productID, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same product lands on the same row")
	require.Equal(t, 4, second.Quantity)
	require.Len(t, repo.items[l.ID], 1)
}

func TestAddItemMergesCustomNameCaseInsensitively(t *testing.T) {
	svc, repo := newTestService(t)
	owner := uuid.New()
	l, err := svc.Create(context.Background(), owner, "Списък")
	require.NoError(t, err)

	name := "Хляб"
	_, err = svc.AddItem(context.Background(), owner, l.ID, AddItemParams{CustomName: &name})
	require.NoError(t, err)

	lower := "хляб"
	item, err := svc.AddItem(context.Background(), owner, l.ID, AddItemParams{CustomName: &lower, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 4, item.Quantity)
	require.Len(t, repo.items[l.ID], 1)
}

func TestAddItemRejectsBothOrNeither(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	l, err := svc.Create(context.Background(), owner, "Списък")
	require.NoError(t, err)

	productID := uuid.New()
	name := "Хляб"
	var appErr *common.AppError

	_, err = svc.AddItem(context.Background(), owner, l.ID, AddItemParams{ProductID: &productID, CustomName: &name})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.AddItem(context.Background(), owner, l.ID, AddItemParams{})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	l, err := svc.Create(context.Background(), owner, "Списък")
	require.NoError(t, err)

	productID := uuid.New()
	item, err := svc.AddItem(context.Background(), owner, l.ID, AddItemParams{ProductID: &productID})
	require.NoError(t, err)
	require.Equal(t, 1, item.Quantity)
}

func TestNonMemberIsForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	stranger := uuid.New()
	l, err := svc.Create(context.Background(), owner, "Списък")
	require.NoError(t, err)

	productID := uuid.New()
	_, err = svc.AddItem(context.Background(), stranger, l.ID, AddItemParams{ProductID: &productID})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestUnknownListIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestEditorCannotRenameOrDelete(t *testing.T) {
	svc, repo := newTestService(t)
	owner := uuid.New()
	editor := uuid.New()
	l, err := svc.Create(context.Background(), owner, "Списък")
	require.NoError(t, err)
	repo.members[l.ID][editor] = RoleEditor

	var appErr *common.AppError
	err = svc.Rename(context.Background(), editor, l.ID, "Ново име")
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "FORBIDDEN", appErr.Code)

	err = svc.Delete(context.Background(), editor, l.ID)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestAddMemberByEmail(t *testing.T) {
	svc, repo := newTestService(t)
	owner := uuid.New()
	friend := uuid.New()
	repo.users["friend@example.bg"] = friend

	l, err := svc.Create(context.Background(), owner, "Списък")
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(context.Background(), owner, l.ID, " Friend@Example.BG "))
	require.Equal(t, RoleEditor, repo.members[l.ID][friend])

	err = svc.AddMember(context.Background(), owner, l.ID, "nobody@example.bg")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestOwnerCannotRemoveSelf(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	l, err := svc.Create(context.Background(), owner, "Списък")
	require.NoError(t, err)

	err = svc.RemoveMember(context.Background(), owner, l.ID, owner)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}
