// Package list owns shared shopping lists, their membership, and the
// merge rule applied when items are added.
package list

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Roles a list member can hold. The owner role is assigned on creation
// and never reassigned or removed.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
)

// List is a shared shopping list.
type List struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a user attached to a list.
type Member struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is one list line. Exactly one of ProductID and CustomName is
// set: product items point into the catalog, custom items are free text
// and never carry a price.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	ListID      uuid.UUID  `json:"list_id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	CustomName  *string    `json:"custom_name,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	Quantity    int        `json:"quantity"`
	IsChecked   bool       `json:"is_checked"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Snapshot is the full content of a list at one point in time.
type Snapshot struct {
	List  List   `json:"list"`
	Items []Item `json:"items"`
}

type upsertItemParams struct {
	ListID     uuid.UUID
	ProductID  *uuid.UUID
	CustomName *string
	Quantity   int
}

type repoProvider interface {
	CreateList(ctx context.Context, name string, ownerID uuid.UUID) (List, error)
	GetList(ctx context.Context, listID uuid.UUID) (List, error)
	ListsForUser(ctx context.Context, userID uuid.UUID) ([]List, error)
	RenameList(ctx context.Context, listID uuid.UUID, name string) error
	DeleteList(ctx context.Context, listID uuid.UUID) error

	MemberRole(ctx context.Context, listID, userID uuid.UUID) (string, error)
	AddMember(ctx context.Context, listID, userID uuid.UUID, role string) error
	RemoveMember(ctx context.Context, listID, userID uuid.UUID) error
	ListMembers(ctx context.Context, listID uuid.UUID) ([]Member, error)
	FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error)

	UpsertItem(ctx context.Context, arg upsertItemParams) (Item, bool, error)
	UpdateItem(ctx context.Context, listID, itemID uuid.UUID, quantity *int, isChecked *bool) (Item, error)
	RemoveItem(ctx context.Context, listID, itemID uuid.UUID) error
	ListItems(ctx context.Context, listID uuid.UUID) ([]Item, error)
}

// Repo implements list persistence on pgx.
type Repo struct {
	Pool *pgxpool.Pool
}

var _ repoProvider = (*Repo)(nil)

// ErrNotFound is returned when a list, member, or item does not exist.
var ErrNotFound = pgx.ErrNoRows

const listColumns = `id, name, owner_id, created_at, updated_at`

// CreateList inserts the list and its owner membership in one transaction.
func (r *Repo) CreateList(ctx context.Context, name string, ownerID uuid.UUID) (List, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return List{}, err
	}
	defer tx.Rollback(ctx)

	var l List
	err = tx.QueryRow(ctx,
		`INSERT INTO shopping_lists (name, owner_id) VALUES ($1, $2) RETURNING `+listColumns,
		name, ownerID,
	).Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return List{}, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO shopping_list_members (list_id, user_id, role) VALUES ($1, $2, $3)`,
		l.ID, ownerID, RoleOwner,
	); err != nil {
		return List{}, err
	}
	return l, tx.Commit(ctx)
}

func (r *Repo) GetList(ctx context.Context, listID uuid.UUID) (List, error) {
	var l List
	err := r.Pool.QueryRow(ctx, `SELECT `+listColumns+` FROM shopping_lists WHERE id = $1`, listID).
		Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *Repo) ListsForUser(ctx context.Context, userID uuid.UUID) ([]List, error) {
	const q = `
		SELECT l.id, l.name, l.owner_id, l.created_at, l.updated_at
		FROM shopping_lists l
		JOIN shopping_list_members m ON m.list_id = l.id
		WHERE m.user_id = $1
		ORDER BY l.updated_at DESC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make([]List, 0)
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *Repo) RenameList(ctx context.Context, listID uuid.UUID, name string) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE shopping_lists SET name = $2, updated_at = now() WHERE id = $1`, listID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteList(ctx context.Context, listID uuid.UUID) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM shopping_lists WHERE id = $1`, listID)
	return err
}

func (r *Repo) MemberRole(ctx context.Context, listID, userID uuid.UUID) (string, error) {
	var role string
	err := r.Pool.QueryRow(ctx,
		`SELECT role FROM shopping_list_members WHERE list_id = $1 AND user_id = $2`,
		listID, userID,
	).Scan(&role)
	return role, err
}

func (r *Repo) AddMember(ctx context.Context, listID, userID uuid.UUID, role string) error {
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO shopping_list_members (list_id, user_id, role) VALUES ($1, $2, $3)
		 ON CONFLICT (list_id, user_id) DO NOTHING`,
		listID, userID, role,
	)
	return err
}

func (r *Repo) RemoveMember(ctx context.Context, listID, userID uuid.UUID) error {
	_, err := r.Pool.Exec(ctx,
		`DELETE FROM shopping_list_members WHERE list_id = $1 AND user_id = $2 AND role <> 'owner'`,
		listID, userID,
	)
	return err
}

func (r *Repo) ListMembers(ctx context.Context, listID uuid.UUID) ([]Member, error) {
	const q = `
		SELECT m.user_id, u.email, m.role, m.created_at
		FROM shopping_list_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.list_id = $1
		ORDER BY m.created_at`
	rows, err := r.Pool.Query(ctx, q, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repo) FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.Pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	return id, err
}

const itemReturning = `id, list_id, product_id, custom_name, quantity, is_checked, created_at, updated_at, (xmax = 0) AS inserted`

// UpsertItem inserts the item or, when the list already holds the same
// product (or the same custom name, case-insensitively), adds the
// quantity to the existing row. The boolean result reports whether a
// new row was inserted.
func (r *Repo) UpsertItem(ctx context.Context, arg upsertItemParams) (Item, bool, error) {
	var q string
	if arg.ProductID != nil {
		q = `
			INSERT INTO shopping_list_items (list_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (list_id, product_id) WHERE product_id IS NOT NULL
			DO UPDATE SET quantity = shopping_list_items.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING ` + itemReturning
	} else {
		q = `
			INSERT INTO shopping_list_items (list_id, custom_name, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (list_id, lower(custom_name)) WHERE product_id IS NULL
			DO UPDATE SET quantity = shopping_list_items.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING ` + itemReturning
	}

	var key any
	if arg.ProductID != nil {
		key = *arg.ProductID
	} else {
		key = *arg.CustomName
	}

	var item Item
	var inserted bool
	err := r.Pool.QueryRow(ctx, q, arg.ListID, key, arg.Quantity).Scan(
		&item.ID, &item.ListID, &item.ProductID, &item.CustomName,
		&item.Quantity, &item.IsChecked, &item.CreatedAt, &item.UpdatedAt, &inserted,
	)
	return item, inserted, err
}

func (r *Repo) UpdateItem(ctx context.Context, listID, itemID uuid.UUID, quantity *int, isChecked *bool) (Item, error) {
	const q = `
		UPDATE shopping_list_items
		SET quantity = COALESCE($3, quantity),
		    is_checked = COALESCE($4, is_checked),
		    updated_at = now()
		WHERE id = $2 AND list_id = $1
		RETURNING id, list_id, product_id, custom_name, quantity, is_checked, created_at, updated_at`
	var item Item
	err := r.Pool.QueryRow(ctx, q, listID, itemID, quantity, isChecked).Scan(
		&item.ID, &item.ListID, &item.ProductID, &item.CustomName,
		&item.Quantity, &item.IsChecked, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (r *Repo) RemoveItem(ctx context.Context, listID, itemID uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM shopping_list_items WHERE id = $2 AND list_id = $1`,
		listID, itemID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListItems(ctx context.Context, listID uuid.UUID) ([]Item, error) {
	const q = `
		SELECT i.id, i.list_id, i.product_id, i.custom_name, COALESCE(p.name, ''),
		       i.quantity, i.is_checked, i.created_at, i.updated_at
		FROM shopping_list_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.list_id = $1
		ORDER BY i.created_at`
	rows, err := r.Pool.Query(ctx, q, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.ListID, &item.ProductID, &item.CustomName, &item.ProductName,
			&item.Quantity, &item.IsChecked, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
