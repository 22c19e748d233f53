package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/store"
)

func (d *DB) CreateItem(ctx context.Context, create *store.Item) (*store.Item, error) {
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}

	stmt := `
		INSERT INTO item (uid, owner_id, title, description, category, status, location, date_reported, image_url, created_ts, updated_ts)
		VALUES (` + placeholders(11) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.OwnerID,
		create.Title,
		create.Description,
		create.Category,
		create.Status,
		create.Location,
		create.DateReported,
		create.ImageURL,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create item")
	}

	return create, nil
}

func (d *DB) ListItems(ctx context.Context, find *store.FindItem) ([]*store.Item, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.OwnerID != nil {
		where, args = append(where, "owner_id = ?"), append(args, *find.OwnerID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}
	if find.ExcludeID != nil {
		where, args = append(where, "id != ?"), append(args, *find.ExcludeID)
	}
	if find.LocationContains != nil {
		where, args = append(where, "LOWER(location) LIKE ?"), append(args, "%"+strings.ToLower(*find.LocationContains)+"%")
	}

	query := `
		SELECT id, uid, owner_id, title, description, category, status, location, date_reported, image_url, created_ts, updated_ts
		FROM item
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}
	defer rows.Close()

	list := []*store.Item{}
	for rows.Next() {
		var item store.Item
		if err := rows.Scan(
			&item.ID,
			&item.UID,
			&item.OwnerID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.Status,
			&item.Location,
			&item.DateReported,
			&item.ImageURL,
			&item.CreatedTs,
			&item.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}
		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) UpdateItem(ctx context.Context, update *store.UpdateItem) error {
	set, args := []string{}, []any{}

	if update.Status != nil {
		set, args = append(set, "status = ?"), append(args, *update.Status)
	}
	if update.ImageURL != nil {
		set, args = append(set, "image_url = ?"), append(args, *update.ImageURL)
	}
	updatedTs := time.Now().Unix()
	if update.UpdatedTs != nil {
		updatedTs = *update.UpdatedTs
	}
	set, args = append(set, "updated_ts = ?"), append(args, updatedTs)
	args = append(args, update.ID)

	stmt := `UPDATE item SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update item")
	}
	return nil
}

func (d *DB) ListItemsWithoutFeatures(ctx context.Context, find *store.FindItemsWithoutFeatures) ([]*store.Item, error) {
	limit := find.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT i.id, i.uid, i.owner_id, i.title, i.description, i.category, i.status, i.location, i.date_reported, i.image_url, i.created_ts, i.updated_ts
		FROM item i
		LEFT JOIN item_feature f ON f.item_id = i.id AND f.model = ?
		WHERE f.id IS NULL
			AND i.status IN ('lost', 'found')
			AND i.image_url != ''
		ORDER BY i.created_ts ASC
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, find.Model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items without features")
	}
	defer rows.Close()

	list := []*store.Item{}
	for rows.Next() {
		var item store.Item
		if err := rows.Scan(
			&item.ID,
			&item.UID,
			&item.OwnerID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.Status,
			&item.Location,
			&item.DateReported,
			&item.ImageURL,
			&item.CreatedTs,
			&item.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}
		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
