package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `
		INSERT INTO user (email, full_name, phone, points, items_returned, created_ts)
		VALUES (` + placeholders(6) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.Email,
		create.FullName,
		create.Phone,
		create.Points,
		create.ItemsReturned,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}

	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Email != nil {
		where, args = append(where, "email = ?"), append(args, *find.Email)
	}

	query := `
		SELECT id, email, full_name, phone, points, items_returned, created_ts
		FROM user
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	list := []*store.User{}
	for rows.Next() {
		var user store.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&user.Phone,
			&user.Points,
			&user.ItemsReturned,
			&user.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		list = append(list, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}

	if update.FullName != nil {
		set, args = append(set, "full_name = ?"), append(args, *update.FullName)
	}
	if update.Phone != nil {
		set, args = append(set, "phone = ?"), append(args, *update.Phone)
	}
	if len(set) > 0 {
		args = append(args, update.ID)
		stmt := `UPDATE user SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
		if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
			return nil, errors.Wrap(err, "failed to update user")
		}
	}

	users, err := d.ListUsers(ctx, &store.FindUser{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.Errorf("user %d not found", update.ID)
	}
	return users[0], nil
}

func (d *DB) AddReturnPoints(ctx context.Context, userID int32, points int) error {
	stmt := `
		UPDATE user
		SET points = points + ?, items_returned = items_returned + 1
		WHERE id = ?
	`
	result, err := d.db.ExecContext(ctx, stmt, points, userID)
	if err != nil {
		return errors.Wrap(err, "failed to add return points")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return errors.Errorf("user %d not found", userID)
	}
	return nil
}
