package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/store"
)

func (d *DB) CreateMatch(ctx context.Context, create *store.Match) (*store.Match, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	if create.Status == "" {
		create.Status = store.MatchStatusPending
	}

	// ON CONFLICT DO NOTHING with RETURNING yields no row when the unique
	// pair index rejects the insert, which surfaces the concurrent
	// check-then-insert race as a regular "already exists" outcome.
	stmt := `
		INSERT INTO match_record (lost_item_id, found_item_id, match_score, status, created_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (lost_item_id, found_item_id) DO NOTHING
		RETURNING id
	`
	err := d.db.QueryRowContext(ctx, stmt,
		create.LostItemID,
		create.FoundItemID,
		create.MatchScore,
		create.Status,
		create.CreatedTs,
	).Scan(&create.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Pair already matched.
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to create match")
	}

	return create, nil
}

func (d *DB) ListMatches(ctx context.Context, find *store.FindMatch) ([]*store.Match, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.LostItemID != nil {
		where, args = append(where, "lost_item_id = "+placeholder(len(args)+1)), append(args, *find.LostItemID)
	}
	if find.FoundItemID != nil {
		where, args = append(where, "found_item_id = "+placeholder(len(args)+1)), append(args, *find.FoundItemID)
	}
	if find.ItemID != nil {
		p1, p2 := placeholder(len(args)+1), placeholder(len(args)+2)
		where, args = append(where, "(lost_item_id = "+p1+" OR found_item_id = "+p2+")"), append(args, *find.ItemID, *find.ItemID)
	}
	if find.Status != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, *find.Status)
	}

	query := `
		SELECT id, lost_item_id, found_item_id, match_score, status, created_ts
		FROM match_record
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list matches")
	}
	defer rows.Close()

	list := []*store.Match{}
	for rows.Next() {
		var match store.Match
		if err := rows.Scan(
			&match.ID,
			&match.LostItemID,
			&match.FoundItemID,
			&match.MatchScore,
			&match.Status,
			&match.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan match")
		}
		list = append(list, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) UpdateMatch(ctx context.Context, update *store.UpdateMatch) error {
	set, args := []string{}, []any{}

	if update.Status != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *update.Status)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, update.ID)

	stmt := `UPDATE match_record SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update match")
	}
	return nil
}
