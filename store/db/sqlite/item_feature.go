package sqlite

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/store"
)

// Feature vectors are stored as JSON text. Similarity search over them is
// not supported here; the postgres driver provides it via pgvector, and the
// matching service falls back to an in-process scan for sqlite.

func (d *DB) UpsertItemFeature(ctx context.Context, feature *store.ItemFeature) (*store.ItemFeature, error) {
	now := time.Now().Unix()
	if feature.CreatedTs == 0 {
		feature.CreatedTs = now
	}
	feature.UpdatedTs = now

	raw, err := json.Marshal(feature.Vector)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal feature vector")
	}

	stmt := `
		INSERT INTO item_feature (item_id, vector, model, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (item_id, model)
		DO UPDATE SET
			vector = EXCLUDED.vector,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		feature.ItemID,
		string(raw),
		feature.Model,
		feature.CreatedTs,
		feature.UpdatedTs,
	).Scan(&feature.ID, &feature.CreatedTs, &feature.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to upsert item feature")
	}

	return feature, nil
}

func (d *DB) ListItemFeatures(ctx context.Context, find *store.FindItemFeature) ([]*store.ItemFeature, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ItemID != nil {
		where, args = append(where, "item_id = ?"), append(args, *find.ItemID)
	}
	if find.Model != nil {
		where, args = append(where, "model = ?"), append(args, *find.Model)
	}

	query := `
		SELECT id, item_id, vector, model, created_ts, updated_ts
		FROM item_feature
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list item features")
	}
	defer rows.Close()

	list := []*store.ItemFeature{}
	for rows.Next() {
		var feature store.ItemFeature
		var raw string
		if err := rows.Scan(
			&feature.ID,
			&feature.ItemID,
			&raw,
			&feature.Model,
			&feature.CreatedTs,
			&feature.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan item feature")
		}
		if err := json.Unmarshal([]byte(raw), &feature.Vector); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal feature vector")
		}
		list = append(list, &feature)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) DeleteItemFeature(ctx context.Context, itemID int32) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM item_feature WHERE item_id = ?`, itemID); err != nil {
		return errors.Wrap(err, "failed to delete item feature")
	}
	return nil
}

// SearchItemsByVector is NOT supported for SQLite.
// Vector similarity search requires PostgreSQL with the pgvector extension.
func (d *DB) SearchItemsByVector(context.Context, *store.VectorSearchOptions) ([]*store.ItemWithScore, error) {
	return nil, errors.New("vector search requires PostgreSQL with pgvector extension")
}
