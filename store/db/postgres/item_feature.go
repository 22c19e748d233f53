package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/store"
)

func (d *DB) UpsertItemFeature(ctx context.Context, feature *store.ItemFeature) (*store.ItemFeature, error) {
	now := time.Now().Unix()
	if feature.CreatedTs == 0 {
		feature.CreatedTs = now
	}
	feature.UpdatedTs = now

	stmt := `
		INSERT INTO item_feature (item_id, vector, model, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (item_id, model)
		DO UPDATE SET
			vector = EXCLUDED.vector,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`
	vector := pgvector.NewVector(feature.Vector)
	if err := d.db.QueryRowContext(ctx, stmt,
		feature.ItemID,
		vector,
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
		where, args = append(where, "item_id = "+placeholder(len(args)+1)), append(args, *find.ItemID)
	}
	if find.Model != nil {
		where, args = append(where, "model = "+placeholder(len(args)+1)), append(args, *find.Model)
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
		var vector pgvector.Vector
		if err := rows.Scan(
			&feature.ID,
			&feature.ItemID,
			&vector,
			&feature.Model,
			&feature.CreatedTs,
			&feature.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan item feature")
		}
		feature.Vector = vector.Slice()
		list = append(list, &feature)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) DeleteItemFeature(ctx context.Context, itemID int32) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM item_feature WHERE item_id = $1`, itemID); err != nil {
		return errors.Wrap(err, "failed to delete item feature")
	}
	return nil
}

// SearchItemsByVector performs vector similarity search using pgvector.
func (d *DB) SearchItemsByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ItemWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	// The <=> operator computes cosine distance (1 - cosine_similarity),
	// so ordering by distance ASC yields most similar first.
	query := `
		SELECT
			i.id, i.uid, i.owner_id, i.title, i.description, i.category, i.status,
			i.location, i.date_reported, i.image_url, i.created_ts, i.updated_ts,
			1 - (f.vector <=> $1) AS score
		FROM item i
		INNER JOIN item_feature f ON i.id = f.item_id
		WHERE i.status = $2
		ORDER BY f.vector <=> $1
		LIMIT $3
	`
	vector := pgvector.NewVector(opts.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, opts.Status, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.ItemWithScore{}
	for rows.Next() {
		var result store.ItemWithScore
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
			&result.Score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		result.Item = &item
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
