package repository

import (
	"context"
	"encoding/json"

	"jobboard/internal/database"
	"jobboard/internal/pkg/apifilter"
)

// find executes a composed filter query. Each row is already the JSON document to return.
func find(ctx context.Context, db database.Querier, q apifilter.Query) ([]json.RawMessage, error) {
	sql, args := q.SQL()
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]json.RawMessage, 0)
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(b))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
