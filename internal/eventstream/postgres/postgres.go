// Package postgres implements eventstream.Stream against the event_queue
// table, fanning a single event out to N consumer rows inside one
// pgx.Batch round trip.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuemby/fabriq/internal/model"
)

// DB is the minimal pgx surface Stream needs, satisfied by both
// *pgxpool.Pool and a pgxmock connection in tests.
type DB interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Stream is a pgxpool-backed eventstream.Stream.
type Stream struct {
	pool DB
}

// New wraps an already-connected pool. The event_queue table is created
// by the storage/postgres schema, since both packages share one database.
func New(pool *pgxpool.Pool) *Stream {
	return &Stream{pool: pool}
}

func (s *Stream) Send(ctx context.Context, ev model.Event, consumerIDs []string) error {
	batch := &pgx.Batch{}
	for _, consumerID := range consumerIDs {
		id := model.MakeEventID(ev.OperationID, consumerID)
		batch.Queue(`
			INSERT INTO event_queue
				(id, event_timestamp, consumer_id, operation_id, model_type, event_type,
				 serialized_current_model, serialized_previous_model)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, id, ev.Timestamp, consumerID, ev.OperationID, string(ev.ModelType), string(ev.EventType),
			ev.CurrentModel, ev.PreviousModel)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range consumerIDs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stream) Receive(ctx context.Context, consumerID string, limit int) ([]model.Event, error) {
	query := `
		SELECT id, event_timestamp, consumer_id, operation_id, model_type, event_type,
		       serialized_current_model, serialized_previous_model
		FROM event_queue
		WHERE consumer_id = $1
		ORDER BY event_timestamp ASC, id ASC
	`
	args := []any{consumerID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var ev model.Event
		var modelType, eventType string
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.ConsumerID, &ev.OperationID,
			&modelType, &eventType, &ev.CurrentModel, &ev.PreviousModel); err != nil {
			return nil, err
		}
		ev.ModelType = model.ModelType(modelType)
		ev.EventType = model.EventType(eventType)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Stream) Delete(ctx context.Context, consumerID string, eventID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM event_queue WHERE consumer_id = $1 AND id = $2`, consumerID, eventID)
	return err
}

func (s *Stream) Len(ctx context.Context, consumerID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM event_queue WHERE consumer_id = $1`, consumerID).Scan(&n)
	return n, err
}
