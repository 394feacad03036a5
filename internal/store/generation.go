package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var generationColumns = []string{
	"uuid", "sequence", "created_at", "grade", "topic",
	"review_status", "refined", "model", "latency_ms", "result",
}

type generationRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *generationRepo) Save(ctx context.Context, rec *GenerationRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("generation record has no ID")
	}
	if rec.Sequence == 0 {
		seqNum, err := r.seq.Next(ctx)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		rec.Sequence = seqNum
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query, args := builder.Insert(tableGenerations).
		Columns(generationColumns...).
		Values(
			rec.ID, rec.Sequence, rec.CreatedAt.UTC().UnixMilli(), rec.Grade, rec.Topic,
			rec.ReviewStatus, rec.Refined, rec.Model, rec.LatencyMs, string(rec.Result),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save generation: %w", err)
	}
	return nil
}

func (r *generationRepo) List(ctx context.Context, limit int) ([]GenerationRecord, error) {
	sel := builder.Select(generationColumns...).
		From(builder.Table(tableGenerations)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *generationRepo) Get(ctx context.Context, id string) (*GenerationRecord, error) {
	query, args := builder.Select(generationColumns...).
		From(builder.Table(tableGenerations)).
		Where(entsql.EQ("uuid", id)).
		Query()

	rec, err := scanGeneration(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func scanGeneration(s rowScanner) (*GenerationRecord, error) {
	var rec GenerationRecord
	var created int64
	var result string
	err := s.Scan(
		&rec.ID, &rec.Sequence, &created, &rec.Grade, &rec.Topic,
		&rec.ReviewStatus, &rec.Refined, &rec.Model, &rec.LatencyMs, &result,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan generation: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.Result = []byte(result)
	return &rec, nil
}
