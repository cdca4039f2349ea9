package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ashishbaghudana/relna/internal/application/tagging"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

// AnnotationRepository persists tagging runs and their annotations.
//
// Schema:
//
//	tagging_runs(id uuid primary key, started_at, completed_at,
//	             documents int, entities int, gold bool,
//	             use_normalization bool)
//	annotations(run_id uuid references tagging_runs, document_id text,
//	            part_index int, part_offset int, text text,
//	            category text, confidence float8, primary_id text,
//	            secondary_ids text[], gold bool)
type AnnotationRepository struct {
	pool   beginner
	logger logging.Logger
}

// beginner is what the repository needs from pgxpool.Pool.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewAnnotationRepository builds the repository over an established pool.
func NewAnnotationRepository(pool beginner, log logging.Logger) *AnnotationRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AnnotationRepository{pool: pool, logger: log.Named("annotations")}
}

// SaveRun stores the run row and bulk-inserts its annotations in one
// transaction, using the COPY protocol for the annotation rows.
func (r *AnnotationRepository) SaveRun(ctx context.Context, run *tagging.Run, records []*tagging.AnnotationRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tagging_runs (
			id, started_at, completed_at, documents, entities,
			gold, use_normalization
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		run.ID, run.StartedAt, run.CompletedAt, run.Documents, run.Entities,
		run.Gold, run.UseNormalization,
	)
	if err != nil {
		r.logger.Error("AnnotationRepository.SaveRun", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert run")
	}

	if len(records) > 0 {
		rows := make([][]interface{}, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []interface{}{
				rec.RunID, rec.DocumentID, rec.PartIndex, rec.Offset,
				rec.Text, rec.Category, rec.Confidence, rec.PrimaryID,
				rec.SecondaryIDs, rec.Gold,
			})
		}

		copied, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"annotations"},
			[]string{
				"run_id", "document_id", "part_index", "part_offset",
				"text", "category", "confidence", "primary_id",
				"secondary_ids", "gold",
			},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			r.logger.Error("AnnotationRepository.SaveRun", logging.Err(err))
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to copy annotations")
		}
		r.logger.Debug("annotations copied", logging.Int("count", int(copied)))
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit run")
	}
	return nil
}

// ListByDocument returns every persisted annotation for a document,
// newest run first, part order within a run.
func (r *AnnotationRepository) ListByDocument(ctx context.Context, documentID string) ([]*tagging.AnnotationRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.run_id, a.document_id, a.part_index, a.part_offset,
		       a.text, a.category, a.confidence, a.primary_id,
		       a.secondary_ids, a.gold
		FROM annotations a
		JOIN tagging_runs r ON r.id = a.run_id
		WHERE a.document_id = $1
		ORDER BY r.started_at DESC, a.part_index, a.part_offset`,
		documentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query annotations")
	}
	defer rows.Close()

	var records []*tagging.AnnotationRecord
	for rows.Next() {
		rec := &tagging.AnnotationRecord{}
		if err := rows.Scan(
			&rec.RunID, &rec.DocumentID, &rec.PartIndex, &rec.Offset,
			&rec.Text, &rec.Category, &rec.Confidence, &rec.PrimaryID,
			&rec.SecondaryIDs, &rec.Gold,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan annotation")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read annotations")
	}
	return records, nil
}
