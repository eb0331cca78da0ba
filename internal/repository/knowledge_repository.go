package repository

import (
	"context"

	"mediskill/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// KnowledgeRepository is the vector memory store behind retrieval: seeded
// knowledge-base entries plus remembered past conversations.
type KnowledgeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *KnowledgeRepository) Create(ctx context.Context, entry *models.MemoryEntry) error {
	query := squirrel.Insert("memory_entries").
		Columns("id", "type", "content", "embedding", "source", "created_at").
		Values(entry.ID, entry.Type, entry.Content, pgvector.NewVector(entry.Embedding), entry.Source, entry.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SearchSimilar returns the topK entries closest to the query embedding by
// cosine distance. An empty store yields an empty result, not an error.
func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]*models.MemoryEntry, error) {
	sql := `SELECT id, type, content, source, created_at
		FROM memory_entries
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`

	rows, err := r.db.Query(ctx, sql, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// TextSearch is the fallback when no query embedding is available.
func (r *KnowledgeRepository) TextSearch(ctx context.Context, queryText string, topK int) ([]*models.MemoryEntry, error) {
	query := squirrel.Select("id", "type", "content", "source", "created_at").
		From("memory_entries").
		Where(squirrel.ILike{"content": "%" + queryText + "%"}).
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// DeleteBySource drops every entry with the given source. Used to wipe
// dynamic conversational memory while keeping the seeded knowledge base.
func (r *KnowledgeRepository) DeleteBySource(ctx context.Context, source string) (int64, error) {
	query := squirrel.Delete("memory_entries").
		Where(squirrel.Eq{"source": source}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEntries(rows rowScanner) ([]*models.MemoryEntry, error) {
	var results []*models.MemoryEntry
	for rows.Next() {
		var e models.MemoryEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Content, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &e)
	}
	return results, rows.Err()
}
