package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"mediskill/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// HistoryRepository persists completed turns. The core only needs append and
// full-read semantics; turns are returned in completion order and are never
// updated or reordered.
type HistoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHistoryRepository(db *pgxpool.Pool, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *HistoryRepository) AppendTurn(ctx context.Context, turn *models.Turn) error {
	snippets, err := json.Marshal(turn.Snippets)
	if err != nil {
		return fmt.Errorf("failed to encode snippets: %w", err)
	}

	query := squirrel.Insert("turns").
		Columns("id", "session_id", "user_text", "intent", "response_mode", "panel_id", "snippets", "reply", "created_at").
		Values(turn.ID, turn.SessionID, turn.UserText, turn.Intent, turn.ResponseMode, turn.PanelID, snippets, turn.Reply, turn.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *HistoryRepository) LoadHistory(ctx context.Context, sessionID string) ([]models.Turn, error) {
	query := squirrel.Select("id", "session_id", "user_text", "intent", "response_mode", "panel_id", "snippets", "reply", "created_at").
		From("turns").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("seq ASC").
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

	var turns []models.Turn
	for rows.Next() {
		var t models.Turn
		var snippets []byte
		if err := rows.Scan(
			&t.ID, &t.SessionID, &t.UserText, &t.Intent, &t.ResponseMode, &t.PanelID, &snippets, &t.Reply, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(snippets) > 0 {
			if err := json.Unmarshal(snippets, &t.Snippets); err != nil {
				return nil, fmt.Errorf("failed to decode snippets: %w", err)
			}
		}
		turns = append(turns, t)
	}

	return turns, rows.Err()
}

// DeleteHistory removes one session's turns. The knowledge store is not
// touched.
func (r *HistoryRepository) DeleteHistory(ctx context.Context, sessionID string) error {
	query := squirrel.Delete("turns").
		Where(squirrel.Eq{"session_id": sessionID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
