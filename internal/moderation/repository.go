package moderation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"artisanlink/internal/db"
	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, input ProposeInput) (*Log, error)
	List(ctx context.Context, status *Status) ([]*Log, error)
	Get(ctx context.Context, id string) (*Log, error)
	// Approve applies the proposal to the live row and resolves the log in
	// one transaction.
	Approve(ctx context.Context, id string, reviewer uint) (*Log, error)
	Reject(ctx context.Context, id string, reviewer uint) (*Log, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const logColumns = `id, table_name, record_id, old_values, new_values, requested_by,
		status, created_at, reviewed_at, reviewed_by`

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(s scanner) (*Log, error) {
	var (
		l          Log
		oldRaw     []byte
		newRaw     []byte
		reviewedAt sql.NullTime
		reviewedBy sql.NullInt64
	)
	err := s.Scan(&l.ID, &l.TableName, &l.RecordID, &oldRaw, &newRaw, &l.RequestedBy,
		&l.Status, &l.CreatedAt, &reviewedAt, &reviewedBy)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(oldRaw, &l.OldValues); err != nil {
		return nil, fmt.Errorf("decode old_values of %s: %w", l.ID, err)
	}
	if err := json.Unmarshal(newRaw, &l.NewValues); err != nil {
		return nil, fmt.Errorf("decode new_values of %s: %w", l.ID, err)
	}
	if reviewedAt.Valid {
		l.ReviewedAt = &reviewedAt.Time
	}
	if reviewedBy.Valid {
		v := uint(reviewedBy.Int64)
		l.ReviewedBy = &v
	}
	l.ChangedFields = ChangedFields(l.OldValues, l.NewValues)
	return &l, nil
}

func (r *repository) Create(ctx context.Context, input ProposeInput) (*Log, error) {
	oldRaw, err := json.Marshal(input.OldValues)
	if err != nil {
		return nil, err
	}
	newRaw, err := json.Marshal(input.NewValues)
	if err != nil {
		return nil, err
	}

	l, err := scanLog(r.db.QueryRowContext(ctx, `
		INSERT INTO modification_logs (table_name, record_id, old_values, new_values, requested_by, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING `+logColumns,
		input.TableName, input.RecordID, oldRaw, newRaw, input.RequestedBy,
	))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert modification log",
			zap.String("layer", "repository"),
			zap.String("table", input.TableName),
			zap.String("record_id", input.RecordID),
			zap.Error(err),
		)
		return nil, err
	}
	return l, nil
}

func (r *repository) List(ctx context.Context, status *Status) ([]*Log, error) {
	query := `SELECT ` + logColumns + ` FROM modification_logs`
	args := []any{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list modification logs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	logs := []*Log{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (*Log, error) {
	l, err := scanLog(r.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM modification_logs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	return l, err
}

func (r *repository) Approve(ctx context.Context, id string, reviewer uint) (*Log, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ApproveModification"),
		zap.String("log_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	// ---------- LOCK LOG ----------
	l, err := scanLog(tx.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM modification_logs WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		log.Error("failed to load modification log", zap.Error(err))
		return nil, err
	}
	if l.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	// ---------- APPLY TO LIVE ROW ----------
	query, args, err := buildLiveUpdate(l)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			log.Info("proposal collides with an existing slug", zap.String("record_id", l.RecordID))
			return nil, ErrSlugTaken
		}
		log.Error("failed to apply proposal", zap.String("table", l.TableName), zap.Error(err))
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		log.Warn("moderated record missing, log stays pending", zap.String("record_id", l.RecordID))
		return nil, ErrRecordNotFound
	}

	// ---------- RESOLVE LOG ----------
	resolved, err := scanLog(tx.QueryRowContext(ctx, `
		UPDATE modification_logs
		SET status = 'approved', reviewed_at = NOW(), reviewed_by = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+logColumns, id, reviewer))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadyResolved
	}
	if err != nil {
		log.Error("failed to resolve modification log", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit approval", zap.Error(err))
		return nil, err
	}
	return resolved, nil
}

func (r *repository) Reject(ctx context.Context, id string, reviewer uint) (*Log, error) {
	l, err := scanLog(r.db.QueryRowContext(ctx, `
		UPDATE modification_logs
		SET status = 'rejected', reviewed_at = NOW(), reviewed_by = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+logColumns, id, reviewer))
	if errors.Is(err, sql.ErrNoRows) {
		if _, gerr := r.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, ErrAlreadyResolved
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to reject modification log",
			zap.String("layer", "repository"),
			zap.String("log_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return l, nil
}

// buildLiveUpdate renders the UPDATE for the proposal. Table and column
// names only come from editableColumns, never from the stored payload.
func buildLiveUpdate(l *Log) (string, []any, error) {
	cols, ok := editableColumns[l.TableName]
	if !ok {
		return "", nil, ErrTableNotAllowed
	}

	keys := make([]string, 0, len(l.NewValues))
	for k := range l.NewValues {
		if !cols[k] {
			return "", nil, fmt.Errorf("%w: %s", ErrColumnNotAllowed, k)
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", nil, ErrNoChanges
	}
	sort.Strings(keys)

	set := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		v, err := columnValue(l.NewValues[k])
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	// A renamed record gets the slug a direct edit would give it.
	if src, ok := slugSources[l.TableName]; ok {
		if name, ok := l.NewValues[src].(string); ok {
			args = append(args, utils.Slugify(name, ""))
			set = append(set, fmt.Sprintf("slug = $%d", len(args)))
		}
	}
	args = append(args, l.RecordID)

	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d",
		l.TableName, strings.Join(set, ", "), len(args))
	return query, args, nil
}

// columnValue passes scalars through and stores anything else as JSON.
func columnValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64:
		return v, nil
	}
	return json.Marshal(v)
}
