package episodes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NewEpisode inserts a new episode in generating state and returns the
// stored row.
func (s *Store) NewEpisode(ctx context.Context, title, description string, topics []string, style Style, taskID string) (*Episode, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	if _, ok := styleSet[style]; !ok {
		style = StyleConversation
	}

	var topicsJSON string
	if len(topics) > 0 {
		data, err := json.Marshal(topics)
		if err != nil {
			return nil, fmt.Errorf("marshal topics: %w", err)
		}
		topicsJSON = string(data)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO episodes (
            title, description, topics_json, style, status,
            generation_progress, task_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		title,
		nullableString(description),
		nullableString(topicsJSON),
		style,
		StatusGenerating,
		0.0,
		nullableString(taskID),
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches an episode by identifier. Missing rows yield (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// FindByTaskID returns the episode owned by a task, or (nil, nil).
func (s *Store) FindByTaskID(ctx context.Context, taskID string) (*Episode, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+episodeColumns+` FROM episodes WHERE task_id = ? ORDER BY id DESC LIMIT 1`,
		taskID,
	)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by task id: %w", err)
	}
	return episode, nil
}

// Update persists changes to an existing episode.
func (s *Store) Update(ctx context.Context, episode *Episode) error {
	if episode == nil {
		return errors.New("episode is nil")
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE episodes
         SET title = ?, description = ?, topics_json = ?, style = ?,
             script_content = ?, audio_file_path = ?, duration_seconds = ?,
             file_size_bytes = ?, status = ?, error_message = ?, task_id = ?,
             generation_progress = MAX(generation_progress, ?), completed_at = ?
         WHERE id = ?`,
		episode.Title,
		nullableString(episode.Description),
		nullableString(episode.TopicsJSON),
		episode.Style,
		nullableString(episode.ScriptContent),
		nullableString(episode.AudioFilePath),
		episode.DurationSeconds,
		episode.FileSizeBytes,
		episode.Status,
		nullableString(episode.ErrorMessage),
		nullableString(episode.TaskID),
		episode.GenerationProgress,
		nullableTime(episode.CompletedAt),
		episode.ID,
	); err != nil {
		return fmt.Errorf("update episode: %w", err)
	}
	return nil
}

// SetProgress raises an episode's generation progress. Values below the
// stored progress are ignored so progress never moves backwards.
func (s *Store) SetProgress(ctx context.Context, id int64, progress float64) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE episodes SET generation_progress = MAX(generation_progress, ?) WHERE id = ?`,
		progress,
		id,
	); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// List returns episodes filtered by status set (or all episodes when no
// status is provided), most recent first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Episode, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + episodeColumns + ` FROM episodes`
	orderClause := ` ORDER BY created_at DESC, id DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var items []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, episode)
	}
	return items, rows.Err()
}

// ListRecent returns up to limit episodes, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*Episode, error) {
	if limit <= 0 {
		return s.List(ctx)
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+episodeColumns+` FROM episodes ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent episodes: %w", err)
	}
	defer rows.Close()

	var items []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, episode)
	}
	return items, rows.Err()
}

// Remove deletes an episode by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM episodes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete episode: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearFailed removes only errored episodes.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM episodes WHERE status = ?`, StatusError)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}
