package episodes

import (
	"database/sql"
	"errors"
	"time"
)

const episodeColumns = "id, title, description, topics_json, style, script_content, audio_file_path, duration_seconds, file_size_bytes, status, error_message, task_id, generation_progress, created_at, completed_at"

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*Episode, error) {
	var (
		id           int64
		title        string
		description  sql.NullString
		topics       sql.NullString
		styleStr     sql.NullString
		script       sql.NullString
		audioPath    sql.NullString
		duration     sql.NullFloat64
		sizeBytes    sql.NullInt64
		statusStr    string
		errorMessage sql.NullString
		taskID       sql.NullString
		progress     sql.NullFloat64
		createdRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&description,
		&topics,
		&styleStr,
		&script,
		&audioPath,
		&duration,
		&sizeBytes,
		&statusStr,
		&errorMessage,
		&taskID,
		&progress,
		&createdRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	episode := &Episode{
		ID:                 id,
		Title:              title,
		Description:        description.String,
		TopicsJSON:         topics.String,
		Style:              Style(styleStr.String),
		ScriptContent:      script.String,
		AudioFilePath:      audioPath.String,
		DurationSeconds:    duration.Float64,
		FileSizeBytes:      sizeBytes.Int64,
		Status:             Status(statusStr),
		ErrorMessage:       errorMessage.String,
		TaskID:             taskID.String,
		GenerationProgress: progress.Float64,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		episode.CreatedAt = created
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			episode.CompletedAt = &completed
		}
	}
	return episode, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
