package episodes

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of an episode.
type Status string

const (
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

var allStatuses = []Status{
	StatusGenerating,
	StatusReady,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Style describes the presentation format of an episode script.
type Style string

const (
	StyleConversation Style = "conversation"
	StyleLecture      Style = "lecture"
	StyleQA           Style = "qa"
)

var styleSet = map[Style]struct{}{
	StyleConversation: {},
	StyleLecture:      {},
	StyleQA:           {},
}

// Episode represents a podcast episode persisted in SQLite.
type Episode struct {
	ID                 int64
	Title              string
	Description        string
	TopicsJSON         string
	Style              Style
	ScriptContent      string
	AudioFilePath      string
	DurationSeconds    float64
	FileSizeBytes      int64
	Status             Status
	ErrorMessage       string
	TaskID             string
	GenerationProgress float64
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ParseStyle converts a string into a known Style.
func ParseStyle(value string) (Style, bool) {
	normalized := Style(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := styleSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status represents a finished run.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusError
}

// IsTerminal reports whether the episode reached a terminal status.
func (e *Episode) IsTerminal() bool {
	return e.Status.IsTerminal()
}

// Topics decodes the stored topic list. A malformed or empty payload yields nil.
func (e *Episode) Topics() []string {
	if strings.TrimSpace(e.TopicsJSON) == "" {
		return nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(e.TopicsJSON), &topics); err != nil {
		return nil
	}
	return topics
}

// SetTopics encodes and stores the topic list.
func (e *Episode) SetTopics(topics []string) error {
	if len(topics) == 0 {
		e.TopicsJSON = ""
		return nil
	}
	data, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	e.TopicsJSON = string(data)
	return nil
}

// AdvanceProgress raises generation progress to value, clamped to [0, 1].
// Progress never moves backwards.
func (e *Episode) AdvanceProgress(value float64) {
	if value > 1 {
		value = 1
	}
	if value > e.GenerationProgress {
		e.GenerationProgress = value
	}
}

// MarkReady transitions the episode to ready with its published artifact.
// Sets the completion timestamp and full progress, and clears any earlier
// error message.
func (e *Episode) MarkReady(audioPath string, durationSeconds float64, sizeBytes int64) {
	now := time.Now().UTC()
	e.Status = StatusReady
	e.AudioFilePath = audioPath
	e.DurationSeconds = durationSeconds
	e.FileSizeBytes = sizeBytes
	e.ErrorMessage = ""
	e.AdvanceProgress(1)
	e.CompletedAt = &now
}

// MarkError transitions the episode to error. The audio path is cleared so
// only ready episodes carry an artifact, and the completion timestamp is set.
func (e *Episode) MarkError(message string) {
	now := time.Now().UTC()
	e.Status = StatusError
	e.ErrorMessage = message
	e.AudioFilePath = ""
	e.DurationSeconds = 0
	e.FileSizeBytes = 0
	e.CompletedAt = &now
}

// LibrarySummary aggregates episode counts and artifact totals.
type LibrarySummary struct {
	Total                int
	Generating           int
	Ready                int
	Failed               int
	TotalDurationSeconds float64
	TotalSizeBytes       int64
}

// DatabaseHealth captures diagnostic information about the episode database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalEpisodes    int
	Error            string
}
