package scriptgen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podforge/internal/logging"
	"podforge/internal/services"
)

// consumedSuffix marks inbox documents that already produced an episode.
const consumedSuffix = ".used"

// fileProvider serves pre-written script documents from an inbox
// directory, oldest first. A consumed document is renamed in place so the
// next run does not pick it up again.
type fileProvider struct {
	dir    string
	logger *slog.Logger
}

func (p *fileProvider) GenerateScript(ctx context.Context, req Request) (*Script, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := p.oldestPending()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrScriptSource, "script", "inbox",
			fmt.Sprintf("read script file %s", filepath.Base(path)), err)
	}

	script := ParseDocument(string(data))
	if !script.Usable() {
		return nil, services.Wrap(services.ErrScriptSource, "script", "inbox",
			fmt.Sprintf("script file %s has no usable content", filepath.Base(path)), nil)
	}

	if err := os.Rename(path, path+consumedSuffix); err != nil {
		logging.WarnWithContext(p.logger, "could not mark script consumed", "script_consume_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String("error_hint", "check inbox directory permissions"),
			logging.String("impact", "the same script may generate another episode"))
	}

	p.logger.Debug("script loaded from inbox",
		logging.String("file", filepath.Base(path)),
		logging.Int("segments", len(script.Segments)))
	return script, nil
}

// oldestPending returns the oldest unconsumed script document in the inbox.
func (p *fileProvider) oldestPending() (string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return "", services.Wrap(services.ErrScriptSource, "script", "inbox",
			fmt.Sprintf("read inbox %s", p.dir), err)
	}

	var oldest string
	var oldestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, consumedSuffix) {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".json", ".txt":
		default:
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if oldest == "" || info.ModTime().Before(oldestMod) {
			oldest = filepath.Join(p.dir, name)
			oldestMod = info.ModTime()
		}
	}

	if oldest == "" {
		return "", services.Wrap(services.ErrScriptSource, "script", "inbox",
			fmt.Sprintf("no pending script files in %s", p.dir), nil)
	}
	return oldest, nil
}
