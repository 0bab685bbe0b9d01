package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the file extension of prompt files.
const promptExt = ".txt"

// PromptStore loads LLM prompts from user-editable files on disk, one
// file per prompt named {name}.txt.
//
// Initialisation is lazy: the directory and default files are created on
// the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a file-based prompt store. If promptDir is empty,
// it defaults to ~/.llmdump/prompts. defaults supplies both the fallback
// for unreadable files and the content written for missing ones.
func NewPromptStore(promptDir string, defaults map[string]string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	copied := make(map[string]string, len(defaults))
	for k, v := range defaults {
		copied[k] = v
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  copied,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name. An edited file
// wins over the default; a missing, unreadable or blank file falls back
// to the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if fallback, ok := s.defaults[name]; ok {
			return fallback, nil
		}
		if err == nil {
			err = errors.New("prompt file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads the cache whenever a prompt file in the directory is
// created, written, removed or renamed. It blocks until ctx is done and
// is meant for long-running front ends such as the MCP server.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	logger.Debug("Watching prompts in %s", s.promptDir)

	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevant == 0 || filepath.Ext(event.Name) != promptExt {
				continue
			}
			logger.Debug("Prompt %s changed, reloading", filepath.Base(event.Name))
			s.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Prompt watcher: %v", err)
		}
	}
}

// initialise creates the prompt directory and writes any missing default
// files. Existing files are never overwritten.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range s.defaults {
		path := filepath.Join(s.promptDir, name+promptExt)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	content := `# llmdump prompts

These files hold the prompts llmdump sends to the configured model.

- ` + "`classify.txt`" + ` groups crawled pages into categories
- ` + "`identifier.txt`" + ` names a crawl; the name becomes the export file name
- ` + "`cleanup.txt`" + ` is the system prompt used by ` + "`export --clean`" + `

classify.txt and identifier.txt must keep one ` + "`%s`" + `, which is replaced
by the JSON list of documents. If it is missing, the list is appended.
Both must still ask for the JSON reply shape shown in the default file.

Edits apply on the next command. A running ` + "`llmdump mcp serve`" + ` picks
them up immediately. Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0o600)
}
