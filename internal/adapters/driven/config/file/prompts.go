package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompts from user-editable files, one <name>.txt per
// prompt. Missing files, and templates that fail to parse, fall back to
// the built-in prompt. The directory is seeded on first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are a supportive assistant who helps people work through their reference documents. Answer using the documents provided, say when the documents do not cover the question, and keep your guidance practical.`,

	driven.PromptAnswer: `Answer the question below using the following documents{{if .Format}}, {{.Format}}{{end}}.
Respond in {{.Language}}.

Documents:
{{.Context}}`,

	driven.PromptSummariseURL: `Summarise the following web page{{if .Format}} {{.Format}}{{end}}.
Output the summary in {{.Language}}.

Page:
{{.Context}}`,
}

// templated prompts are parsed with text/template before use.
var templated = map[string]bool{
	driven.PromptAnswer:       true,
	driven.PromptSummariseURL: true,
}

const readme = `# docchat prompts

These files hold the prompts docchat sends to the language model.

- system.txt: sent before every exchange
- answer.txt: frames the retrieved documents for a question
- summarise_url.txt: frames a fetched web page for summarisation

answer.txt and summarise_url.txt are Go text/template files with the fields
{{.Context}} (document text), {{.Format}} (e.g. "in 5 bullet points", may be
empty) and {{.Language}}. The question is appended after the rendered
template. A file that fails to parse is ignored in favour of the built-in
prompt; run with --verbose to see why.

Delete a file to restore its default.
`

// NewPromptStore creates a file-based prompt store. An empty promptDir
// means ~/.docchat/prompts. No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".docchat", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt with the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil {
		fallback, ok := defaultPrompts[name]
		if !ok {
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Prompt %q: %v; using built-in prompt", name, err)
		}
		prompt = fallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
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

// initialise writes the default prompts and README where missing. Failure
// is not fatal: Load falls back to the built-in prompts.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		logger.Warn("Create prompt directory: %v", err)
		return
	}

	files := map[string]string{"README.md": readme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}
	for file, content := range files {
		path := filepath.Join(s.promptDir, file)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			logger.Warn("Write %s: %v", file, err)
			return
		}
	}
}

// loadFromFile reads a prompt from disk and checks that templated
// prompts parse.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("%s.txt is empty", name)
	}
	if templated[name] {
		if _, err := template.New(name).Parse(prompt); err != nil {
			return "", fmt.Errorf("invalid template: %w", err)
		}
	}
	return prompt, nil
}
