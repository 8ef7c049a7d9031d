package templating

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/template"

	"github.com/CTAG07/Cadenza/pkg/corpus"
)

// TemplateManager loads and executes output templates. It holds the
// configuration, the function map and an optional corpus store used by the
// corpus template function. All methods are concurrent-safe.
type TemplateManager struct {
	logger         *slog.Logger
	config         *TemplateConfig
	store          *corpus.Store
	templates      *template.Template
	cleanTemplates *template.Template
	templateNames  []string
	funcMap        template.FuncMap
	mu             sync.RWMutex
}

// NewTemplateManager creates, initializes, and returns a new TemplateManager.
// store may be nil, in which case the corpus function always fails. It
// performs an initial Refresh to load the built-in and user templates.
func NewTemplateManager(logger *slog.Logger, store *corpus.Store, config *TemplateConfig) (*TemplateManager, error) {
	if config == nil {
		c := DefaultConfig()
		config = &c
	}
	tm := &TemplateManager{
		logger: logger,
		store:  store,
		config: config,
	}
	tm.funcMap = tm.makeFuncMap()

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Debug("Template manager initialized", "templates", len(tm.templateNames))
	return tm, nil
}

func (tm *TemplateManager) makeFuncMap() template.FuncMap {
	return template.FuncMap{
		// Chords
		"join":        join,
		"joinStrings": joinStrings,
		"names":       names,
		"notes":       notes,
		"noteName":    noteName,
		"corpus":      tm.corpusChords,

		// Logic & arithmetic
		"repeat": tm.repeat,
		"inc":    inc,
		"dec":    dec,
		"add":    add,
		"mod":    mod,
	}
}

// Refresh rebuilds the template set from the built-in formats and the
// *.tmpl files in the configured template directory. A user template is
// named after its file without the extension, so "plain.tmpl" replaces the
// built-in "plain".
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	set := template.New("").Funcs(tm.funcMap)
	for name, text := range builtinTemplates {
		if _, err := set.New(name).Parse(text); err != nil {
			return fmt.Errorf("failed to parse built-in template %s: %w", name, err)
		}
	}

	if tm.config.TemplateDir != "" {
		filePattern := filepath.Join(tm.config.TemplateDir, "*.tmpl")
		tm.logger.Debug("Loading template files...", "pattern", filePattern)

		files, err := filepath.Glob(filePattern)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			tm.logger.Warn("No template files found matching pattern", "pattern", filePattern)
		}
		for _, file := range files {
			content, err := os.ReadFile(file)
			if err != nil {
				tm.logger.Error("failed to read template file", "file", file, "error", err)
				return err
			}
			name := strings.TrimSuffix(filepath.Base(file), ".tmpl")
			if _, err = set.New(name).Parse(string(content)); err != nil {
				tm.logger.Error("failed to parse template file", "file", file, "error", err)
				return fmt.Errorf("failed to parse template file %s: %w", file, err)
			}
		}
	}

	var names []string
	for _, t := range set.Templates() {
		// The root template has no name and is never executed.
		if t.Name() != "" {
			names = append(names, t.Name())
		}
	}
	slices.Sort(names)

	clean, err := set.Clone()
	if err != nil {
		tm.logger.Error("failed to create a clean clone of templates", "error", err)
		return err
	}

	tm.templates = set
	tm.cleanTemplates = clean
	tm.templateNames = names
	return nil
}

// Execute renders a template by name, writing the output to w. An empty name
// selects the configured default template.
func (tm *TemplateManager) Execute(w io.Writer, name string, data ProgressionData) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if name == "" {
		name = tm.config.Default
	}
	return tm.templates.ExecuteTemplate(w, name, data)
}

// ExecuteTemplateString parses and executes a raw template string using the manager's function map.
// Other templates in the set can be invoked from it with {{template "name" .}}.
func (tm *TemplateManager) ExecuteTemplateString(w io.Writer, content string, data ProgressionData) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	// Clone the clean, unexecuted template set to avoid execution state issues.
	tempSet, err := tm.cleanTemplates.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone clean templates for string execution: %w", err)
	}

	t, err := tempSet.New("inline").Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse string template: %w", err)
	}
	return t.Execute(w, data)
}

// Render executes format, which is either the name of a loaded template or,
// if it contains an action delimiter, an inline template.
func (tm *TemplateManager) Render(w io.Writer, format string, data ProgressionData) error {
	if strings.Contains(format, "{{") {
		return tm.ExecuteTemplateString(w, format, data)
	}
	return tm.Execute(w, format, data)
}

// GetTemplateNames returns the sorted names of all loaded templates.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return slices.Clone(tm.templateNames)
}

// GetConfig returns a copy of the current configuration.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return *tm.config
}
