package templating

// TemplateConfig holds all configuration options for the templating engine.
type TemplateConfig struct {
	// Default is the template used when a caller does not name one.
	Default string `json:"default"`

	// TemplateDir is searched for user templates (*.tmpl). Empty disables loading from disk.
	TemplateDir string `json:"template_dir"`

	// CorpusEnabled controls whether templates may read progressions from the corpus.
	CorpusEnabled bool `json:"corpus_enabled"`

	// MaxRepeat sets a hard upper limit on the count accepted by repeat.
	MaxRepeat int `json:"max_repeat"`
}

// DefaultConfig returns a TemplateConfig with safe default values.
func DefaultConfig() TemplateConfig {
	return TemplateConfig{
		Default:       "plain",
		TemplateDir:   "",
		CorpusEnabled: true,
		MaxRepeat:     1024,
	}
}
