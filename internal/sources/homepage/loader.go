package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads one Homepage configuration file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Bookmarks parses the file as bookmarks.yaml.
func (l *Loader) Bookmarks() (BookmarksConfig, error) {
	var cfg BookmarksConfig
	if err := l.decode(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Services parses the file as services.yaml.
func (l *Loader) Services() (ServicesConfig, error) {
	var cfg ServicesConfig
	if err := l.decode(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) decode(out any) error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read homepage file: %w", err)
	}
	data = stripTemplateVariables(data)
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse homepage yaml: %w", err)
	}
	return nil
}

// stripTemplateVariables blanks Homepage template variables.
// Example: {{HOMEPAGE_VAR_ADGUARD_URL}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
