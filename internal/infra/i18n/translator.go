package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var LocalesFS embed.FS

// DefaultLang is the campaign audience's language.
const DefaultLang = "pt-BR"

// Translator resolves message keys for one language.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", langCode+".yaml")
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	return newTranslatorFromBytes(langCode, data)
}

func newTranslatorFromBytes(langCode string, data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{lang: langCode, translations: translations}, nil
}

// T formats the message for key. Unknown keys, and a nil Translator, yield the key itself.
func (t *Translator) T(key string, args ...interface{}) string {
	if t == nil {
		return key
	}
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Lang() string {
	if t == nil {
		return ""
	}
	return t.lang
}

// Keys lists every key the translator knows.
func (t *Translator) Keys() []string {
	keys := make([]string, 0, len(t.translations))
	for k := range t.translations {
		keys = append(keys, k)
	}
	return keys
}
