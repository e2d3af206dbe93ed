package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog resuelve mensajes por idioma con fallback al idioma por defecto y luego al texto literal.
type Catalog struct {
	tags         []language.Tag
	matcher      language.Matcher
	fallback     language.Tag
	translations map[language.Tag]map[string]string
}

// Load lee las traducciones embebidas. defaultLang debe ser uno de los idiomas disponibles.
func Load(defaultLang string) (*Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	translations := make(map[language.Tag]map[string]string)
	var tags []language.Tag
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		raw, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		table := make(map[string]string)
		if err := json.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}
		translations[tag] = table
		tags = append(tags, tag)
	}

	fallback, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("default language %q: %w", defaultLang, err)
	}
	if _, ok := translations[fallback]; !ok {
		return nil, fmt.Errorf("default language %q has no translations", defaultLang)
	}

	// el idioma por defecto va primero para que el matcher lo use cuando nada coincide
	ordered := []language.Tag{fallback}
	for _, tag := range tags {
		if tag != fallback {
			ordered = append(ordered, tag)
		}
	}

	return &Catalog{
		tags:         ordered,
		matcher:      language.NewMatcher(ordered),
		fallback:     fallback,
		translations: translations,
	}, nil
}

func (c *Catalog) Supported() []language.Tag {
	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

func (c *Catalog) Default() language.Tag {
	return c.fallback
}

// Lookup devuelve el idioma soportado si lang coincide con alguno.
func (c *Catalog) Lookup(lang string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return c.fallback, false
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf < language.High {
		return c.fallback, false
	}
	return c.tags[idx], true
}

// Negotiate elige el idioma: primero la preferencia guardada y si no Accept-Language.
func (c *Catalog) Negotiate(preferred, acceptLanguage string) language.Tag {
	if preferred != "" {
		if tag, ok := c.Lookup(preferred); ok {
			return tag
		}
	}
	accepted, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(accepted) == 0 {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(accepted...)
	if conf == language.No {
		return c.fallback
	}
	return c.tags[idx]
}

// Translate busca key en tag, luego en el idioma por defecto, y si no existe usa key literal.
func (c *Catalog) Translate(tag language.Tag, key string, params map[string]string) string {
	text, ok := c.translations[tag][key]
	if !ok || text == "" {
		text, ok = c.translations[c.fallback][key]
	}
	if !ok || text == "" {
		text = key
	}
	return interpolate(text, params)
}

func (c *Catalog) Render(tag language.Tag, msg Message) string {
	if msg.Empty() {
		return ""
	}
	return c.Translate(tag, msg.Key, msg.Params)
}

// Direction devuelve "rtl" para arabe y kurdo.
func (c *Catalog) Direction(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "ar", "ku", "ckb", "fa", "he":
		return "rtl"
	default:
		return "ltr"
	}
}

func interpolate(text string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
