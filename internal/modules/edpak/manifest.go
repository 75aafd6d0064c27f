package edpak

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Manifest is the parsed manifest.json of an edpak. Required fields are typed;
// unrecognised top-level keys are kept verbatim, in document order, in Extras.
type Manifest struct {
	Title   string             `json:"title" validate:"required"`
	Version string             `json:"version" validate:"required"`
	Author  string             `json:"author" validate:"required"`
	Modules []ModuleDescriptor `json:"modules" validate:"required,min=1"`

	Description  string             `json:"description,omitempty"`
	Language     string             `json:"language,omitempty"`
	CoverImage   string             `json:"coverImage,omitempty"`
	Lessons      []LessonDescriptor `json:"lessons,omitempty"`
	Files        []FileDescriptor   `json:"files,omitempty"`
	MissingFiles []string           `json:"missingFiles,omitempty"`

	Extras []ExtraField `json:"-"`

	// modulesErr records why a present "modules" value could not be read.
	modulesErr error
}

type ModuleDescriptor struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Order   *float64 `json:"order,omitempty"`
}

// SortKey is the module's order, with a missing order treated as 0.
func (m ModuleDescriptor) SortKey() float64 {
	if m.Order == nil {
		return 0
	}
	return *m.Order
}

type LessonDescriptor struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

type FileDescriptor struct {
	Path        string `json:"path,omitempty"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

type ExtraField struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ExtraKeys lists the passthrough keys in document order.
func (m *Manifest) ExtraKeys() []string {
	out := make([]string, 0, len(m.Extras))
	for _, f := range m.Extras {
		out = append(out, f.Key)
	}
	return out
}

// Extra returns the raw value of a passthrough key.
func (m *Manifest) Extra(key string) (json.RawMessage, bool) {
	for i := len(m.Extras) - 1; i >= 0; i-- {
		if m.Extras[i].Key == key {
			return m.Extras[i].Value, true
		}
	}
	return nil, false
}

// ParseManifest decodes manifest.json. Only malformed JSON (or a non-object
// document) is an error here; wrong field types are left for validation.
func ParseManifest(raw []byte) (*Manifest, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, newError(KindManifestParse, "manifest.json is not valid JSON", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, newError(KindManifestParse, "manifest.json must contain a JSON object", nil)
	}

	m := &Manifest{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, newError(KindManifestParse, "manifest.json is not valid JSON", err)
		}
		key, _ := keyTok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, newError(KindManifestParse, fmt.Sprintf("manifest.json: invalid value for %q", key), err)
		}
		m.assign(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, newError(KindManifestParse, "manifest.json is not valid JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newError(KindManifestParse, "manifest.json has trailing data after the top-level object", err)
	}
	return m, nil
}

func (m *Manifest) assign(key string, val json.RawMessage) {
	switch key {
	case "title":
		m.Title = stringValue(val)
	case "version":
		m.Version = stringValue(val)
	case "author":
		m.Author = stringValue(val)
	case "description":
		m.Description = stringValue(val)
	case "language":
		m.Language = stringValue(val)
	case "coverImage":
		m.CoverImage = stringValue(val)
	case "modules":
		m.Modules, m.modulesErr = decodeModules(val)
	case "lessons":
		m.Lessons = decodeLessons(val)
	case "files":
		m.Files = decodeFiles(val)
	case "missingFiles":
		m.MissingFiles = decodeStrings(val)
	default:
		m.Extras = append(m.Extras, ExtraField{Key: key, Value: append(json.RawMessage(nil), val...)})
	}
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// looseString accepts JSON strings and numbers; ids are sometimes numeric.
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}

func rawObject(raw json.RawMessage) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func decodeModules(raw json.RawMessage) ([]ModuleDescriptor, error) {
	items, ok := rawArray(raw)
	if !ok {
		return nil, errors.New("modules is not an array")
	}
	out := make([]ModuleDescriptor, 0, len(items))
	for i, item := range items {
		obj := rawObject(item)
		if obj == nil {
			return nil, fmt.Errorf("modules[%d] is not an object", i)
		}
		md := ModuleDescriptor{
			ID:      looseString(obj["id"]),
			Title:   stringValue(obj["title"]),
			Content: stringValue(obj["content"]),
		}
		if rawOrder, ok := obj["order"]; ok {
			order, err := orderValue(rawOrder)
			if err != nil {
				return nil, fmt.Errorf("modules[%d].order: %w", i, err)
			}
			md.Order = order
		}
		out = append(out, md)
	}
	return out, nil
}

func orderValue(raw json.RawMessage) (*float64, error) {
	if strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("expected a number, got %s", raw)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// decodeLessons keeps one entry per array element, so len() matches the
// declared lesson count even when entries are not objects.
func decodeLessons(raw json.RawMessage) []LessonDescriptor {
	items, ok := rawArray(raw)
	if !ok {
		return nil
	}
	out := make([]LessonDescriptor, 0, len(items))
	for _, item := range items {
		obj := rawObject(item)
		out = append(out, LessonDescriptor{
			ID:    looseString(obj["id"]),
			Title: stringValue(obj["title"]),
			Type:  stringValue(obj["type"]),
		})
	}
	return out
}

func decodeFiles(raw json.RawMessage) []FileDescriptor {
	items, ok := rawArray(raw)
	if !ok {
		return nil
	}
	out := make([]FileDescriptor, 0, len(items))
	for _, item := range items {
		obj := rawObject(item)
		out = append(out, FileDescriptor{
			Path:        stringValue(obj["path"]),
			Name:        stringValue(obj["name"]),
			ContentType: stringValue(obj["contentType"]),
		})
	}
	return out
}

func decodeStrings(raw json.RawMessage) []string {
	items, ok := rawArray(raw)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringValue(item); s != "" {
			out = append(out, s)
			continue
		}
		out = append(out, strings.TrimSpace(string(item)))
	}
	return out
}
