// Package textlist implements a plain list format, one item per line, as
// used for editor extension lists and plugin manifests:
//
//	# Extensions installed on every machine
//	golang.go
//	ms-python.python    # python tooling
//
// The comment block before the first item is the "header" field and every
// other non-comment line is an element of the "items" list. Blank lines and
// comments after the first item are dropped.
package textlist

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
)

// Name is the canonical format identifier.
const Name = "textlist"

// Field names understood by the format.
const (
	HeaderField = "header"
	ItemsField  = "items"
)

// Plugin is the textlist format plugin.
type Plugin struct{}

// New returns the textlist plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".list"} }

// Read splits data into the header block and the item lines.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	if !utf8.Valid(data) {
		return nil, formats.ParseErrorf(Name, "existing file is not valid UTF-8 text")
	}

	var header, items []string
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			if len(items) == 0 {
				header = append(header, line)
			}
		default:
			items = append(items, line)
		}
	}

	state := &types.ExistingFileState{}
	if len(header) > 0 {
		state.Entries = append(state.Entries, types.ExistingEntry{
			Key:    HeaderField,
			Tokens: []string{strings.Join(header, "\n")},
		})
	}
	if len(items) > 0 {
		state.Entries = append(state.Entries, types.ExistingEntry{Key: ItemsField, Tokens: items})
	}
	return state, nil
}

// Write emits the header followed by one line per item, whatever order the
// entries arrive in.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	var header, items []string
	for _, entry := range doc.Entries {
		if entry.Kind == types.Passthrough && entry.Existing.Opaque {
			continue
		}

		tokens := entry.Existing.Tokens
		if entry.Kind == types.Managed {
			if formats.HasNestedList(entry.Value) {
				return nil, formats.Unencodable(Name, entry.Key, entry.Value, "nested lists have no line representation")
			}
			tokens = entry.Value.Tokens()
		}

		switch entry.Key {
		case HeaderField:
			lines, err := headerLines(entry, tokens)
			if err != nil {
				return nil, err
			}
			header = lines
		case ItemsField:
			for _, item := range tokens {
				if err := checkItem(entry, item); err != nil {
					return nil, err
				}
			}
			items = tokens
		default:
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "only header and items fields are supported")
		}
	}

	var buf bytes.Buffer
	for _, line := range append(header, items...) {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func headerLines(entry types.MergedEntry, tokens []string) ([]string, error) {
	text := strings.TrimSuffix(strings.Join(tokens, "\n"), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") || strings.TrimSpace(line) != line {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "every header line must be a comment starting with #")
		}
		if !utf8.ValidString(line) {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "header is not valid UTF-8")
		}
	}
	return lines, nil
}

func checkItem(entry types.MergedEntry, item string) error {
	switch {
	case item == "":
		return formats.Unencodable(Name, entry.Key, entry.Value, "items cannot be empty")
	case strings.ContainsAny(item, "\r\n"):
		return formats.Unencodable(Name, entry.Key, entry.Value, "items cannot span lines")
	case strings.TrimSpace(item) != item:
		return formats.Unencodable(Name, entry.Key, entry.Value, "leading or trailing whitespace is trimmed on read")
	case strings.HasPrefix(item, "#"):
		return formats.Unencodable(Name, entry.Key, entry.Value, "items cannot start with #")
	case !utf8.ValidString(item):
		return formats.Unencodable(Name, entry.Key, entry.Value, "item is not valid UTF-8")
	}
	return nil
}
