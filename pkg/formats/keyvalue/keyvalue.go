// Package keyvalue implements the line-oriented multi-value format used by
// terminals such as Ghostty:
//
//	theme = Mocha
//	keybind = ctrl+a=new_tab
//	keybind = ctrl+w=close_surface
//
// A key may repeat. Repeated keys are read back as one entry holding every
// value in order, and list fields are written as one line per element.
// Comments and blank lines are dropped; lines without a key are kept as
// opaque passthrough entries.
package keyvalue

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
)

// Name is the canonical format identifier.
const Name = "keyvalue"

// Plugin is the keyvalue format plugin.
type Plugin struct{}

// New returns the keyvalue plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".conf", ".cfg"} }

// Read parses key/value lines. Only input that is not valid UTF-8 fails.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	if !utf8.Valid(data) {
		return nil, formats.ParseErrorf(Name, "existing file is not valid UTF-8 text")
	}

	state := &types.ExistingFileState{}
	index := make(map[string]int)

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitLine(line)
		if !ok {
			state.Entries = append(state.Entries, types.ExistingEntry{
				Tokens: []string{line},
				Opaque: true,
			})
			continue
		}

		if i, seen := index[key]; seen {
			state.Entries[i].Tokens = append(state.Entries[i].Tokens, value)
			continue
		}
		index[key] = len(state.Entries)
		state.Entries = append(state.Entries, types.ExistingEntry{
			Key:    key,
			Tokens: []string{value},
		})
	}
	return state, nil
}

// Write emits one `key = value` line per value.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	var buf bytes.Buffer

	for _, entry := range doc.Entries {
		switch {
		case entry.Kind == types.Managed:
			if err := checkKey(entry.Key, entry.Value); err != nil {
				return nil, err
			}
			if formats.HasNestedList(entry.Value) {
				return nil, formats.Unencodable(Name, entry.Key, entry.Value, "nested lists have no line representation")
			}
			for _, token := range entry.Value.Tokens() {
				if err := checkValue(entry.Key, entry.Value, token); err != nil {
					return nil, err
				}
				writeLine(&buf, entry.Key, token)
			}
		case entry.Existing.Opaque:
			for _, token := range entry.Existing.Tokens {
				buf.WriteString(token)
				buf.WriteByte('\n')
			}
		default:
			for _, token := range entry.Existing.Tokens {
				writeLine(&buf, entry.Key, token)
			}
		}
	}
	return buf.Bytes(), nil
}

func splitLine(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func checkKey(key string, v types.Value) error {
	if key == "" || strings.ContainsAny(key, "=\r\n") || strings.HasPrefix(key, "#") ||
		strings.TrimSpace(key) != key {
		return formats.Unencodable(Name, key, v, "key is not a valid line key")
	}
	return nil
}

// checkValue rejects tokens the reader would not give back unchanged.
func checkValue(key string, v types.Value, token string) error {
	switch {
	case strings.ContainsAny(token, "\r\n"):
		return formats.Unencodable(Name, key, v, "values cannot span lines")
	case strings.TrimSpace(token) != token:
		return formats.Unencodable(Name, key, v, "leading or trailing whitespace is trimmed on read")
	case !utf8.ValidString(token):
		return formats.Unencodable(Name, key, v, "value is not valid UTF-8")
	}
	return nil
}

func writeLine(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	if value == "" {
		buf.WriteString(" =\n")
		return
	}
	buf.WriteString(" = ")
	buf.WriteString(value)
	buf.WriteByte('\n')
}
