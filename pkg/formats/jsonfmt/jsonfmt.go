// Package jsonfmt implements the JSON format plugin.
//
// Reading walks the top-level object in document order with gjson. Writing
// encodes each member with sjson, joins them in document order and
// pretty-prints the result.
package jsonfmt

import (
	"bytes"
	"unicode/utf8"

	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Name is the canonical format identifier.
const Name = "json"

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// Plugin is the JSON format plugin.
type Plugin struct{}

// New returns the JSON plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".json"} }

// Read decodes a JSON object. Duplicate keys resolve to the last occurrence,
// as most JSON consumers do.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	state := &types.ExistingFileState{}
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, formats.ParseErrorf(Name, "existing file is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, formats.ParseErrorf(Name, "top level of a JSON config must be an object")
	}

	index := make(map[string]int)
	root.ForEach(func(key, value gjson.Result) bool {
		entry := types.ExistingEntry{
			Key:    key.String(),
			Tokens: tokens(value),
			Raw:    value.Raw,
		}
		if i, seen := index[entry.Key]; seen {
			state.Entries[i] = entry
			return true
		}
		index[entry.Key] = len(state.Entries)
		state.Entries = append(state.Entries, entry)
		return true
	})
	return state, nil
}

// Write serializes doc as a pretty-printed JSON object. Members are
// assembled in order from encoded keys and values, so keys are never
// interpreted as sjson paths.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	out := []byte{'{'}
	first := true
	for _, entry := range doc.Entries {
		if entry.Kind == types.Passthrough && entry.Existing.Opaque {
			continue
		}
		if entry.Key == "" {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "empty keys are not supported")
		}
		if !utf8.ValidString(entry.Key) {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "key is not valid UTF-8")
		}

		var value []byte
		if entry.Kind == types.Managed {
			if !validUTF8(entry.Value) {
				return nil, formats.Unencodable(Name, entry.Key, entry.Value, "string is not valid UTF-8")
			}
			encoded, err := encode(entry.Value.Native())
			if err != nil {
				return nil, formats.Unencodable(Name, entry.Key, entry.Value, err.Error())
			}
			value = encoded
		} else {
			value = []byte(rawOf(entry.Existing))
		}
		key, err := encode(entry.Key)
		if err != nil {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, err.Error())
		}

		if !first {
			out = append(out, ',')
		}
		first = false
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, value...)
	}
	out = append(out, '}')
	return pretty.PrettyOptions(out, prettyOptions), nil
}

// encode returns the JSON text of v.
func encode(v any) ([]byte, error) {
	wrapped, err := sjson.SetBytes(nil, "v", v)
	if err != nil {
		return nil, err
	}
	return []byte(gjson.GetBytes(wrapped, "v").Raw), nil
}

func validUTF8(v types.Value) bool {
	if s, ok := v.Str(); ok {
		return utf8.ValidString(s)
	}
	for _, item := range v.Items() {
		if !validUTF8(item) {
			return false
		}
	}
	return true
}

func tokens(v gjson.Result) []string {
	if v.IsArray() {
		items := v.Array()
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.String()
		}
		return out
	}
	return []string{v.String()}
}

// rawOf returns the JSON text of a passthrough entry. Entries that did not
// come from this plugin are rebuilt from their tokens.
func rawOf(e types.ExistingEntry) string {
	if raw, ok := e.Raw.(string); ok && raw != "" {
		return raw
	}
	out := []byte("[]")
	for _, token := range e.Tokens {
		out, _ = sjson.SetBytes(out, "-1", token)
	}
	if len(e.Tokens) == 1 {
		return gjson.GetBytes(out, "0").Raw
	}
	return string(out)
}
