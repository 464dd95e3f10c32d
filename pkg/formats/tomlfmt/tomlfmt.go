// Package tomlfmt implements the TOML format plugin.
//
// Values are decoded with go-toml into native Go values. The order of
// top-level keys is recovered separately by walking the expressions of the
// document with the go-toml unstable parser, since decoded maps are
// unordered.
package tomlfmt

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// Name is the canonical format identifier.
const Name = "toml"

// Plugin is the TOML format plugin.
type Plugin struct{}

// New returns the TOML plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".toml"} }

// Read decodes a TOML document.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	state := &types.ExistingFileState{}
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}

	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		perr := formats.ParseError(Name, err)
		var derr *toml.DecodeError
		if stderrors.As(err, &derr) {
			row, _ := derr.Position()
			perr = errors.Annotate(perr, errors.ErrParse, errors.DetailLine, row)
		}
		return nil, perr
	}

	order, err := topLevelKeys(data)
	if err != nil {
		return nil, formats.ParseError(Name, err)
	}
	for _, key := range order {
		raw, ok := values[key]
		if !ok {
			continue
		}
		state.Entries = append(state.Entries, types.ExistingEntry{
			Key:    key,
			Tokens: tokens(raw),
			Raw:    raw,
		})
		delete(values, key)
	}

	// Keys the walk did not surface keep a stable position at the end.
	rest := make([]string, 0, len(values))
	for key := range values {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range rest {
		state.Entries = append(state.Entries, types.ExistingEntry{
			Key:    key,
			Tokens: tokens(values[key]),
			Raw:    values[key],
		})
	}
	return state, nil
}

// Write serializes doc. TOML requires plain key/value pairs to precede any
// table, so entries holding tables are emitted after all the others, each
// group keeping its relative order.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	var inline, tables bytes.Buffer

	for _, entry := range doc.Entries {
		if entry.Kind == types.Passthrough && entry.Existing.Opaque {
			continue
		}
		if entry.Key == "" {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "empty keys are not supported")
		}

		native := nativeOf(entry)
		out, err := toml.Marshal(map[string]any{entry.Key: native})
		if err != nil {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, err.Error())
		}
		if isTable(native) {
			if tables.Len() > 0 {
				tables.WriteByte('\n')
			}
			tables.Write(out)
			continue
		}
		inline.Write(out)
	}

	if inline.Len() > 0 && tables.Len() > 0 {
		inline.WriteByte('\n')
	}
	inline.Write(tables.Bytes())
	return inline.Bytes(), nil
}

// topLevelKeys lists the first key segment of every top-level key/value,
// table and array-of-tables header, in document order and without repeats.
func topLevelKeys(data []byte) ([]string, error) {
	var (
		p       unstable.Parser
		keys    []string
		seen    = make(map[string]bool)
		inTable bool
	)
	p.Reset(data)

	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.KeyValue:
			if inTable {
				continue
			}
		case unstable.Table, unstable.ArrayTable:
			inTable = true
		default:
			continue
		}

		it := expr.Key()
		if !it.Next() {
			continue
		}
		key := string(it.Node().Data)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, p.Error()
}

func nativeOf(entry types.MergedEntry) any {
	if entry.Kind == types.Managed {
		return entry.Value.Native()
	}
	if entry.Existing.Raw != nil {
		return entry.Existing.Raw
	}
	tokens := entry.Existing.Tokens
	if len(tokens) == 1 {
		return tokens[0]
	}
	items := make([]any, len(tokens))
	for i, t := range tokens {
		items[i] = t
	}
	return items
}

// isTable reports whether v marshals as a table header rather than as an
// inline value.
func isTable(v any) bool {
	switch val := v.(type) {
	case map[string]any:
		return true
	case []any:
		if len(val) == 0 {
			return false
		}
		for _, item := range val {
			if _, ok := item.(map[string]any); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func tokens(raw any) []string {
	if items, ok := raw.([]any); ok {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = fmt.Sprint(item)
		}
		return out
	}
	return []string{fmt.Sprint(raw)}
}
