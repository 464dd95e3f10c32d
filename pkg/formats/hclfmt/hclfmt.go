// Package hclfmt implements the HCL format plugin.
//
// Top-level attributes map to entries. Blocks have no flat key and are kept
// as opaque entries that are written back token for token.
package hclfmt

import (
	"sort"
	"strings"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Name is the canonical format identifier.
const Name = "hcl"

const filename = "config.hcl"

// Plugin is the HCL format plugin.
type Plugin struct{}

// New returns the HCL plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".hcl", ".tfvars"} }

type item struct {
	start int
	entry types.ExistingEntry
}

// Read parses an HCL body. Attribute and block order follows the source.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	state := &types.ExistingFileState{}
	if strings.TrimSpace(string(data)) == "" {
		return state, nil
	}

	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}
	wfile, diags := hclwrite.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, formats.ParseErrorf(Name, "unexpected HCL body type %T", file.Body)
	}
	wbody := wfile.Body()

	items := make([]item, 0, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		entry := types.ExistingEntry{
			Key:    name,
			Tokens: attributeTokens(attr, data),
		}
		if wattr := wbody.GetAttribute(name); wattr != nil {
			entry.Raw = wattr.Expr().BuildTokens(nil)
		}
		items = append(items, item{start: attr.SrcRange.Start.Byte, entry: entry})
	}

	wblocks := wbody.Blocks()
	for i, block := range body.Blocks {
		entry := types.ExistingEntry{
			Tokens: []string{strings.Join(append([]string{block.Type}, block.Labels...), " ")},
			Opaque: true,
		}
		if i < len(wblocks) {
			entry.Raw = wblocks[i].BuildTokens(nil)
		}
		items = append(items, item{start: block.TypeRange.Start.Byte, entry: entry})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].start < items[j].start })
	for _, it := range items {
		state.Entries = append(state.Entries, it.entry)
	}
	return state, nil
}

// Write serializes doc and runs the result through the canonical HCL
// formatter.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	file := hclwrite.NewEmptyFile()
	body := file.Body()

	for _, entry := range doc.Entries {
		if entry.Kind == types.Passthrough && entry.Existing.Opaque {
			if tokens, ok := entry.Existing.Raw.(hclwrite.Tokens); ok {
				body.AppendUnstructuredTokens(tokens)
			}
			continue
		}
		if !hclsyntax.ValidIdentifier(entry.Key) {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "key is not a valid HCL identifier")
		}

		if entry.Kind == types.Managed {
			body.SetAttributeValue(entry.Key, ctyValue(entry.Value))
			continue
		}
		if tokens, ok := entry.Existing.Raw.(hclwrite.Tokens); ok {
			body.SetAttributeRaw(entry.Key, tokens)
			continue
		}
		body.SetAttributeValue(entry.Key, tokensValue(entry.Existing.Tokens))
	}

	return hclwrite.Format(file.Bytes()), nil
}

func ctyValue(v types.Value) cty.Value {
	switch v.Kind() {
	case types.TypeInteger:
		n, _ := v.Int()
		return cty.NumberIntVal(n)
	case types.TypeBoolean:
		b, _ := v.Bool()
		return cty.BoolVal(b)
	case types.TypeList:
		items := v.Items()
		if len(items) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, len(items))
		for i, item := range items {
			vals[i] = ctyValue(item)
		}
		return cty.TupleVal(vals)
	}
	s, _ := v.Str()
	return cty.StringVal(s)
}

func tokensValue(tokens []string) cty.Value {
	if len(tokens) == 1 {
		return cty.StringVal(tokens[0])
	}
	if len(tokens) == 0 {
		return cty.EmptyTupleVal
	}
	vals := make([]cty.Value, len(tokens))
	for i, t := range tokens {
		vals[i] = cty.StringVal(t)
	}
	return cty.TupleVal(vals)
}

// attributeTokens renders an attribute's value as text. Expressions that
// need an evaluation context fall back to their source text.
func attributeTokens(attr *hclsyntax.Attribute, src []byte) []string {
	val, diags := attr.Expr.Value(nil)
	if !diags.HasErrors() && val.IsWhollyKnown() && !val.IsNull() {
		if val.Type().IsTupleType() || val.Type().IsListType() {
			var out []string
			for it := val.ElementIterator(); it.Next(); {
				_, elem := it.Element()
				out = append(out, ctyText(elem))
			}
			return out
		}
		return []string{ctyText(val)}
	}
	rng := attr.Expr.Range()
	return []string{strings.TrimSpace(string(rng.SliceBytes(src)))}
}

func ctyText(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() {
		return ""
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	}
	return v.GoString()
}

func diagError(diags hcl.Diagnostics) error {
	err := formats.ParseError(Name, diags)
	for _, d := range diags {
		if d.Severity == hcl.DiagError && d.Subject != nil {
			return errors.Annotate(err, errors.ErrParse, errors.DetailLine, d.Subject.Start.Line)
		}
	}
	return err
}
