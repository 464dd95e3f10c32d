// Package xmlfmt implements the XML format plugin.
//
// A config document is a <config> root whose child elements are entries:
//
//	<config>
//	  <theme>Mocha</theme>
//	  <plugin>a</plugin>
//	  <plugin>b</plugin>
//	</config>
//
// Repeated elements form a multi-valued entry, so list fields are written as
// one element per item.
package xmlfmt

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/beevik/etree"
)

// Name is the canonical format identifier.
const Name = "xml"

// RootTag is the document element of every config file.
const RootTag = "config"

// Plugin is the XML format plugin.
type Plugin struct{}

// New returns the XML plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".xml"} }

// Read parses a <config> document. Comments and processing instructions are
// dropped.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	state := &types.ExistingFileState{}
	if strings.TrimSpace(string(data)) == "" {
		return state, nil
	}

	doc := etree.NewDocument()
	doc.ReadSettings.ValidateInput = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, formats.ParseError(Name, err)
	}
	root := doc.Root()
	if root == nil {
		return state, nil
	}
	if root.Tag != RootTag {
		return nil, formats.ParseErrorf(Name, "root element must be <%s>, found <%s>", RootTag, root.Tag)
	}

	index := make(map[string]int)
	for _, el := range root.ChildElements() {
		key := el.FullTag()
		text := strings.TrimSpace(el.Text())
		if i, seen := index[key]; seen {
			state.Entries[i].Tokens = append(state.Entries[i].Tokens, text)
			state.Entries[i].Raw = append(state.Entries[i].Raw.([]*etree.Element), el)
			continue
		}
		index[key] = len(state.Entries)
		state.Entries = append(state.Entries, types.ExistingEntry{
			Key:    key,
			Tokens: []string{text},
			Raw:    []*etree.Element{el},
		})
	}
	return state, nil
}

// Write serializes doc under a <config> root with two-space indentation.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := out.CreateElement(RootTag)

	for _, entry := range doc.Entries {
		if entry.Kind == types.Passthrough {
			if entry.Existing.Opaque {
				continue
			}
			if elements, ok := entry.Existing.Raw.([]*etree.Element); ok {
				for _, el := range elements {
					root.AddChild(el.Copy())
				}
				continue
			}
			if !validName(entry.Key) {
				return nil, formats.Unencodable(Name, entry.Key, entry.Value, "key is not a valid element name")
			}
			for _, token := range entry.Existing.Tokens {
				root.CreateElement(entry.Key).SetText(token)
			}
			continue
		}

		if !validName(entry.Key) {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "key is not a valid element name")
		}
		if formats.HasNestedList(entry.Value) {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "nested lists have no element representation")
		}
		tokens := entry.Value.Tokens()
		for _, token := range tokens {
			if !validText(token) {
				return nil, formats.Unencodable(Name, entry.Key, entry.Value, "text contains characters XML 1.0 does not allow")
			}
		}
		for _, token := range tokens {
			root.CreateElement(entry.Key).SetText(token)
		}
	}

	out.Indent(2)
	return out.WriteToBytes()
}

// validName accepts XML element names without namespace prefixes.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(strings.ToLower(name), "xml") {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

// validText reports whether s only holds characters allowed by the XML 1.0
// Char production.
func validText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}
