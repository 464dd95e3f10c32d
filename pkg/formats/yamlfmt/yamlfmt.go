// Package yamlfmt implements the YAML format plugin on top of yaml.v3 nodes,
// which keep mapping order on both read and write.
package yamlfmt

import (
	"bytes"
	"fmt"

	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
	"gopkg.in/yaml.v3"
)

// Name is the canonical format identifier.
const Name = "yaml"

// Plugin is the YAML format plugin.
type Plugin struct{}

// New returns the YAML plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".yaml", ".yml"} }

// Read decodes the first YAML document, which must be a mapping.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	state := &types.ExistingFileState{}
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, formats.ParseError(Name, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return state, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return state, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, formats.ParseErrorf(Name, "top level of a YAML config must be a mapping (line %d)", root.Line)
	}

	index := make(map[string]int)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valueNode, err := detach(root.Content[i+1], make(map[*yaml.Node]bool))
		if err != nil {
			return nil, formats.ParseErrorf(Name, "key %q: %v", keyNode.Value, err)
		}
		entry := types.ExistingEntry{
			Key:    keyNode.Value,
			Tokens: tokens(valueNode),
			Raw:    valueNode,
		}
		if at, seen := index[entry.Key]; seen {
			state.Entries[at] = entry
			continue
		}
		index[entry.Key] = len(state.Entries)
		state.Entries = append(state.Entries, entry)
	}
	return state, nil
}

// Write serializes doc as a single YAML mapping with two-space indentation.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, entry := range doc.Entries {
		if entry.Kind == types.Passthrough && entry.Existing.Opaque {
			continue
		}
		value, err := valueNode(entry)
		if err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Key}
		root.Content = append(root.Content, key, value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, formats.Unencodable(Name, "", types.Value{}, err.Error())
	}
	if err := enc.Close(); err != nil {
		return nil, formats.Unencodable(Name, "", types.Value{}, err.Error())
	}
	return buf.Bytes(), nil
}

func valueNode(entry types.MergedEntry) (*yaml.Node, error) {
	if entry.Kind == types.Passthrough {
		if node, ok := entry.Existing.Raw.(*yaml.Node); ok {
			return node, nil
		}
		return tokensNode(entry.Existing.Tokens), nil
	}

	node := &yaml.Node{}
	if err := node.Encode(entry.Value.Native()); err != nil {
		return nil, formats.Unencodable(Name, entry.Key, entry.Value, err.Error())
	}
	return node, nil
}

// detach returns a deep copy of n with every alias replaced by a copy of its
// anchored node and every anchor removed. Passthrough values must not refer
// to anchors, since the node holding the anchor may be replaced or dropped.
func detach(n *yaml.Node, onPath map[*yaml.Node]bool) (*yaml.Node, error) {
	if n.Kind == yaml.AliasNode {
		if n.Alias == nil {
			return nil, fmt.Errorf("alias *%s has no anchor", n.Value)
		}
		return detach(n.Alias, onPath)
	}
	if onPath[n] {
		return nil, fmt.Errorf("anchor &%s contains itself", n.Anchor)
	}
	onPath[n] = true
	defer delete(onPath, n)

	cp := *n
	cp.Anchor = ""
	cp.Content = nil
	for _, child := range n.Content {
		c, err := detach(child, onPath)
		if err != nil {
			return nil, err
		}
		cp.Content = append(cp.Content, c)
	}
	return &cp, nil
}

func tokensNode(tokens []string) *yaml.Node {
	if len(tokens) == 1 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tokens[0]}
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, t := range tokens {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t})
	}
	return seq
}

func tokens(n *yaml.Node) []string {
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			out = append(out, item.Value)
		}
		return out
	}
	return []string{n.Value}
}
