// Package raw implements a format whose whole content is the single string
// field "content", written byte for byte. It suits scripts and other files
// with no key structure.
package raw

import (
	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/types"
)

// Name is the canonical format identifier.
const Name = "raw"

// ContentField holds the file content.
const ContentField = "content"

// Plugin is the raw format plugin.
type Plugin struct{}

// New returns the raw plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the format identifier.
func (p *Plugin) Name() string { return Name }

// Extensions returns the extensions that select this format.
func (p *Plugin) Extensions() []string { return []string{".txt"} }

// Read returns the whole file as the content field. It never fails.
func (p *Plugin) Read(data []byte) (*types.ExistingFileState, error) {
	state := &types.ExistingFileState{}
	if len(data) > 0 {
		state.Entries = append(state.Entries, types.ExistingEntry{
			Key:    ContentField,
			Tokens: []string{string(data)},
		})
	}
	return state, nil
}

// Write returns the content field verbatim.
func (p *Plugin) Write(doc types.MergedDocument) ([]byte, error) {
	var out []byte
	for _, entry := range doc.Entries {
		if entry.Key != ContentField {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "only the content field is supported")
		}
		if entry.Kind == types.Passthrough {
			if len(entry.Existing.Tokens) > 0 {
				out = []byte(entry.Existing.Tokens[0])
			}
			continue
		}
		s, ok := entry.Value.Str()
		if !ok {
			return nil, formats.Unencodable(Name, entry.Key, entry.Value, "content must be a string")
		}
		out = []byte(s)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
