// Package merge reconciles the desired values of a file with the content
// already on disk.
//
// Declared values always win. Keys the schema does not declare are carried
// over unchanged, in their original position.
package merge

import (
	"github.com/arthur-debert/confsynth/pkg/types"
)

// Merge builds the document to serialize.
//
// With no existing state every effective field becomes a managed entry in
// order. Otherwise existing entries are walked in file order: declared keys
// become managed entries holding the desired value, everything else passes
// through. Effective fields that were not on disk are appended in order.
//
// Each key appears once. A managed key keeps its first position and later
// occurrences are dropped, so a list value replaces every on-disk occurrence.
// Repeated passthrough keys are folded into their first occurrence.
func Merge(existing *types.ExistingFileState, effective types.EffectiveValues, order []string) types.MergedDocument {
	doc := types.MergedDocument{}
	emitted := make(map[string]int)

	if existing != nil {
		for _, entry := range existing.Entries {
			if entry.Opaque {
				doc.Entries = append(doc.Entries, types.PassthroughEntry(entry))
				continue
			}

			if at, seen := emitted[entry.Key]; seen {
				if doc.Entries[at].Kind == types.Passthrough {
					doc.Entries[at].Existing = fold(doc.Entries[at].Existing, entry)
				}
				continue
			}

			emitted[entry.Key] = len(doc.Entries)
			if v, declared := effective[entry.Key]; declared {
				doc.Entries = append(doc.Entries, types.ManagedEntry(entry.Key, v))
				continue
			}
			doc.Entries = append(doc.Entries, types.PassthroughEntry(entry))
		}
	}

	for _, key := range order {
		if _, seen := emitted[key]; seen {
			continue
		}
		v, ok := effective[key]
		if !ok {
			continue
		}
		emitted[key] = len(doc.Entries)
		doc.Entries = append(doc.Entries, types.ManagedEntry(key, v))
	}
	return doc
}

// fold appends the tokens of a repeated key to its first occurrence. Plugin
// data cannot be combined generically, so the folded entry is written back
// from its tokens.
func fold(first, next types.ExistingEntry) types.ExistingEntry {
	tokens := make([]string, 0, len(first.Tokens)+len(next.Tokens))
	tokens = append(tokens, first.Tokens...)
	tokens = append(tokens, next.Tokens...)
	first.Tokens = tokens
	first.Raw = nil
	return first
}
