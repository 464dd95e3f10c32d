// Package builtin assembles the registry of format plugins shipped with
// confsynth.
package builtin

import (
	"github.com/arthur-debert/confsynth/pkg/formats"
	"github.com/arthur-debert/confsynth/pkg/formats/hclfmt"
	"github.com/arthur-debert/confsynth/pkg/formats/jsonfmt"
	"github.com/arthur-debert/confsynth/pkg/formats/keyvalue"
	"github.com/arthur-debert/confsynth/pkg/formats/raw"
	"github.com/arthur-debert/confsynth/pkg/formats/textlist"
	"github.com/arthur-debert/confsynth/pkg/formats/tomlfmt"
	"github.com/arthur-debert/confsynth/pkg/formats/xmlfmt"
	"github.com/arthur-debert/confsynth/pkg/formats/yamlfmt"
)

// NewRegistry returns a registry holding every built-in plugin.
func NewRegistry() *formats.Registry {
	r := formats.NewRegistry()
	r.MustRegister(keyvalue.New(), "ghostty")
	r.MustRegister(jsonfmt.New())
	r.MustRegister(yamlfmt.New(), "yml")
	r.MustRegister(tomlfmt.New())
	r.MustRegister(hclfmt.New())
	r.MustRegister(xmlfmt.New())
	r.MustRegister(textlist.New())
	r.MustRegister(raw.New())
	return r
}
