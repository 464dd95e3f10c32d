package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Expand substitutes variables in template from env and resolves a leading
// ~ against the snapshot's HOME. The result is cleaned but not made absolute.
func Expand(template string, env Environment) (string, error) {
	if err := ValidatePath(template); err != nil {
		return "", errors.Wrap(err, errors.ErrConfig, "invalid target path").
			WithDetail(errors.DetailTarget, template)
	}

	word, err := syntax.NewParser().Document(strings.NewReader(template))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfig, "invalid path template %q", template).
			WithDetail(errors.DetailTarget, template)
	}

	if missing := unresolved(word, env); missing != "" {
		return "", errors.Newf(errors.ErrConfig, "unresolved placeholder ${%s} in target path", missing).
			WithDetail(errors.DetailTarget, template).
			WithDetail("variable", missing)
	}

	cfg := &expand.Config{Env: expand.ListEnviron(env.Pairs()...)}
	out, err := expand.Document(cfg, word)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfig, "cannot expand target path %q", template).
			WithDetail(errors.DetailTarget, template)
	}

	out = expandHome(out, env.Home())
	if out == "" {
		return "", errors.Newf(errors.ErrConfig, "target path %q expands to an empty string", template).
			WithDetail(errors.DetailTarget, template)
	}
	return filepath.Clean(out), nil
}

// Resolve expands template and makes it absolute.
func Resolve(template string, env Environment) (string, error) {
	expanded, err := Expand(template, env)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfig, "cannot make %q absolute", expanded).
			WithDetail(errors.DetailTarget, template)
	}
	return abs, nil
}

// unresolved returns the first variable referenced without a fallback that
// env does not define.
func unresolved(word *syntax.Word, env Environment) string {
	if word == nil {
		return ""
	}
	var missing string
	syntax.Walk(word, func(node syntax.Node) bool {
		if missing != "" {
			return false
		}
		pe, ok := node.(*syntax.ParamExp)
		if !ok || pe.Param == nil {
			return true
		}
		if hasFallback(pe) {
			return true
		}
		if _, set := env.Lookup(pe.Param.Value); !set {
			missing = pe.Param.Value
		}
		return true
	})
	return missing
}

func hasFallback(pe *syntax.ParamExp) bool {
	if pe.Exp == nil {
		return false
	}
	switch pe.Exp.Op {
	case syntax.DefaultUnset, syntax.DefaultUnsetOrNull,
		syntax.AlternateUnset, syntax.AlternateUnsetOrNull:
		return true
	}
	return false
}
