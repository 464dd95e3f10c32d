// Package output renders synthesis results for people and for machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Renderer writes results in one output format.
type Renderer struct {
	w      io.Writer
	format Format
	styles styles
}

// New creates a renderer. FormatAuto must be resolved with DetectFormat
// first; it renders as plain text here.
func New(w io.Writer, format Format) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if format != FormatTerminal {
		lr.SetColorProfile(termenv.Ascii)
		lr.SetHasDarkBackground(true)
	}
	return &Renderer{w: w, format: format, styles: newStyles(lr)}
}

// Format returns the format the renderer writes.
func (r *Renderer) Format() Format { return r.format }

// jsonResult is the machine-readable form of a types.Result.
type jsonResult struct {
	types.Result
	Error   string                 `json:"error,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type jsonReport struct {
	Results []jsonResult         `json:"results"`
	Summary map[types.Status]int `json:"summary"`
}

// RenderResults writes one line per result, any diffs, and a summary.
func (r *Renderer) RenderResults(results []types.Result) error {
	if r.format == FormatJSON {
		report := jsonReport{Results: make([]jsonResult, len(results)), Summary: types.CountByStatus(results)}
		for i, res := range results {
			report.Results[i] = jsonResult{Result: res}
			if res.Err != nil {
				report.Results[i].Error = res.Err.Error()
				report.Results[i].Code = string(errors.GetErrorCode(res.Err))
				report.Results[i].Details = errors.GetErrorDetails(res.Err)
			}
		}
		return r.encode(report)
	}

	var b strings.Builder
	for _, res := range results {
		b.WriteString(r.resultLine(res))
		b.WriteByte('\n')
		if res.Diff != "" {
			b.WriteString(r.diff(res.Diff))
		}
	}
	b.WriteString(r.summary(results))
	b.WriteByte('\n')
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) resultLine(res types.Result) string {
	st := r.styles.status[res.Status]
	status := st.Render(fmt.Sprintf("%s %-9s", indicators[res.Status], res.Status))

	format := res.Format
	if format == "" {
		format = "-"
	}
	where := res.Path
	if where == "" {
		where = res.Target
	}

	line := fmt.Sprintf("%s %-8s %s", status, format, r.styles.path.Render(where))
	if res.Failed() && res.Err != nil {
		line += "\n    " + r.styles.err.Render(res.Err.Error())
	}
	return line
}

func (r *Renderer) diff(text string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		content := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(content, "+++"), strings.HasPrefix(content, "---"):
			content = r.styles.bold.Render(content)
		case strings.HasPrefix(content, "@@"):
			content = r.styles.hunk.Render(content)
		case strings.HasPrefix(content, "+"):
			content = r.styles.added.Render(content)
		case strings.HasPrefix(content, "-"):
			content = r.styles.removed.Render(content)
		}
		b.WriteString("    ")
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Renderer) summary(results []types.Result) string {
	counts := types.CountByStatus(results)
	parts := make([]string, 0, 4)
	for _, s := range []types.Status{types.StatusWritten, types.StatusPlanned, types.StatusUnchanged, types.StatusFailed} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	noun := "files"
	if len(results) == 1 {
		noun = "file"
	}
	text := fmt.Sprintf("%d %s", len(results), noun)
	if len(parts) > 0 {
		text += ": " + strings.Join(parts, ", ")
	}
	return r.styles.muted.Render(text)
}

// FormatInfo describes one registered format for listing.
type FormatInfo struct {
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases,omitempty"`
	Extensions []string `json:"extensions"`
}

// RenderFormats lists the registered formats.
func (r *Renderer) RenderFormats(infos []FormatInfo) error {
	if r.format == FormatJSON {
		return r.encode(infos)
	}
	var b strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&b, "%s %s", r.styles.bold.Render(fmt.Sprintf("%-10s", info.Name)), strings.Join(info.Extensions, " "))
		if len(info.Aliases) > 0 {
			b.WriteString(r.styles.muted.Render(" (aliases: " + strings.Join(info.Aliases, ", ") + ")"))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// RenderError renders an error message with appropriate styling
func (r *Renderer) RenderError(err error) error {
	if r.format == FormatJSON {
		return r.encode(map[string]interface{}{
			"error":   err.Error(),
			"code":    string(errors.GetErrorCode(err)),
			"details": errors.GetErrorDetails(err),
		})
	}
	_, werr := fmt.Fprintln(r.w, r.styles.err.Render("Error: "+err.Error()))
	return werr
}

// RenderMessage writes a plain informational line.
func (r *Renderer) RenderMessage(msg string) error {
	if r.format == FormatJSON {
		return r.encode(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(r.w, r.styles.muted.Render(msg))
	return err
}

func (r *Renderer) encode(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
