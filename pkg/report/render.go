package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/workflow-templates/templatelint/pkg/console"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/stringutil"
)

var renderLog = logger.New("report:render")

// Format selects a renderer.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatGitHub:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or github)", s)
	}
}

// RenderOptions tune the text renderer.
type RenderOptions struct {
	// Quiet prints error lines only, and the summary only on FAIL.
	Quiet bool
	// Verbose adds per-template thumbnail counts.
	Verbose bool
	Color   bool
}

// Render writes r in format.
func Render(w io.Writer, r *Report, format Format, opts RenderOptions) error {
	renderLog.Printf("Rendering report: format=%s issues=%d", format, len(r.Issues))
	switch format {
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatGitHub:
		return RenderGitHub(w, r)
	default:
		return RenderText(w, r, opts)
	}
}

// RenderText writes one line per issue followed by a summary line.
func RenderText(w io.Writer, r *Report, opts RenderOptions) error {
	styler := console.NewStyler(opts.Color)
	var sb strings.Builder

	for _, issue := range r.Issues {
		if opts.Quiet && issue.Severity != SeverityError {
			continue
		}
		label := fmt.Sprintf("%-7s", issue.Severity)
		if issue.Severity == SeverityError {
			label = styler.Error(label)
		} else {
			label = styler.Warning(label)
		}
		fmt.Fprintf(&sb, "%s %s: %s %s\n", label, issue.Location, issue.Message, styler.Muted("["+string(issue.Kind)+"]"))
	}

	if opts.Verbose && !opts.Quiet && len(r.Summaries) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("thumbnails:\n")
		for _, s := range r.Summaries {
			fmt.Fprintf(&sb, "  %s: %s\n", s.Name, stringutil.Plural(s.Thumbnails, "thumbnail", "thumbnails"))
		}
	}

	verdict := r.Verdict()
	if !opts.Quiet || verdict == VerdictFail {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(summaryLine(r, styler))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func summaryLine(r *Report, styler console.Styler) string {
	verdict := string(r.Verdict())
	switch r.Verdict() {
	case VerdictFail:
		verdict = styler.Error(verdict)
	case VerdictPassWithWarnings:
		verdict = styler.Warning(verdict)
	default:
		verdict = styler.Success(verdict)
	}
	line := fmt.Sprintf("%s: %s, %s (%s, %s)",
		verdict,
		stringutil.Plural(r.Errors(), "error", "errors"),
		stringutil.Plural(r.Warnings(), "warning", "warnings"),
		stringutil.Plural(r.Categories, "category", "categories"),
		stringutil.Plural(r.Templates, "template", "templates"),
	)
	if r.Strict {
		line += " [strict]"
	}
	return line
}

type jsonReport struct {
	Root       string            `json:"root"`
	Index      string            `json:"index"`
	Verdict    Verdict           `json:"verdict"`
	Strict     bool              `json:"strict"`
	Errors     int               `json:"errors"`
	Warnings   int               `json:"warnings"`
	Categories int               `json:"categories"`
	Templates  int               `json:"templates"`
	Issues     []Issue           `json:"issues"`
	Thumbnails []TemplateSummary `json:"thumbnails"`
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	out := jsonReport{
		Root:       r.Root,
		Index:      r.IndexFile,
		Verdict:    r.Verdict(),
		Strict:     r.Strict,
		Errors:     r.Errors(),
		Warnings:   r.Warnings(),
		Categories: r.Categories,
		Templates:  r.Templates,
		Issues:     r.Issues,
		Thumbnails: r.Summaries,
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	if out.Thumbnails == nil {
		out.Thumbnails = []TemplateSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// RenderGitHub writes GitHub Actions workflow commands, one per issue.
// Index-positioned issues are attributed to the index document; file-level
// issues to their file.
func RenderGitHub(w io.Writer, r *Report) error {
	var sb strings.Builder
	for _, issue := range r.Issues {
		file := r.IndexFile
		if issue.Location.IsFileLevel() && issue.Location.Path != "" {
			file = issue.Location.Path
		}
		if r.Root != "" {
			file = path.Join(r.Root, file)
		}
		fmt.Fprintf(&sb, "::%s file=%s,title=%s::%s\n",
			issue.Severity, escapeProperty(file), escapeProperty(string(issue.Kind)), escapeData(issue.Location.String()+": "+issue.Message))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

func escapeProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}
