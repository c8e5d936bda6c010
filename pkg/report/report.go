package report

import (
	"cmp"
	"slices"

	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/logger"
)

var reportLog = logger.New("report:aggregate")

// Verdict is the overall outcome of a run.
type Verdict string

const (
	VerdictPass             Verdict = "PASS"
	VerdictPassWithWarnings Verdict = "PASS WITH WARNINGS"
	VerdictFail             Verdict = "FAIL"
)

// TemplateSummary records informational per-template facts.
type TemplateSummary struct {
	Category   int    `json:"category"`
	Template   int    `json:"template"`
	Name       string `json:"name"`
	Thumbnails int    `json:"thumbnails"`
}

// Report is the result of one validation run.
type Report struct {
	Root       string            `json:"root"`
	IndexFile  string            `json:"index"`
	Strict     bool              `json:"strict"`
	Categories int               `json:"categories"`
	Templates  int               `json:"templates"`
	Issues     []Issue           `json:"issues"`
	Summaries  []TemplateSummary `json:"thumbnails,omitempty"`
}

// Verdict derives the outcome from the issue severities.
func (r *Report) Verdict() Verdict {
	switch {
	case r.Errors() > 0:
		return VerdictFail
	case r.Warnings() > 0:
		return VerdictPassWithWarnings
	default:
		return VerdictPass
	}
}

// Errors counts error-severity issues.
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings counts warning-severity issues.
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Fatal reports whether the index document itself could not be parsed.
func (r *Report) Fatal() bool {
	for _, issue := range r.Issues {
		if issue.Kind == KindInvalidSyntax && issue.Location.Path == r.IndexFile {
			return true
		}
	}
	return false
}

// BySeverity groups issues by severity, keeping report order in each group.
func (r *Report) BySeverity() map[Severity][]Issue {
	groups := make(map[Severity][]Issue, 2)
	for _, issue := range r.Issues {
		groups[issue.Severity] = append(groups[issue.Severity], issue)
	}
	return groups
}

// OfKind returns the issues of kind in report order.
func (r *Report) OfKind(kind Kind) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

// ExitCode maps the verdict to a process exit status.
func (r *Report) ExitCode() int {
	if r.Verdict() == VerdictFail {
		return constants.ExitFail
	}
	return constants.ExitOK
}

// Aggregator collects issues from every stage of a run. It never fails fast;
// every issue added is kept.
type Aggregator struct {
	strict bool
	issues []Issue
}

// NewAggregator creates an aggregator. In strict mode every warning is
// promoted to an error.
func NewAggregator(strict bool) *Aggregator {
	return &Aggregator{strict: strict}
}

// Add appends the issues of one stage.
func (a *Aggregator) Add(issues ...Issue) {
	a.issues = append(a.issues, issues...)
}

// Finalize stores the ordered, severity-adjusted issues in r and returns it.
func (a *Aggregator) Finalize(r *Report) *Report {
	issues := make([]Issue, len(a.issues))
	for i, issue := range a.issues {
		if a.strict && issue.Severity == SeverityWarning {
			issue.Severity = SeverityError
		}
		issues[i] = issue
	}
	Sort(issues)

	r.Strict = a.strict
	r.Issues = issues
	reportLog.Printf("Aggregated %d issues: errors=%d warnings=%d verdict=%s", len(issues), r.Errors(), r.Warnings(), r.Verdict())
	return r
}

// Sort orders issues by category position, template position and kind, with
// field, path and message as tie-breakers. File-level issues go last.
func Sort(issues []Issue) {
	slices.SortStableFunc(issues, compareIssues)
}

func compareIssues(a, b Issue) int {
	la, lb := a.Location, b.Location
	if c := cmp.Compare(boolRank(la.IsFileLevel()), boolRank(lb.IsFileLevel())); c != 0 {
		return c
	}
	if c := cmp.Compare(la.Category, lb.Category); c != 0 {
		return c
	}
	if c := cmp.Compare(la.Template, lb.Template); c != 0 {
		return c
	}
	if la.IsFileLevel() {
		if c := cmp.Compare(la.Path, lb.Path); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Kind.rank(), b.Kind.rank()); c != 0 {
		return c
	}
	if c := cmp.Compare(la.Field, lb.Field); c != 0 {
		return c
	}
	if c := cmp.Compare(la.Path, lb.Path); c != 0 {
		return c
	}
	return cmp.Compare(a.Message, b.Message)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
