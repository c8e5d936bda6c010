package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/workflow-templates/templatelint/pkg/console"
	"github.com/workflow-templates/templatelint/pkg/envutil"
	"github.com/workflow-templates/templatelint/pkg/report"
)

// FormatValidationError formats a fatal error for stderr.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}
	return console.FormatErrorMessage(err.Error())
}

// PrintValidationError prints a fatal error to stderr unless it is silent.
func PrintValidationError(err error) {
	if err == nil || IsSilent(err) {
		return
	}
	fmt.Fprintln(os.Stderr, FormatValidationError(err))
}

// writeReport renders r to w. Text output inside GitHub Actions is followed
// by workflow-command annotations so the issues show up on the pull request.
func writeReport(w io.Writer, r *report.Report, format report.Format, opts report.RenderOptions) error {
	if err := report.Render(w, r, format, opts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if format == report.FormatText && envutil.IsGitHubActions() && len(r.Issues) > 0 {
		if err := report.RenderGitHub(w, r); err != nil {
			return fmt.Errorf("failed to write annotations: %w", err)
		}
	}
	return nil
}
