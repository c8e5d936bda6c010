// Package checks holds the read-only stages that run after the schema
// stage: file consistency, duplicate detection and the orphan scan. Each
// stage only inspects the index and the template root and returns its
// issues; none of them opens a file.
package checks

import (
	"fmt"

	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/fileutil"
	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
	"github.com/workflow-templates/templatelint/pkg/stringutil"
)

var filesLog = logger.New("checks:files")

// FileResult is the output of the file consistency stage.
type FileResult struct {
	Issues    []report.Issue
	Summaries []report.TemplateSummary
}

// WorkflowFile returns the workflow file name of a template.
func WorkflowFile(name string) string {
	return name + constants.WorkflowExtension
}

// ThumbnailFile returns the n-th thumbnail file name of a template.
func ThumbnailFile(name string, n int, subtype string) string {
	return fmt.Sprintf("%s-%d.%s", name, n, subtype)
}

// CheckFiles verifies the workflow file and the thumbnails of every
// template, and the naming convention of its name.
func CheckFiles(tfs *fileutil.TemplateFS, templates []index.Template) FileResult {
	var result FileResult
	for _, t := range templates {
		if t.Name == "" {
			continue
		}
		loc := t.Location()

		if !stringutil.IsValidTemplateName(t.Name) {
			result.Issues = append(result.Issues, report.NewIssue(report.KindInvalidName, loc,
				"name %q must use lowercase letters, digits and underscores", t.Name))
		}
		// A name that is not a safe file stem cannot name a file inside the
		// root, so its files are reported missing without touching the disk.
		safeName := stringutil.IsSafeFileStem(t.Name)
		if !safeName {
			filesLog.Printf("Not probing disk for unsafe name %q", t.Name)
		}

		workflow := WorkflowFile(t.Name)
		if !safeName || !tfs.FileExists(workflow) {
			result.Issues = append(result.Issues, report.NewIssue(report.KindMissingWorkflowFile, loc.WithPath(workflow),
				"workflow file %q not found", workflow))
		}

		if t.MediaSubtype == "" {
			continue
		}
		count := 0
		if safeName && stringutil.IsSafeFileStem(t.MediaSubtype) {
			count = CountThumbnails(tfs, t.Name, t.MediaSubtype)
		}
		if count == 0 {
			first := ThumbnailFile(t.Name, 1, t.MediaSubtype)
			result.Issues = append(result.Issues, report.NewIssue(report.KindMissingThumbnail, loc.WithPath(first),
				"required thumbnail %q not found", first))
		}
		result.Summaries = append(result.Summaries, report.TemplateSummary{
			Category:   t.Category,
			Template:   t.Index,
			Name:       t.Name,
			Thumbnails: count,
		})
	}
	filesLog.Printf("File check: templates=%d issues=%d", len(templates), len(result.Issues))
	return result
}

// CountThumbnails probes name-1.subtype, name-2.subtype, ... and returns
// the length of the contiguous run, bounded by constants.MaxThumbnailProbe.
func CountThumbnails(tfs *fileutil.TemplateFS, name, subtype string) int {
	n := 0
	for n < constants.MaxThumbnailProbe && tfs.FileExists(ThumbnailFile(name, n+1, subtype)) {
		n++
	}
	return n
}
