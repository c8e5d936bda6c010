package checks

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/fileutil"
	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
	"github.com/workflow-templates/templatelint/pkg/stringutil"
)

var orphansLog = logger.New("checks:orphans")

// OrphanOptions configure the orphan scan.
type OrphanOptions struct {
	// Exclude names files that belong to the tooling, such as the index
	// and schema documents. constants.ReservedFiles are always excluded.
	Exclude []string
	// Ignore holds doublestar globs matched against file names.
	Ignore []string
}

// ValidateIgnorePatterns rejects malformed ignore globs.
func ValidateIgnorePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return nil
}

// FindOrphans lists the files at the template root that no template
// references, and thumbnails that sit past a hole in their sequence.
func FindOrphans(tfs *fileutil.TemplateFS, idx *index.Index, opts OrphanOptions) ([]report.Issue, error) {
	if err := ValidateIgnorePatterns(opts.Ignore); err != nil {
		return nil, err
	}
	files, err := tfs.ListFiles()
	if err != nil {
		return nil, err
	}

	refs := collectReferences(idx)
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	var issues []report.Issue
	for _, f := range files {
		if isExcluded(f, opts) {
			continue
		}
		if filepath.Ext(f) == constants.WorkflowExtension {
			if !refs.names[strings.TrimSuffix(f, constants.WorkflowExtension)] {
				issues = append(issues, report.NewIssue(report.KindOrphanWorkflowFile, report.AtFile(f),
					"workflow file is not referenced by any template"))
			}
			continue
		}

		thumb, ok := refs.matchThumbnail(f)
		if !ok {
			issues = append(issues, report.NewIssue(report.KindOrphanMediaFile, report.AtFile(f),
				"media file is not referenced by any template"))
			continue
		}
		if gap := thumbnailGap(thumb, refs, present); gap != "" {
			issues = append(issues, report.NewIssue(report.KindThumbnailGap, report.AtFile(f),
				"thumbnail follows a gap in its sequence: %q is missing", gap))
		}
	}

	orphansLog.Printf("Orphan scan: files=%d issues=%d", len(files), len(issues))
	return issues, nil
}

type references struct {
	names map[string]bool
	// subtypes maps a template name to the media subtypes it declares.
	subtypes map[string][]string
}

func collectReferences(idx *index.Index) references {
	refs := references{names: make(map[string]bool), subtypes: make(map[string][]string)}
	for _, t := range idx.Templates() {
		if t.Name == "" || !stringutil.IsSafeFileStem(t.Name) {
			continue
		}
		refs.names[t.Name] = true
		if t.MediaSubtype != "" && !slices.Contains(refs.subtypes[t.Name], t.MediaSubtype) {
			refs.subtypes[t.Name] = append(refs.subtypes[t.Name], t.MediaSubtype)
		}
	}
	return refs
}

// thumbnail is a file name split as {name}-{number}.{ext}.
type thumbnail struct {
	name   string
	number string
	ext    string
}

// matchThumbnail reports whether file is {name}-{digits}.{anything} for a
// referenced template name.
func (r references) matchThumbnail(file string) (thumbnail, bool) {
	for i := strings.IndexByte(file, '-'); i >= 0; {
		name, rest := file[:i], file[i+1:]
		if r.names[name] {
			number, ext, _ := strings.Cut(rest, ".")
			if isDigits(number) {
				return thumbnail{name: name, number: number, ext: ext}, true
			}
		}
		next := strings.IndexByte(rest, '-')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return thumbnail{}, false
}

// thumbnailGap returns the first missing file before thumb, or "" when the
// sequence up to thumb is contiguous. Sequences without their first
// thumbnail are left to the file check.
func thumbnailGap(thumb thumbnail, refs references, present map[string]bool) string {
	if !slices.Contains(refs.subtypes[thumb.name], thumb.ext) {
		return ""
	}
	n, err := strconv.Atoi(thumb.number)
	if err != nil || strconv.Itoa(n) != thumb.number || n < 2 {
		return ""
	}
	if !present[ThumbnailFile(thumb.name, 1, thumb.ext)] {
		return ""
	}
	for k := 2; k < n; k++ {
		if f := ThumbnailFile(thumb.name, k, thumb.ext); !present[f] {
			return f
		}
	}
	return ""
}

func isExcluded(file string, opts OrphanOptions) bool {
	if slices.Contains(constants.ReservedFiles, file) || slices.Contains(opts.Exclude, file) {
		return true
	}
	for _, pattern := range opts.Ignore {
		if ok, err := doublestar.Match(pattern, file); err == nil && ok {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
