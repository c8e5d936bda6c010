package checks

import (
	"strings"

	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
)

var duplicatesLog = logger.New("checks:duplicates")

// FindDuplicates reports every template name used more than once across the
// whole index, and every repeated category moduleName. Each repeated name
// yields a single issue listing all of its locations.
func FindDuplicates(idx *index.Index) []report.Issue {
	var issues []report.Issue

	var templateLocs occurrences
	for _, t := range idx.Templates() {
		if t.Name != "" {
			templateLocs.add(t.Name, t.Location())
		}
	}
	for _, name := range templateLocs.order {
		locs := templateLocs.byName[name]
		if len(locs) < 2 {
			continue
		}
		issues = append(issues, report.NewIssue(report.KindDuplicateName, locs[0],
			"template name %q is used %d times: %s", name, len(locs), joinLocations(locs)))
	}

	var moduleLocs occurrences
	for _, c := range idx.Categories {
		if c.ModuleName != "" {
			moduleLocs.add(c.ModuleName, c.Location())
		}
	}
	for _, name := range moduleLocs.order {
		locs := moduleLocs.byName[name]
		if len(locs) < 2 {
			continue
		}
		issues = append(issues, report.NewIssue(report.KindDuplicateModuleName, locs[0],
			"module name %q is used %d times: %s", name, len(locs), joinLocations(locs)))
	}

	duplicatesLog.Printf("Duplicate check: names=%d modules=%d issues=%d", len(templateLocs.order), len(moduleLocs.order), len(issues))
	return issues
}

// occurrences maps names to their locations in first-seen order.
type occurrences struct {
	order  []string
	byName map[string][]report.Location
}

func (o *occurrences) add(name string, loc report.Location) {
	if o.byName == nil {
		o.byName = make(map[string][]report.Location)
	}
	if _, seen := o.byName[name]; !seen {
		o.order = append(o.order, name)
	}
	o.byName[name] = append(o.byName[name], loc)
}

// joinLocations renders positions without names; the name is in the message.
func joinLocations(locs []report.Location) string {
	parts := make([]string, len(locs))
	for i, loc := range locs {
		loc.ModuleName = ""
		loc.TemplateName = ""
		parts[i] = loc.String()
	}
	return strings.Join(parts, ", ")
}
