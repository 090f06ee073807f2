package engine

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gaurav-prasanna/flaremd/core/family"
	"github.com/gaurav-prasanna/flaremd/core/logfields"
	"github.com/gaurav-prasanna/flaremd/core/metrics"
	"github.com/gaurav-prasanna/flaremd/core/pathnorm"
	"github.com/gaurav-prasanna/flaremd/core/scan"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

// ErrUnrewrittenReferences is returned by Report.Err in strict mode.
var ErrUnrewrittenReferences = errors.New("unrewritten references")

// Failure is a reference that was left as it was.
type Failure struct {
	Line   int
	Href   string
	Reason string
}

// Report summarizes one Rewrite call.
type Report struct {
	Unit      string
	Family    family.Family
	Rewritten int
	Skipped   int
	Malformed []Failure
}

// Err returns nil unless strict is set and some references were malformed.
func (r Report) Err(strict bool) error {
	if !strict || len(r.Malformed) == 0 {
		return nil
	}
	return fmt.Errorf("unit %s: %d %w", r.Unit, len(r.Malformed), ErrUnrewrittenReferences)
}

// Rewrite replaces every resolvable internal reference in doc with its
// absolute URL. External links, in-page anchors and images are skipped.
// Malformed references stay untouched and are listed in the Report; only a
// configuration defect returns an error.
func (e *Engine) Rewrite(doc []byte, markers *subfolder.Markers) ([]byte, Report, error) {
	rep := Report{Unit: e.unit.Name, Family: e.unit.Family}
	fam := e.unit.Family.String()

	var edits []scan.Edit
	for _, ref := range scan.Links(doc) {
		if skip(ref) {
			rep.Skipped++
			e.recorder.IncReference(fam, metrics.OutcomeSkipped)
			if strings.HasPrefix(strings.TrimSpace(ref.Dest), "#") {
				e.logger.Debug("leaving in-page anchor untouched",
					logfields.Href(ref.Dest),
					logfields.Line(ref.Line))
			}
			continue
		}

		u, err := e.Resolve(ref.Dest, ref.Start, markers)
		if err != nil {
			var me *pathnorm.MalformedReferenceError
			if !errors.As(err, &me) {
				return nil, rep, fmt.Errorf("line %d: resolving %q: %w", ref.Line, ref.Dest, err)
			}
			rep.Malformed = append(rep.Malformed, Failure{Line: ref.Line, Href: ref.Dest, Reason: me.Reason})
			e.recorder.IncReference(fam, metrics.OutcomeMalformed)
			e.logger.Warn("leaving malformed reference untouched",
				logfields.Unit(e.unit.Name),
				logfields.Href(ref.Dest),
				logfields.Line(ref.Line),
				logfields.Error(err))
			continue
		}

		if u == ref.Dest {
			rep.Skipped++
			e.recorder.IncReference(fam, metrics.OutcomeSkipped)
			continue
		}
		edits = append(edits, scan.Edit{Start: ref.Start, End: ref.End, Replacement: []byte(u)})
		e.recorder.IncReference(fam, metrics.OutcomeRewritten)
	}

	out, err := scan.ApplyEdits(doc, edits)
	if err != nil {
		return nil, rep, fmt.Errorf("applying rewrites: %w", err)
	}
	rep.Rewritten = len(edits)
	return out, rep, nil
}

// skip reports whether ref points outside the unit or inside the page.
func skip(ref scan.Ref) bool {
	if ref.IsImage() {
		return true
	}
	dest := strings.TrimSpace(ref.Dest)
	if strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return true
	}
	u, err := url.Parse(dest)
	return err == nil && u.Scheme != "" && len(u.Scheme) > 1
}
