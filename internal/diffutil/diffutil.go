// Package diffutil compares the shortcuts a session asked for with the ones
// the backend granted.
package diffutil

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

const noPreference = "(no preference)"

// DiffLine represents a single line in the comparison with inline
// character-level changes for lines whose trigger changed.
type DiffLine struct {
	Type        diffmatchpatch.Operation // DiffEqual, DiffInsert, or DiffDelete
	ReqLineNum  int                      // Requested line number (0 if only granted)
	BindLineNum int                      // Granted line number (0 if not granted)
	Text        string                   // Line without trailing newline
	InlineDiffs []diffmatchpatch.Diff    // Set for changed lines only
	Skipped     int                      // Non-zero for a gap marker left by Context
}

// Changed reports whether the line pairs a requested and a granted entry that
// differ.
func (l DiffLine) Changed() bool {
	return l.Type == diffmatchpatch.DiffEqual && len(l.InlineDiffs) > 0
}

// Comparison is the result of CompareBindings.
type Comparison struct {
	Lines   []DiffLine
	Summary string

	Requested   int
	Granted     int
	NotGranted  int
	Changed     int
	Unrequested int
}

// RequestedText renders one "id: trigger" line per request. Parsable
// triggers are normalized so they line up with what backends report.
func RequestedText(requests []shortcut.Request) string {
	var b strings.Builder
	for _, r := range requests {
		trigger := noPreference
		if r.HasTrigger && r.PreferredTrigger != "" {
			trigger = r.PreferredTrigger
			if t, err := shortcut.ParseTrigger(r.PreferredTrigger); err == nil {
				trigger = t.String()
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", r.ID, trigger)
	}
	return b.String()
}

// GrantedText renders one "id: trigger" line per bound shortcut.
func GrantedText(bound []shortcut.Bound) string {
	var b strings.Builder
	for _, s := range bound {
		fmt.Fprintf(&b, "%s: %s\n", s.ID, s.TriggerDescription)
	}
	return b.String()
}

// CompareBindings diffs the requested list against the granted one line by
// line. A requested line and a granted line with the same id become one
// changed line carrying the inline differences.
func CompareBindings(requested []shortcut.Request, bound []shortcut.Bound) Comparison {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 5 * time.Second

	reqText, bindText := RequestedText(requested), GrantedText(bound)
	a, b, lineArray := dmp.DiffLinesToChars(reqText, bindText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	cmp := Comparison{Requested: len(requested), Granted: len(bound)}
	reqNum, bindNum := 1, 1

	var deleted, inserted []string
	flush := func() {
		lines, changed := pairLines(dmp, deleted, inserted, &reqNum, &bindNum)
		cmp.Lines = append(cmp.Lines, lines...)
		cmp.Changed += changed
		cmp.NotGranted += len(deleted) - changed
		cmp.Unrequested += len(inserted) - changed
		deleted, inserted = nil, nil
	}

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				deleted = append(deleted, line)
			case diffmatchpatch.DiffInsert:
				inserted = append(inserted, line)
			default:
				flush()
				cmp.Lines = append(cmp.Lines, DiffLine{
					Type:        diffmatchpatch.DiffEqual,
					ReqLineNum:  reqNum,
					BindLineNum: bindNum,
					Text:        line,
				})
				reqNum++
				bindNum++
			}
		}
	}
	flush()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Binding Summary:\n")
	fmt.Fprintf(&buf, "- Requested       : %d\n", cmp.Requested)
	fmt.Fprintf(&buf, "- Granted         : %d\n", cmp.Granted)
	fmt.Fprintf(&buf, "- Not Granted     : %d\n", cmp.NotGranted)
	fmt.Fprintf(&buf, "- Trigger Changed : %d\n", cmp.Changed)
	fmt.Fprintf(&buf, "- Unrequested     : %d\n", cmp.Unrequested)
	cmp.Summary = buf.String()
	return cmp
}

// pairLines turns one block of deletions followed by insertions into diff
// lines, matching entries by id.
func pairLines(dmp *diffmatchpatch.DiffMatchPatch, deleted, inserted []string, reqNum, bindNum *int) ([]DiffLine, int) {
	used := make([]bool, len(inserted))
	var lines []DiffLine
	changed := 0

	for _, del := range deleted {
		match := -1
		for i, ins := range inserted {
			if !used[i] && lineID(ins) == lineID(del) {
				match = i
				break
			}
		}
		if match < 0 {
			lines = append(lines, DiffLine{Type: diffmatchpatch.DiffDelete, ReqLineNum: *reqNum, Text: del})
			*reqNum++
			continue
		}

		used[match] = true
		inline := dmp.DiffMain(del, inserted[match], false)
		inline = dmp.DiffCleanupSemantic(inline)
		lines = append(lines, DiffLine{
			Type:        diffmatchpatch.DiffEqual,
			ReqLineNum:  *reqNum,
			BindLineNum: *bindNum,
			Text:        inserted[match],
			InlineDiffs: inline,
		})
		*reqNum++
		*bindNum++
		changed++
	}

	for i, ins := range inserted {
		if used[i] {
			continue
		}
		lines = append(lines, DiffLine{Type: diffmatchpatch.DiffInsert, BindLineNum: *bindNum, Text: ins})
		*bindNum++
	}
	return lines, changed
}

// Context keeps at most n unchanged lines around every change and replaces
// each longer run with a single gap marker. A negative n keeps everything.
func Context(lines []DiffLine, n int) []DiffLine {
	if n < 0 {
		return lines
	}
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Type == diffmatchpatch.DiffEqual && !l.Changed() {
			continue
		}
		for j := i - n; j <= i+n; j++ {
			if j >= 0 && j < len(lines) {
				keep[j] = true
			}
		}
	}

	var out []DiffLine
	skipped := 0
	for i, l := range lines {
		if keep[i] {
			if skipped > 0 {
				out = append(out, DiffLine{Type: diffmatchpatch.DiffEqual, Skipped: skipped})
				skipped = 0
			}
			out = append(out, l)
			continue
		}
		skipped++
	}
	if skipped > 0 {
		out = append(out, DiffLine{Type: diffmatchpatch.DiffEqual, Skipped: skipped})
	}
	return out
}

func lineID(line string) string {
	id, _, _ := strings.Cut(line, ": ")
	return id
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
