package ui

import (
	"fmt"
	"html"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/TanaroSch/portal-shortcuts/internal/diffutil"
	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// renderBindingDiffHtml renders comparison lines as a unified diff with
// requested and granted line numbers.
func renderBindingDiffHtml(lines []diffutil.DiffLine) string {
	var builder strings.Builder
	builder.WriteString(`<pre class="diff-output">`)
	for _, line := range lines {
		if line.Skipped > 0 {
			fmt.Fprintf(&builder,
				"<div class=\"line foldable\"><span class=\"line-content\">%d unchanged shortcut(s) hidden</span></div>",
				line.Skipped)
			continue
		}
		writeDiffLine(&builder, line)
	}
	builder.WriteString(`</pre>`)
	return builder.String()
}

// writeDiffLine formats and writes a single line of the diff to the builder.
func writeDiffLine(builder *strings.Builder, line diffutil.DiffLine) {
	lineClass := "diff-equal"
	opChar := " "
	switch {
	case line.Type == diffmatchpatch.DiffDelete:
		lineClass, opChar = "diff-delete", "-"
	case line.Type == diffmatchpatch.DiffInsert:
		lineClass, opChar = "diff-insert", "+"
	case line.Changed():
		lineClass, opChar = "diff-changed", "~"
	}

	reqNum, bindNum := "", ""
	if line.ReqLineNum > 0 {
		reqNum = fmt.Sprintf("%d", line.ReqLineNum)
	}
	if line.BindLineNum > 0 {
		bindNum = fmt.Sprintf("%d", line.BindLineNum)
	}

	content := html.EscapeString(line.Text)
	if line.Changed() {
		content = renderInline(line.InlineDiffs)
	}

	fmt.Fprintf(builder,
		"<div class=\"line %s\"><span class=\"line-num orig-num\">%s</span><span class=\"line-num mod-num\">%s</span><span class=\"line-op\">%s</span><span class=\"line-content\">%s</span></div>",
		lineClass, reqNum, bindNum, opChar, content,
	)
}

func renderInline(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		text := html.EscapeString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString("<ins>" + text + "</ins>")
		case diffmatchpatch.DiffDelete:
			b.WriteString("<del>" + text + "</del>")
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

// BuildBindingDiffHtml returns the complete page comparing requested with
// granted shortcuts. contextLines limits the unchanged lines shown around
// each difference.
func BuildBindingDiffHtml(requested []shortcut.Request, bound []shortcut.Bound, contextLines int) string {
	cmp := diffutil.CompareBindings(requested, bound)
	rendered := renderBindingDiffHtml(diffutil.Context(cmp.Lines, contextLines))

	htmlContent := `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Binding Differences</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            margin: 15px;
            background-color: #f8f9fa;
            color: #212529;
            line-height: 1.5;
        }
        h1, h2 {
            border-bottom: 1px solid #dee2e6;
            padding-bottom: 8px;
            color: #0d6efd; /* Bootstrap blue */
            margin-top: 20px;
            margin-bottom: 15px;
        }
        pre.summary {
            background-color: #e9ecef;
            border: 1px solid #ced4da;
            padding: 10px 15px;
            overflow-x: auto;
            white-space: pre-wrap;
            word-wrap: break-word;
            font-family: SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace;
            font-size: 0.875em;
            line-height: 1.5;
            border-radius: 4px;
            margin-bottom: 20px;
        }
        pre.diff-output {
            font-family: SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace;
            font-size: 0.9em;
            line-height: 1.4; /* Adjust line height for pre */
            border: 1px solid #dee2e6;
            background-color: #fff;
            padding: 10px;
            border-radius: 4px;
            overflow-x: auto; /* Add horizontal scroll if needed */
            white-space: pre; /* Important for unified diff */
        }
        .line {
            display: flex; /* Arrange spans horizontally */
            min-height: 1.4em; /* Ensure lines have height even if empty */
        }
        .line-num {
            display: inline-block;
            width: 35px; /* Width for line numbers */
            padding-right: 10px;
            text-align: right;
            color: #6c757d; /* Grey */
            user-select: none; /* Prevent selecting line numbers */
            flex-shrink: 0; /* Don't shrink line number columns */
        }
        .line-op {
             display: inline-block;
             width: 15px; /* Width for +/- indicator */
             text-align: center;
             color: #6c757d;
             user-select: none;
             font-weight: bold;
             flex-shrink: 0;
             margin-right: 10px;
        }
        .line-content {
            display: inline-block;
            white-space: pre-wrap; /* Allow content wrapping */
            word-break: break-all; /* Break long words if needed */
            flex-grow: 1; /* Allow content to take remaining space */
        }

        /* Line type specific styling */
        .line.diff-insert { background-color: #e6ffed; }
        .line.diff-insert .line-op { color: #198754; } /* Green op */
        .line.diff-insert .line-content { color: #198754; } /* Green text */

        .line.diff-delete { background-color: #ffeef0; }
        .line.diff-delete .line-op { color: #dc3545; } /* Red op */
        .line.diff-delete .line-content { color: #dc3545; text-decoration: line-through; } /* Red text */

        .line.diff-equal .line-content { color: #495057; } /* Dark grey */
        .line.diff-changed { background-color: #fff8e1; }
        .line.diff-changed .line-op { color: #b26a00; }
        ins { background-color: #c8f7d4; text-decoration: none; }
        del { background-color: #ffd7dc; }

        .line.foldable {
            background-color: #e9ecef;
            justify-content: center; /* Center the "..." */
            color: #6c757d;
            font-style: italic;
            min-height: 1.8em;
            align-items: center;
        }
        .line.foldable .line-num, .line.foldable .line-op {
             display: none; /* Hide numbers/op on folded line */
        }
         .line.foldable .line-content{
            text-align: center;
            flex-grow: 1; /* Make sure content takes full width */
        }
    </style>
</head>
<body>
    <h1>Requested vs. Granted Shortcuts</h1>
    <h2>Summary</h2>
    <pre class="summary">%s</pre>
    <h2>Detailed Diff</h2>
    %s
</body>
</html>
`
	return fmt.Sprintf(htmlContent, html.EscapeString(cmp.Summary), rendered)
}

// ShowBindingDiff writes the comparison page to a temporary file and opens
// it in the default browser. The file is removed after a minute.
func ShowBindingDiff(requested []shortcut.Request, bound []shortcut.Bound, contextLines int) {
	log.Println("Generating binding diff view...")
	fullHtml := BuildBindingDiffHtml(requested, bound, contextLines)

	tmpFile, err := os.CreateTemp("", "bindingdiff-*.html")
	if err != nil {
		log.Printf("Error creating temp file for diff view: %v", err)
		ShowAdminNotification(LevelWarn, "Diff View Error", fmt.Sprintf("Could not create temporary file. Error: %v", err))
		return
	}
	if _, err := tmpFile.WriteString(fullHtml); err != nil {
		tmpFile.Close()
		log.Printf("Error writing to temp file: %v", err)
		ShowAdminNotification(LevelWarn, "Diff View Error", fmt.Sprintf("Could not write the comparison. Error: %v", err))
		if errRem := os.Remove(tmpFile.Name()); errRem != nil && !os.IsNotExist(errRem) {
			log.Printf("Error removing temporary file after write error: %s, %v", tmpFile.Name(), errRem)
		}
		return
	}
	if err := tmpFile.Close(); err != nil {
		log.Printf("Error closing temp file after write: %v", err)
	}

	absPath, err := filepath.Abs(tmpFile.Name())
	if err != nil {
		log.Printf("Warning: Could not get absolute path for temp file '%s': %v. Using original.", tmpFile.Name(), err)
		absPath = tmpFile.Name()
	}
	log.Printf("Diff view saved to: %s", absPath)
	if err := OpenFileInDefaultApp(absPath); err != nil {
		log.Printf("Error opening diff view in browser: %v", err)
		ShowAdminNotification(LevelWarn, "Diff View Error",
			fmt.Sprintf("Could not open the comparison in a browser. File saved at: %s. Error: %v", absPath, err))
	}

	time.AfterFunc(time.Minute, func() {
		if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Error deleting temporary diff file %s: %v", absPath, err)
		}
	})
}
