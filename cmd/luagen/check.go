package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// checkFile compares the generated code with the file at path and reports
// it through diag when they differ. A missing file is stale.
func checkFile(diag *diagnostics, path, code string) (bool, error) {
	d, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read %q: %w", path, err)
	}
	current := string(d)
	if current == code {
		return false, nil
	}
	diag.Stale(path, lineDiff(diag, current, code))
	return true, nil
}

// lineDiff renders the line level changes from a to b, deleted lines
// prefixed with "-" and inserted ones with "+".
func lineDiff(diag *diagnostics, a, b string) string {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, diff := range diffs {
		var prefix string
		switch diff.Type {
		case diffpatch.DiffDelete:
			prefix = "-"
		case diffpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			line = prefix + strings.TrimSuffix(line, "\n")
			if diff.Type == diffpatch.DiffDelete {
				line = diag.del.Sprint(line)
			} else {
				line = diag.ins.Sprint(line)
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
