package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

type progressReporter struct {
	out     io.Writer
	enabled bool
	label   string
	total   int
	start   time.Time
	spinner int
	lastLen int
}

// newProgressReporter writes a single-line spinner to stderr, only when
// stderr is a terminal and JSON output was not requested.
func newProgressReporter(label string, total int, asJSON bool) *progressReporter {
	fd := os.Stderr.Fd()
	enabled := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && !asJSON
	return &progressReporter{
		out:     os.Stderr,
		enabled: enabled,
		label:   label,
		total:   total,
		start:   time.Now(),
	}
}

func (r *progressReporter) Update(item string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	item = strings.TrimSpace(item)
	if len(item) > 88 {
		item = "..." + item[len(item)-85:]
	}

	status := fmt.Sprintf("%s %s %d %s", frame, r.label, count, item)
	if r.total > 0 {
		status = fmt.Sprintf("%s %s %d/%d %s", frame, r.label, count, r.total, item)
	}
	r.printStatus(status)
}

func (r *progressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d in %s)", r.label, count, elapsed))
	fmt.Fprintln(r.out)
}

func (r *progressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}
