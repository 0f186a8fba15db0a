package output

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"poddigest/internal/storage"
)

type Formatter struct {
	out io.Writer
	err io.Writer
}

// NewFormatter creates a new output formatter
func NewFormatter() *Formatter {
	return &Formatter{
		out: os.Stdout,
		err: os.Stderr,
	}
}

// NewFormatterWithWriters creates a formatter with custom output writers for testability
func NewFormatterWithWriters(out, errW io.Writer) *Formatter {
	return &Formatter{
		out: out,
		err: errW,
	}
}

// Info outputs a plain progress line
func (f *Formatter) Info(format string, args ...interface{}) {
	fmt.Fprintf(f.out, format+"\n", args...)
}

// ItemOK outputs a per-item success line
func (f *Formatter) ItemOK(format string, args ...interface{}) {
	fmt.Fprintf(f.out, "  ✓ "+format+"\n", args...)
}

// ItemFail outputs a per-item failure line
func (f *Formatter) ItemFail(format string, args ...interface{}) {
	fmt.Fprintf(f.out, "  ✗ "+format+"\n", args...)
}

// Error outputs an error message to stderr
func (f *Formatter) Error(format string, args ...interface{}) {
	fmt.Fprintf(f.err, format+"\n", args...)
}

// Warning outputs a warning message to stderr
func (f *Formatter) Warning(format string, args ...interface{}) {
	fmt.Fprintf(f.err, "Warning: "+format+"\n", args...)
}

// StatusTable renders episode counts per pipeline status.
func (f *Formatter) StatusTable(counts map[storage.Status]int) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Status", "Episodes"})

	total := 0
	for _, status := range []storage.Status{storage.StatusDownloaded, storage.StatusTranscribed, storage.StatusProcessed} {
		t.AppendRow(table.Row{string(status), counts[status]})
		total += counts[status]
	}
	t.AppendFooter(table.Row{"total", total})
	t.Render()
}

// FetchRow is one feed's outcome in the fetch table.
type FetchRow struct {
	Podcast     string
	NewEpisodes int
	Err         error
}

// FetchTable renders per-feed fetch results.
func (f *Formatter) FetchTable(rows []FetchRow) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Podcast", "New Episodes", "Result"})

	total := 0
	for _, row := range rows {
		result := "ok"
		if row.Err != nil {
			result = row.Err.Error()
		}
		t.AppendRow(table.Row{row.Podcast, row.NewEpisodes, result})
		total += row.NewEpisodes
	}
	t.AppendFooter(table.Row{"total", total, ""})
	t.Render()
}
