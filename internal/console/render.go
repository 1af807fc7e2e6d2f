package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"bookstore-admin/internal/core"
)

// EmptyState is the single row shown for an empty table.
const EmptyState = "No data"

// Notifier prints operator-facing messages, one per line.
type Notifier struct {
	W io.Writer
}

func (n Notifier) Notify(level core.Level, msg string) {
	if level == core.LevelError {
		fmt.Fprintln(n.W, "error:", msg)
		return
	}
	fmt.Fprintln(n.W, msg)
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	if len(rows) == 0 {
		fmt.Fprintln(tw, EmptyState)
	}
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func sortMarker(s core.SortState, key string) string {
	if s.Key != key {
		return ""
	}
	if s.Direction == core.Desc {
		return " ▼"
	}
	return " ▲"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func gender(male bool) string {
	if male {
		return "male"
	}
	return "female"
}
