// Package render holds the shared table formatting used by both the
// interactive view and batch output. Keeping row construction in one
// place is what guarantees the two modes show identical cells.
package render

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"flowtop/model"
)

// EmptyNotice is the row shown when a tick produced no groups.
const EmptyNotice = " (no traffic this interval)"

// KeysLine lists the interactive key bindings.
const KeysLine = " keys: [h] help  [i] sort IN  [o] sort OUT  [d] sort Δ  [m] toggle column (Δ↔SUM)  [t] change interval  [q] quit"

// HeaderInfo carries the per-run values shown above the table.
type HeaderInfo struct {
	At       time.Time
	CmdEcho  string
	TotalIn  uint64 // cumulative session bytes received
	TotalOut uint64 // cumulative session bytes sent
	PeakKBs  float64
}

// HeaderLines builds the status block. The status and legend lines are
// always present; the command echo, key bindings and session totals only
// appear while help is visible.
func HeaderLines(info HeaderInfo, sess *model.Session) []string {
	lines := []string{fmt.Sprintf(" flowtop  [%s]  interval=%.1fs  group=%s  threshold=%.1f KB/s",
		info.At.Format("2006-01-02T15:04:05"), sess.Interval.Seconds(), sess.Mode, sess.ThresholdKB)}
	if sess.ShowHelp {
		lines = append(lines,
			" cmd: "+info.CmdEcho,
			KeysLine,
			fmt.Sprintf(" session: in %s  out %s  peak %.1f KB/s",
				humanize.IBytes(info.TotalIn), humanize.IBytes(info.TotalOut), info.PeakKBs))
	}
	lines = append(lines, fmt.Sprintf(" column: %s   sorting by: %s", sess.Metric.Legend(), sess.Sort))
	return lines
}

// ColumnHeader is the fixed-width heading row above the table body.
func ColumnHeader(metric model.MetricCol) string {
	return fmt.Sprintf("%11s  %11s  %11s   %-30s  %-12s  %-12s  %s",
		"IN KB/s", "OUT KB/s", metric.Header(), "PROCESS", "IFACE(S)", "STATE", "CONNECTION")
}

// FormatRow renders one ranked group as a fixed-width table line.
func FormatRow(g model.Group, metric model.MetricCol, mode model.GroupMode) string {
	return fmt.Sprintf("%11.1f  %11.1f  %11.1f   %-30s  %-12s  %-12s  %s",
		g.InKBs, g.OutKBs, metric.Value(g), g.Label, ifaceCell(g), stateCell(g), ConnSummary(g, mode))
}

// Hot reports whether a group's metric meets or exceeds the highlight
// threshold. A zero threshold disables highlighting entirely.
func Hot(g model.Group, sess *model.Session) bool {
	return sess.ThresholdKB > 0 && sess.Metric.Value(g) >= sess.ThresholdKB
}

func ifaceCell(g model.Group) string {
	name := g.PrimaryIface
	if name == "" {
		name = "-"
	}
	if g.ExtraIfaces > 0 {
		return fmt.Sprintf("%s (+%d)", name, g.ExtraIfaces)
	}
	return name
}

func stateCell(g model.Group) string {
	if g.State == "" {
		return "-"
	}
	return g.State
}

// ConnSummary builds the CONNECTION column. In process mode that is the
// representative remote plus the fold counts; in remote mode the full
// endpoint pair plus the extra socket count.
func ConnSummary(g model.Group, mode model.GroupMode) string {
	if mode == model.GroupRemote {
		s := g.Remote
		if s == "" {
			s = "(no remote)"
		} else if g.Local != "" {
			s = g.Local + "<->" + s
		}
		if g.Sockets > 1 {
			s += fmt.Sprintf(" [+%d]", g.Sockets-1)
		}
		return s
	}

	s := g.Remote
	if s == "" {
		s = "(no remote)"
	}
	if g.Remotes > 1 || g.Sockets > 1 {
		s += fmt.Sprintf("  [+%d remotes, +%d sockets]", max(0, g.Remotes-1), max(0, g.Sockets-1))
	}
	return s
}
