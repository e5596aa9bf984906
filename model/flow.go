package model

import (
	"math"
	"time"
)

// RawRecord is one parsed accounting line: a process total or a single
// connection attributed to a process. Byte counters are cumulative since
// source start, never per-interval.
type RawRecord struct {
	Name     string   // process name without the PID suffix
	PID      int      // -1 if the source did not report one
	Ifaces   []string // interfaces seen on this record, first-seen order
	State    string   // connection state, empty if not reported
	Local    string   // local endpoint, empty for process totals
	Remote   string   // remote endpoint, empty for process totals
	BytesIn  uint64   // cumulative bytes received
	BytesOut uint64   // cumulative bytes sent
	Remotes  int      // remote endpoints folded into this record
	Sockets  int      // sockets folded into this record
}

// FlowKey identifies a flow group for one grouping mode. PID and Remote are
// only populated by the mode that keys on them; PID -1 means "not part of
// the key" (0 is a real PID for kernel processes).
type FlowKey struct {
	Name   string
	PID    int
	Remote string
}

// GroupMode selects how records are folded into groups.
type GroupMode string

const (
	GroupProcess GroupMode = "process"
	GroupRemote  GroupMode = "remote"
)

func (m GroupMode) Valid() bool {
	return m == GroupProcess || m == GroupRemote
}

// KeyFor maps a record to its group key under the given mode.
func KeyFor(mode GroupMode, r RawRecord) FlowKey {
	if mode == GroupRemote {
		return FlowKey{Name: r.Name, PID: -1, Remote: r.Remote}
	}
	return FlowKey{Name: r.Name, PID: r.PID}
}

// CounterSample is the last observed cumulative counter pair for a key.
type CounterSample struct {
	In  uint64
	Out uint64
	T   time.Time
}

// Group is one ranked output row: a flow key with its computed rates and
// the display attributes folded from the records that produced it.
type Group struct {
	Key    FlowKey
	Label  string  // display label (process cell or process name)
	InKBs  float64 // KB/s received over the last interval
	OutKBs float64 // KB/s sent over the last interval

	PrimaryIface string // best interface across the group's records
	ExtraIfaces  int    // distinct real interfaces beyond the primary
	State        string // single distinct state, "-" when mixed or absent
	Local        string // first-seen local endpoint
	Remote       string // representative remote endpoint
	Remotes      int    // distinct remote endpoints folded in
	Sockets      int    // sockets folded in
}

// Delta is the absolute IN/OUT imbalance in KB/s.
func (g Group) Delta() float64 { return math.Abs(g.InKBs - g.OutKBs) }

// Sum is the combined IN+OUT rate in KB/s.
func (g Group) Sum() float64 { return g.InKBs + g.OutKBs }

// SortKey selects the ranking column.
type SortKey int

const (
	SortDelta SortKey = iota // default
	SortIn
	SortOut
)

func (k SortKey) String() string {
	switch k {
	case SortIn:
		return "IN"
	case SortOut:
		return "OUT"
	}
	return "Δ = |IN-OUT|"
}

// Value extracts the sort column from a group.
func (k SortKey) Value(g Group) float64 {
	switch k {
	case SortIn:
		return g.InKBs
	case SortOut:
		return g.OutKBs
	}
	return g.Delta()
}

// MetricCol selects which derived column is displayed and thresholded.
type MetricCol int

const (
	MetricDelta MetricCol = iota // Δ = |IN-OUT|
	MetricSum                    // SUM = IN+OUT
)

// Toggle flips between the two derived columns.
func (c MetricCol) Toggle() MetricCol {
	if c == MetricDelta {
		return MetricSum
	}
	return MetricDelta
}

// Header is the column heading for the metric.
func (c MetricCol) Header() string {
	if c == MetricSum {
		return "SUM KB/s"
	}
	return "Δ KB/s"
}

// Legend is the long form shown in the status area.
func (c MetricCol) Legend() string {
	if c == MetricSum {
		return "SUM = IN+OUT"
	}
	return "Δ = |IN-OUT|"
}

// Value extracts the metric column from a group.
func (c MetricCol) Value(g Group) float64 {
	if c == MetricSum {
		return g.Sum()
	}
	return g.Delta()
}

// RawSnapshot is one fetch result before parsing: the raw source lines and
// the time they were captured. It is also the record/replay wire format,
// one JSON object per line.
type RawSnapshot struct {
	At    time.Time `json:"ts"`
	Lines []string  `json:"lines"`
}

// Frame is the output of one engine tick.
type Frame struct {
	At      time.Time
	Groups  []Group // unordered; rank before rendering
	Records int     // records parsed this tick
	Skipped int     // malformed lines dropped this tick
}
