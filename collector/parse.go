package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"flowtop/model"
	"flowtop/util"
)

// schema maps the columns flowtop reads to their indexes in the snapshot
// header. Only the entity and byte-counter columns are mandatory; the rest
// are -1 when the source does not report them.
type schema struct {
	entity   int
	bytesIn  int
	bytesOut int
	iface    int
	state    int
	remotes  int
	sockets  int
}

// parseHeader validates the first CSV record and locates the columns.
// nettop leaves the entity column unnamed, so column 1 counts as the
// entity when its heading is empty or "process".
func parseHeader(cells []string) (schema, error) {
	sc := schema{entity: -1, bytesIn: -1, bytesOut: -1, iface: -1, state: -1, remotes: -1, sockets: -1}
	for i, c := range cells {
		name := strings.ToLower(strings.TrimSpace(c))
		if i == 1 && (name == "" || name == "process") {
			sc.entity = i
			continue
		}
		switch name {
		case "process":
			sc.entity = i
		case "bytes_in":
			sc.bytesIn = i
		case "bytes_out":
			sc.bytesOut = i
		case "interface":
			sc.iface = i
		case "state":
			sc.state = i
		case "remotes":
			sc.remotes = i
		case "sockets":
			sc.sockets = i
		}
	}
	switch {
	case sc.entity < 0:
		return sc, fmt.Errorf("snapshot header has no process column")
	case sc.bytesIn < 0 || sc.bytesOut < 0:
		return sc, fmt.Errorf("snapshot header has no byte counter columns")
	}
	return sc, nil
}

// isConnRow reports whether the entity cell names a connection rather than
// a process. Connections either carry a local<->remote pair or start with
// a protocol token; matching the whole first token keeps process names
// like "tcpdump.123" out.
func isConnRow(entity string) bool {
	if strings.Contains(entity, "<->") {
		return true
	}
	tok := entity
	if i := strings.IndexAny(tok, " \t"); i >= 0 {
		tok = tok[:i]
	}
	switch strings.ToLower(tok) {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6":
		return true
	}
	return false
}

// procCtx carries the process row context that following connection rows
// inherit.
type procCtx struct {
	name  string
	pid   int
	total *model.RawRecord // process totals, nil when its counters were bad
	conns bool             // a connection row consumed this context
}

// ParseSnapshot turns raw snapshot lines into records. Lines with missing
// or malformed byte counters are dropped and counted in skipped, as are
// connection rows that appear before any process row. A header without the
// required columns makes the whole snapshot unusable and returns an error.
func ParseSnapshot(lines []string) (records []model.RawRecord, skipped int, err error) {
	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var sc schema
	headerSeen := false
	var cur *procCtx

	flush := func() {
		if cur != nil && cur.total != nil && !cur.conns {
			records = append(records, *cur.total)
		}
	}

	for {
		row, rerr := r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if headerSeen {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("snapshot header unreadable: %w", rerr)
		}
		if !headerSeen {
			sc, err = parseHeader(row)
			if err != nil {
				return nil, 0, err
			}
			headerSeen = true
			continue
		}

		entity := strings.TrimSpace(cellAt(row, sc.entity))
		if entity == "" {
			skipped++
			continue
		}

		if !isConnRow(entity) {
			flush()
			name, pid := util.SplitNamePID(entity)
			cur = &procCtx{name: name, pid: pid}
			in, out, cerr := counters(row, sc)
			if cerr != nil {
				skipped++
				continue
			}
			total := model.RawRecord{Name: name, PID: pid, BytesIn: in, BytesOut: out}
			if iface := strings.TrimSpace(cellAt(row, sc.iface)); iface != "" {
				total.Ifaces = []string{iface}
			}
			total.State = strings.TrimSpace(cellAt(row, sc.state))
			cur.total = &total
			continue
		}

		if cur == nil {
			skipped++
			continue
		}
		in, out, cerr := counters(row, sc)
		if cerr != nil {
			skipped++
			continue
		}
		cur.conns = true

		local, remote := splitEndpoints(entity)
		rec := model.RawRecord{
			Name:     cur.name,
			PID:      cur.pid,
			State:    strings.TrimSpace(cellAt(row, sc.state)),
			Local:    local,
			Remote:   remote,
			BytesIn:  in,
			BytesOut: out,
			Remotes:  countAt(row, sc.remotes, 1),
			Sockets:  countAt(row, sc.sockets, 1),
		}
		if iface := strings.TrimSpace(cellAt(row, sc.iface)); iface != "" {
			rec.Ifaces = []string{iface}
		}
		records = append(records, rec)
	}
	if !headerSeen {
		return nil, 0, fmt.Errorf("snapshot is empty")
	}
	flush()

	return records, skipped, nil
}

// splitEndpoints splits a connection cell on "<->". Cells without the
// separator are all remote, which matches sources that only report the
// far end.
func splitEndpoints(entity string) (local, remote string) {
	if i := strings.Index(entity, "<->"); i >= 0 {
		return strings.TrimSpace(entity[:i]), strings.TrimSpace(entity[i+3:])
	}
	return "", strings.TrimSpace(entity)
}

// counters parses both byte cells strictly. Empty, negative or
// non-numeric counters invalidate the line.
func counters(row []string, sc schema) (uint64, uint64, error) {
	in, err := strconv.ParseUint(strings.TrimSpace(cellAt(row, sc.bytesIn)), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	out, err := strconv.ParseUint(strings.TrimSpace(cellAt(row, sc.bytesOut)), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return in, out, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// countAt reads an optional fold-count column, keeping def when the
// column is absent or unparseable.
func countAt(row []string, i, def int) int {
	s := strings.TrimSpace(cellAt(row, i))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
