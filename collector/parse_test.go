package collector

import (
	"strings"
	"testing"
)

const sampleHeader = "time,,interface,state,bytes_in,bytes_out"

func TestParseSnapshotConnections(t *testing.T) {
	lines := []string{
		sampleHeader,
		"12:00:00,curl.512,,,1000,200",
		"12:00:00,tcp4 192.168.1.5:54321<->151.101.1.69:443,en0,Established,600,120",
		"12:00:00,tcp4 192.168.1.5:54322<->151.101.1.69:443,en0,Established,400,80",
		"12:00:00,mDNSResponder.201,,,50,60",
	}
	recs, skipped, err := ParseSnapshot(lines)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(recs) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(recs))
	}

	// The process total for curl is superseded by its connection rows.
	first := recs[0]
	if first.Name != "curl" || first.PID != 512 {
		t.Errorf("record 0 identity = %s.%d, want curl.512", first.Name, first.PID)
	}
	if first.BytesIn != 600 || first.BytesOut != 120 {
		t.Errorf("record 0 counters = %d/%d, want 600/120", first.BytesIn, first.BytesOut)
	}
	if first.Remote != "151.101.1.69:443" {
		t.Errorf("record 0 remote = %q", first.Remote)
	}
	if first.Local != "tcp4 192.168.1.5:54321" {
		t.Errorf("record 0 local = %q", first.Local)
	}
	if first.State != "Established" {
		t.Errorf("record 0 state = %q", first.State)
	}
	if len(first.Ifaces) != 1 || first.Ifaces[0] != "en0" {
		t.Errorf("record 0 ifaces = %v", first.Ifaces)
	}
	if first.Remotes != 1 || first.Sockets != 1 {
		t.Errorf("record 0 fold counts = %d/%d, want 1/1", first.Remotes, first.Sockets)
	}

	// mDNSResponder had no connection rows, so its totals survive.
	last := recs[2]
	if last.Name != "mDNSResponder" || last.PID != 201 {
		t.Errorf("record 2 identity = %s.%d, want mDNSResponder.201", last.Name, last.PID)
	}
	if last.BytesIn != 50 || last.BytesOut != 60 {
		t.Errorf("record 2 counters = %d/%d, want 50/60", last.BytesIn, last.BytesOut)
	}
	if last.Remote != "" || last.Remotes != 0 || last.Sockets != 0 {
		t.Errorf("record 2 should carry no connection fields: %+v", last)
	}
}

func TestParseSnapshotSkipsMalformed(t *testing.T) {
	lines := []string{
		sampleHeader,
		"12:00:00,tcp4 1.2.3.4:1<->5.6.7.8:2,en0,Established,10,10", // before any process row
		"12:00:00,badcounters.7,,,abc,10",
		"12:00:00,udp4 *:5353<->*:5353,en0,,5,5", // still attributed to badcounters
		"12:00:00,negative.8,,,100,100",
		"12:00:00,tcp4 9.9.9.9:1<->8.8.8.8:2,en0,Established,-3,4",
		"12:00:00,,,,1,1", // empty entity
	}
	recs, skipped, err := ParseSnapshot(lines)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if skipped != 4 {
		t.Errorf("skipped = %d, want 4", skipped)
	}
	if len(recs) != 2 {
		t.Fatalf("len(records) = %d, want 2: %+v", len(recs), recs)
	}
	if recs[0].Name != "badcounters" || recs[0].PID != 7 {
		t.Errorf("orphan-context record = %s.%d, want badcounters.7", recs[0].Name, recs[0].PID)
	}
	if recs[1].Name != "negative" {
		t.Errorf("record 1 = %q, want negative totals row", recs[1].Name)
	}
}

func TestParseSnapshotHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"empty snapshot", nil},
		{"missing counters", []string{"time,,interface,state", "12:00:00,curl.512,,"}},
		{"missing process column", []string{"time,bytes_in,bytes_out", "12:00:00,1,2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseSnapshot(tt.lines); err == nil {
				t.Errorf("ParseSnapshot() error = nil, want schema error")
			}
		})
	}
}

func TestParseSnapshotFoldColumns(t *testing.T) {
	lines := []string{
		"time,,interface,state,bytes_in,bytes_out,remotes,sockets",
		"12:00:00,Spotify.883,,,0,0,,",
		"12:00:00,tcp4 10.0.0.2:1000<->35.186.224.25:443,en0,Established,900,300,3,5",
	}
	recs, _, err := ParseSnapshot(lines)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	if recs[0].Remotes != 3 || recs[0].Sockets != 5 {
		t.Errorf("fold counts = %d/%d, want 3/5", recs[0].Remotes, recs[0].Sockets)
	}
}

func TestIsConnRow(t *testing.T) {
	tests := []struct {
		entity string
		want   bool
	}{
		{"tcp4 1.2.3.4:80<->5.6.7.8:443", true},
		{"udp6 [::1]:5353<->[ff02::fb]:5353", true},
		{"10.0.0.1:22<->10.0.0.2:51000", true},
		{"tcpdump.123", false},
		{"Spotify.883", false},
		{"udptunnel.9", false},
		{"TCP 1.2.3.4:80", true},
	}
	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			if got := isConnRow(tt.entity); got != tt.want {
				t.Errorf("isConnRow(%q) = %v, want %v", tt.entity, got, tt.want)
			}
		})
	}
}

func TestSplitEndpoints(t *testing.T) {
	local, remote := splitEndpoints("tcp4 192.168.1.5:54321<->151.101.1.69:443")
	if local != "tcp4 192.168.1.5:54321" || remote != "151.101.1.69:443" {
		t.Errorf("splitEndpoints() = (%q, %q)", local, remote)
	}
	local, remote = splitEndpoints("udp4 *:5353")
	if local != "" || remote != "udp4 *:5353" {
		t.Errorf("splitEndpoints(no separator) = (%q, %q)", local, remote)
	}
}

func TestParseSnapshotQuotedCells(t *testing.T) {
	lines := []string{
		sampleHeader,
		`12:00:00,"My App, Beta.42",,,500,100`,
	}
	recs, skipped, err := ParseSnapshot(lines)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if skipped != 0 || len(recs) != 1 {
		t.Fatalf("records/skipped = %d/%d, want 1/0", len(recs), skipped)
	}
	if recs[0].Name != "My App, Beta" || recs[0].PID != 42 {
		t.Errorf("quoted cell parsed as %s.%d", recs[0].Name, recs[0].PID)
	}
}

func TestParseSnapshotContextSurvivesBlank(t *testing.T) {
	raw := strings.Join([]string{
		sampleHeader,
		"12:00:00,ssh.77,,,10,10",
		"",
		"12:00:00,tcp4 10.0.0.2:22<->10.0.0.9:50000,en1,Established,8,9",
	}, "\n")
	recs, _, err := ParseSnapshot(strings.Split(raw, "\n"))
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "ssh" || recs[0].Remote != "10.0.0.9:50000" {
		t.Errorf("records = %+v, want one ssh connection", recs)
	}
}
