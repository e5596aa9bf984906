package engine

import (
	"testing"
	"time"

	"flowtop/model"
)

var base = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func rec(name string, pid int, in, out uint64) model.RawRecord {
	return model.RawRecord{Name: name, PID: pid, BytesIn: in, BytesOut: out}
}

func connRec(name string, pid int, iface, state, remote string, in, out uint64) model.RawRecord {
	return model.RawRecord{
		Name: name, PID: pid,
		Ifaces: []string{iface}, State: state,
		Local: "l:" + remote, Remote: remote,
		BytesIn: in, BytesOut: out,
		Remotes: 1, Sockets: 1,
	}
}

func TestAggregateRateRoundTrip(t *testing.T) {
	store := NewCounterStore(5)

	first, _ := Aggregate(store, model.GroupProcess, []model.RawRecord{rec("curl", 1, 1000, 200)}, base)
	if len(first) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(first))
	}
	if first[0].InKBs != 0 || first[0].OutKBs != 0 {
		t.Errorf("first-seen rates = %v/%v, want 0/0", first[0].InKBs, first[0].OutKBs)
	}

	second, io := Aggregate(store, model.GroupProcess, []model.RawRecord{rec("curl", 1, 4000, 800)}, base.Add(3*time.Second))
	g := second[0]
	if g.InKBs != 3000.0/3/1024 {
		t.Errorf("InKBs = %v, want %v", g.InKBs, 3000.0/3/1024)
	}
	if g.OutKBs != 600.0/3/1024 {
		t.Errorf("OutKBs = %v, want %v", g.OutKBs, 600.0/3/1024)
	}
	if io.DeltaIn != 3000 || io.DeltaOut != 600 {
		t.Errorf("TickIO = %+v, want 3000/600", io)
	}
	if g.Label != "curl.1" {
		t.Errorf("Label = %q, want curl.1", g.Label)
	}
}

func TestAggregateCounterReset(t *testing.T) {
	store := NewCounterStore(5)
	Aggregate(store, model.GroupProcess, []model.RawRecord{rec("curl", 1, 9000, 9000)}, base)
	groups, io := Aggregate(store, model.GroupProcess, []model.RawRecord{rec("curl", 1, 100, 100)}, base.Add(time.Second))
	if groups[0].InKBs != 0 || groups[0].OutKBs != 0 {
		t.Errorf("rates after reset = %v/%v, want 0/0", groups[0].InKBs, groups[0].OutKBs)
	}
	if io.DeltaIn != 0 || io.DeltaOut != 0 {
		t.Errorf("TickIO after reset = %+v, want zero", io)
	}
}

func TestAggregateMergesSameKey(t *testing.T) {
	store := NewCounterStore(5)
	recs := []model.RawRecord{
		connRec("chrome", 42, "en0", "Established", "151.101.1.69:443", 600, 100),
		connRec("chrome", 42, "en0", "Established", "151.101.1.69:443", 400, 100),
	}
	Aggregate(store, model.GroupProcess, recs, base)

	recs2 := []model.RawRecord{
		connRec("chrome", 42, "en0", "Established", "151.101.1.69:443", 1100, 150),
		connRec("chrome", 42, "en0", "Established", "151.101.1.69:443", 900, 150),
	}
	groups, _ := Aggregate(store, model.GroupProcess, recs2, base.Add(time.Second))
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1 merged group", len(groups))
	}
	// 2000 - 1000 bytes in over one second.
	if got := groups[0].InKBs; got != 1000.0/1024 {
		t.Errorf("InKBs = %v, want %v", got, 1000.0/1024)
	}
	if groups[0].Sockets != 2 {
		t.Errorf("Sockets = %d, want 2", groups[0].Sockets)
	}
	if groups[0].Remotes != 1 {
		t.Errorf("Remotes = %d, want 1 distinct", groups[0].Remotes)
	}
}

func TestAggregateRemoteModeMergesAcrossPIDs(t *testing.T) {
	store := NewCounterStore(5)
	recs := []model.RawRecord{
		connRec("chrome", 42, "en0", "Established", "151.101.1.69:443", 100, 10),
		connRec("chrome", 43, "en0", "Established", "151.101.1.69:443", 200, 20),
		connRec("chrome", 42, "en0", "Established", "35.186.224.25:443", 50, 5),
	}
	groups, _ := Aggregate(store, model.GroupRemote, recs, base)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2 remote groups", len(groups))
	}
	if groups[0].Label != "chrome" {
		t.Errorf("Label = %q, want bare process name in remote mode", groups[0].Label)
	}
	if groups[0].Key.Remote != "151.101.1.69:443" || groups[0].Sockets != 2 {
		t.Errorf("group 0 = %+v, want both PIDs folded under one remote", groups[0])
	}
}

func TestAggregateAttributeFold(t *testing.T) {
	store := NewCounterStore(5)
	recs := []model.RawRecord{
		connRec("app", 7, "utun3", "Established", "10.8.0.1:443", 900, 900),
		connRec("app", 7, "en0", "Established", "151.101.1.69:443", 100, 100),
		connRec("app", 7, "en1", "TimeWait", "151.101.1.70:443", 50, 50),
	}
	groups, _ := Aggregate(store, model.GroupProcess, recs, base)
	g := groups[0]

	// en0 wins over the busier tunnel; en1 loses within the tier on volume.
	if g.PrimaryIface != "en0" {
		t.Errorf("PrimaryIface = %q, want en0", g.PrimaryIface)
	}
	if g.ExtraIfaces != 2 {
		t.Errorf("ExtraIfaces = %d, want 2", g.ExtraIfaces)
	}
	if g.State != "-" {
		t.Errorf("State = %q, want \"-\" for mixed states", g.State)
	}
	if g.Remote != "10.8.0.1:443" {
		t.Errorf("Remote = %q, want first-seen remote", g.Remote)
	}
	if g.Remotes != 3 || g.Sockets != 3 {
		t.Errorf("fold counts = %d/%d, want 3/3", g.Remotes, g.Sockets)
	}
}

func TestAggregateUniformStateKept(t *testing.T) {
	store := NewCounterStore(5)
	recs := []model.RawRecord{
		connRec("app", 7, "en0", "Established", "1.1.1.1:443", 10, 10),
		connRec("app", 7, "en0", "Established", "2.2.2.2:443", 10, 10),
	}
	groups, _ := Aggregate(store, model.GroupProcess, recs, base)
	if groups[0].State != "Established" {
		t.Errorf("State = %q, want Established", groups[0].State)
	}
}

func TestAggregateProcessTotalsOnly(t *testing.T) {
	store := NewCounterStore(5)
	groups, _ := Aggregate(store, model.GroupProcess, []model.RawRecord{rec("mDNSResponder", 201, 50, 60)}, base)
	g := groups[0]
	if g.PrimaryIface != "-" || g.Remote != "" || g.Remotes != 0 || g.Sockets != 0 {
		t.Errorf("totals-only group = %+v, want placeholder attributes", g)
	}
}

func TestAggregateEmptySnapshotAccruesMisses(t *testing.T) {
	store := NewCounterStore(1)
	Aggregate(store, model.GroupProcess, []model.RawRecord{rec("curl", 1, 100, 100)}, base)

	for i := 0; i < 2; i++ {
		groups, _ := Aggregate(store, model.GroupProcess, nil, base.Add(time.Duration(i+1)*time.Second))
		if len(groups) != 0 {
			t.Fatalf("len(groups) = %d for empty snapshot, want 0", len(groups))
		}
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d, want key pruned after misses", store.Len())
	}
}

func TestAggregateElapsedIsPerKey(t *testing.T) {
	store := NewCounterStore(5)
	Aggregate(store, model.GroupProcess, []model.RawRecord{rec("slow", 1, 0, 0)}, base)

	// "slow" skips a tick, so its next difference spans 4 seconds.
	Aggregate(store, model.GroupProcess, []model.RawRecord{rec("other", 2, 0, 0)}, base.Add(2*time.Second))
	groups, _ := Aggregate(store, model.GroupProcess, []model.RawRecord{rec("slow", 1, 4096, 0)}, base.Add(4*time.Second))
	if got := groups[0].InKBs; got != 1 {
		t.Errorf("InKBs = %v, want 1 (4096 bytes over 4s)", got)
	}
}
