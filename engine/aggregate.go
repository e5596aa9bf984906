package engine

import (
	"strconv"
	"time"

	"flowtop/model"
	"flowtop/util"
)

// TickIO is the total bytes moved across all keys in one tick, derived
// from the same clamped differences that produce the displayed rates.
type TickIO struct {
	DeltaIn  uint64
	DeltaOut uint64
}

type bucket struct {
	recs   []model.RawRecord
	sumIn  uint64
	sumOut uint64
}

// Aggregate folds records into one group per flow key, differencing each
// key's summed counters against the store. First-seen keys report zero
// rates. Keys absent from this snapshot accrue a miss and are eventually
// pruned, so a later resurrection starts from scratch instead of
// differencing across the gap.
func Aggregate(store *CounterStore, mode model.GroupMode, recs []model.RawRecord, at time.Time) ([]model.Group, TickIO) {
	var order []model.FlowKey
	buckets := make(map[model.FlowKey]*bucket)
	for _, rec := range recs {
		key := model.KeyFor(mode, rec)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.recs = append(b.recs, rec)
		b.sumIn += rec.BytesIn
		b.sumOut += rec.BytesOut
	}

	var io TickIO
	groups := make([]model.Group, 0, len(order))
	seen := make(map[model.FlowKey]struct{}, len(order))
	for _, key := range order {
		b := buckets[key]
		sample := model.CounterSample{In: b.sumIn, Out: b.sumOut, T: at}
		prev, ok := store.Update(key, sample)

		var inKBs, outKBs float64
		if ok {
			dt := at.Sub(prev.T)
			inKBs = util.RateKBs(prev.In, sample.In, dt)
			outKBs = util.RateKBs(prev.Out, sample.Out, dt)
			io.DeltaIn += util.Delta(prev.In, sample.In)
			io.DeltaOut += util.Delta(prev.Out, sample.Out)
		}

		groups = append(groups, buildGroup(mode, key, b, inKBs, outKBs))
		seen[key] = struct{}{}
	}
	store.Sweep(seen)

	return groups, io
}

// buildGroup folds a bucket's records into the display attributes of one
// output row.
func buildGroup(mode model.GroupMode, key model.FlowKey, b *bucket, inKBs, outKBs float64) model.Group {
	primary, extraIfaces := pickIface(b.recs)

	var local, remote, state string
	states := 0
	remoteSeen := make(map[string]struct{})
	folded := 0
	sockets := 0
	for _, r := range b.recs {
		if r.State != "" && r.State != "-" && r.State != state {
			state = r.State
			states++
		}
		if r.Local != "" && local == "" {
			local = r.Local
		}
		if r.Remote != "" {
			if remote == "" {
				remote = r.Remote
			}
			remoteSeen[r.Remote] = struct{}{}
		}
		if r.Remotes > 1 {
			folded += r.Remotes - 1
		}
		sockets += r.Sockets
	}
	if states != 1 {
		state = "-"
	}

	return model.Group{
		Key:          key,
		Label:        groupLabel(mode, key),
		InKBs:        inKBs,
		OutKBs:       outKBs,
		PrimaryIface: primary,
		ExtraIfaces:  extraIfaces,
		State:        state,
		Local:        local,
		Remote:       remote,
		Remotes:      len(remoteSeen) + folded,
		Sockets:      sockets,
	}
}

func groupLabel(mode model.GroupMode, key model.FlowKey) string {
	if mode == model.GroupProcess && key.PID >= 0 {
		return key.Name + "." + strconv.Itoa(key.PID)
	}
	return key.Name
}
