package engine

import (
	"strings"

	"flowtop/model"
)

// Interface tiers, best last. Physical links beat tunnels beat loopback;
// the placeholder only wins when a group saw nothing else.
const (
	tierPlaceholder = iota
	tierLoopback
	tierVirtual
	tierPhysical
)

var virtualPrefixes = []string{"utun", "tun", "tap", "gif", "stf", "awdl", "llw", "ipsec", "ppp", "wg"}

func ifaceTier(name string) int {
	switch {
	case name == "" || name == "-":
		return tierPlaceholder
	case strings.HasPrefix(name, "lo"):
		return tierLoopback
	}
	for _, p := range virtualPrefixes {
		if strings.HasPrefix(name, p) {
			return tierVirtual
		}
	}
	return tierPhysical
}

// pickIface selects the primary interface across a group's records and
// counts the distinct real interfaces beyond it. Within a tier the
// interface carried by the record with the most cumulative traffic wins;
// ties keep the first-seen one.
func pickIface(recs []model.RawRecord) (primary string, extra int) {
	primary = "-"
	bestTier := -1
	var bestVol uint64
	real := make(map[string]struct{})

	for _, r := range recs {
		vol := r.BytesIn + r.BytesOut
		for _, ifc := range r.Ifaces {
			if tier := ifaceTier(ifc); tier != tierPlaceholder {
				real[ifc] = struct{}{}
				if tier > bestTier || (tier == bestTier && vol > bestVol) {
					bestTier = tier
					bestVol = vol
					primary = ifc
				}
			}
		}
	}

	if extra = len(real) - 1; extra < 0 {
		extra = 0
	}
	return primary, extra
}
