package locator

import "sort"

func familyRank(family string) int {
	switch family {
	case "onion":
		return 1
	case "ipv6":
		return 2
	case "ipv4":
		return 3
	case "":
		return 4
	default:
		return 5
	}
}

// SelectEndpoints returns a copy of endpoints ordered by ascending
// priority (absent = 1000), then by family rank (onion preferred over
// ipv6 over ipv4 over unlabeled over anything else), then by original
// position for anything still tied.
func SelectEndpoints(endpoints []Endpoint) []Endpoint {
	out := append([]Endpoint(nil), endpoints...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].EffectivePriority(), out[j].EffectivePriority()
		if pi != pj {
			return pi < pj
		}
		return familyRank(out[i].Family) < familyRank(out[j].Family)
	})
	return out
}
