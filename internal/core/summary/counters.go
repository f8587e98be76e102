package summary

import "sort"

// addCount adds delta to m[key]. Keys that reach zero or below are removed,
// so a counter map never stores zero contributions.
func addCount(m map[string]int, key string, delta int) {
	if delta == 0 {
		return
	}
	next := m[key] + delta
	if next <= 0 {
		delete(m, key)
		return
	}
	m[key] = next
}

// floorSub subtracts delta from v without going below zero.
func floorSub(v, delta int) int {
	if v-delta < 0 {
		return 0
	}
	return v - delta
}

// admitName records one more contribution of name and appends it to the bounded
// list when the name is new to the list and the list has room.
func admitName(list []string, contributors map[string]int, name string, limit int) []string {
	contributors[name]++
	if containsName(list, name) || len(list) >= limit {
		return list
	}
	return append(list, name)
}

// releaseName removes one contribution of name. When the name has no contributors
// left it leaves the list, and the freed slot is refilled from the remaining
// contributors in lexicographic order.
func releaseName(list []string, contributors map[string]int, name string, limit int) []string {
	if _, ok := contributors[name]; !ok {
		return list
	}
	addCount(contributors, name, -1)
	if _, still := contributors[name]; still {
		return list
	}

	out := make([]string, 0, len(list))
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	if len(out) >= limit || len(out) == len(contributors) {
		return out
	}

	candidates := make([]string, 0, len(contributors))
	for n := range contributors {
		if !containsName(out, n) {
			candidates = append(candidates, n)
		}
	}
	sort.Strings(candidates)
	for _, n := range candidates {
		if len(out) >= limit {
			break
		}
		out = append(out, n)
	}
	return out
}

// dominantName returns the non-empty key with the most contributions, ties
// broken by the smaller name, or "" when there is none. It depends only on the
// counts, so a fold and an incremental apply/retract history agree on it.
func dominantName(contributors map[string]int) string {
	best, bestCount := "", 0
	for name, n := range contributors {
		if name == "" || n <= 0 {
			continue
		}
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}

// seedCounts returns m, or for a document written before m was tracked, a map
// crediting every existing contribution to the stored value.
func seedCounts(m map[string]int, stored string, count int) map[string]int {
	if m != nil {
		return m
	}
	m = make(map[string]int)
	addCount(m, stored, count)
	return m
}

func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
