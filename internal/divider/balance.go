package divider

import "sort"

// stagnationLimit stops the search after this many consecutive
// iterations without an improving swap.
const stagnationLimit = 100

// imbalanceEpsilon guards float comparisons when deciding whether a
// swap strictly improves the partition.
const imbalanceEpsilon = 1e-9

// BalanceGender runs a bounded greedy local search that swaps eligible
// members between groups to even out the gender split. It never loses
// or duplicates a member: the best partition seen is returned only after
// an exact multiset check against the input, and on any inconsistency
// the input partition comes back unchanged. BalanceGender never fails.
//
// A swap of m1 (group A) and m2 (group B) is eligible when the two
// differ in gender, share the exact same role and prep-attendance flag,
// and neither is graduated; graduated members stay put so the upstream
// clustering decision survives. Swaps are scored with the reduced ratio
// metric sum(|maleFraction-0.5|) rather than the full diversity score:
// the hot loop evaluates thousands of candidates and only gender moves.
//
// The acceptance rule is greedy first-improvement with best-seen
// tracking and a stagnation cutoff, chosen over the earlier
// Metropolis-style annealing for its determinism given a fixed scan
// order; with same-role same-prep swaps the full objective barely moves,
// so the annealing's escape moves bought nothing.
//
// targetSize is accepted for call-contract symmetry with Config.Build;
// the ratio metric does not depend on it.
func BalanceGender(p Partition, maxIterations, targetSize int) Partition {
	return balanceGender(p, maxIterations, nil)
}

// BalanceGenderKeepApart is BalanceGender with separation pairs: swaps
// that would put a keep-apart pair into the same group are rejected.
func BalanceGenderKeepApart(p Partition, maxIterations int, keepApart [][2]string) Partition {
	return balanceGender(p, maxIterations, keepApart)
}

func balanceGender(p Partition, maxIterations int, keepApart [][2]string) Partition {
	if len(p) < 2 || maxIterations <= 0 {
		return p
	}

	want := p.idCounts()
	ref := referenceGender(p)

	work := p.Clone()
	best := work.Clone()
	bestTotal := totalImbalance(work, ref)

	stagnation := 0
	for iter := 0; iter < maxIterations; iter++ {
		if !applyBestSwap(work, ref, &bestTotal, keepApart) {
			stagnation++
			if stagnation > stagnationLimit {
				break
			}
			continue
		}
		stagnation = 0
		best = work.Clone()
	}

	if !best.sameMembers(want) {
		// Defensive: balancing is best-effort and must never corrupt the
		// partition.
		return p
	}
	return best
}

// applyBestSwap scans group pairs from most- to least-imbalanced and
// applies the first eligible swap that strictly improves the total
// imbalance. Reports whether a swap was applied.
func applyBestSwap(work Partition, ref string, bestTotal *float64, keepApart [][2]string) bool {
	order := make([]int, len(work))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return work[order[i]].genderImbalance(ref) > work[order[j]].genderImbalance(ref)
	})

	for oi := 0; oi < len(order); oi++ {
		for oj := oi + 1; oj < len(order); oj++ {
			a, b := order[oi], order[oj]
			for ai := range work[a].Members {
				for bi := range work[b].Members {
					if !eligibleSwap(work[a].Members[ai], work[b].Members[bi]) {
						continue
					}
					if violatesSeparation(work, a, b, ai, bi, keepApart) {
						continue
					}
					delta := swapDelta(work, ref, a, b, ai, bi)
					if delta >= -imbalanceEpsilon {
						continue
					}
					work[a].Members[ai], work[b].Members[bi] = work[b].Members[bi], work[a].Members[ai]
					*bestTotal += delta
					return true
				}
			}
		}
	}
	return false
}

// eligibleSwap is the hard filter on swap pairs: different gender, same
// role, same prep flag, neither graduated.
func eligibleSwap(m1, m2 Member) bool {
	return m1.Gender != m2.Gender &&
		m1.Role == m2.Role &&
		m1.PrepAttended == m2.PrepAttended &&
		!m1.IsGraduated && !m2.IsGraduated
}

// violatesSeparation reports whether swapping the two members would put
// a keep-apart pair into the same group.
func violatesSeparation(work Partition, a, b, ai, bi int, keepApart [][2]string) bool {
	if len(keepApart) == 0 {
		return false
	}
	m1, m2 := work[a].Members[ai], work[b].Members[bi]
	for _, pair := range keepApart {
		if landsWith(work[b], m1, m2.ID, pair) || landsWith(work[a], m2, m1.ID, pair) {
			return true
		}
	}
	return false
}

// landsWith reports whether moving arrival into dst (with departing
// leaving it) would join the given keep-apart pair.
func landsWith(dst Group, arrival Member, departingID string, pair [2]string) bool {
	var partner string
	switch arrival.ID {
	case pair[0]:
		partner = pair[1]
	case pair[1]:
		partner = pair[0]
	default:
		return false
	}
	if partner == departingID {
		return false
	}
	return dst.Contains(partner)
}

// swapDelta computes the change in total imbalance if the swap were
// applied. Only the two touched groups change, so the delta is local.
func swapDelta(work Partition, ref string, a, b, ai, bi int) float64 {
	before := work[a].genderImbalance(ref) + work[b].genderImbalance(ref)
	work[a].Members[ai], work[b].Members[bi] = work[b].Members[bi], work[a].Members[ai]
	after := work[a].genderImbalance(ref) + work[b].genderImbalance(ref)
	work[a].Members[ai], work[b].Members[bi] = work[b].Members[bi], work[a].Members[ai]
	return after - before
}

func totalImbalance(p Partition, ref string) float64 {
	total := 0.0
	for i := range p {
		total += p[i].genderImbalance(ref)
	}
	return total
}

// referenceGender picks the gender label the imbalance fractions are
// measured against. With two gender values the metric is symmetric, so
// the first label seen works for either.
func referenceGender(p Partition) string {
	for i := range p {
		for _, m := range p[i].Members {
			if m.Gender != "" {
				return m.Gender
			}
		}
	}
	return ""
}
