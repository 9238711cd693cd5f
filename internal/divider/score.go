package divider

import (
	"math"
	"sort"
)

// Weights tunes the penalty terms of the diversity score. The zero value
// is not useful; start from DefaultWeights.
type Weights struct {
	// Oversize scales the quadratic penalty for exceeding targetSize+1.
	Oversize float64
	// SizeBalance scales the penalty for deviating from the mean group size.
	SizeBalance float64
	// PrepBalance scales the penalty for deviating from the mean number of
	// prep attendees per group.
	PrepBalance float64
	// LeaderBalance scales the size-weighted penalty for deviating from the
	// partition-wide leader ratio.
	LeaderBalance float64
}

// DefaultWeights are the tuned production weights.
func DefaultWeights() Weights {
	return Weights{
		Oversize:      0.5,
		SizeBalance:   0.3,
		PrepBalance:   0.4,
		LeaderBalance: 0.6,
	}
}

// Score computes the diversity fitness of g with DefaultWeights.
// See Weights.Score.
func Score(g Group, all []Group, targetSize int) float64 {
	return DefaultWeights().Score(g, all, targetSize)
}

// Score computes a scalar fitness for a group; higher is better and the
// result may be negative. The base term is the Shannon entropy of the
// (gender, faith status, role) label mix, which rewards within-group
// heterogeneity. From it the function subtracts:
//
//   - an oversize penalty, quadratic in how far the group grew past
//     targetSize+1;
//   - with all supplied, quadratic penalties for deviating from the
//     partition-wide mean group size and mean prep-attendee count, and a
//     size-weighted quadratic penalty for deviating from the ideal
//     leader ratio (total leaders / total members).
//
// The function is pure: identical inputs yield bit-identical results.
func (w Weights) Score(g Group, all []Group, targetSize int) float64 {
	if len(g.Members) == 0 {
		return 0.0
	}

	score := labelEntropy(g.Members)

	if over := len(g.Members) - (targetSize + 1); over > 0 {
		score -= w.Oversize * float64(over*over)
	}

	if len(all) == 0 {
		return score
	}

	totalMembers := 0
	totalPrep := 0
	totalLeaders := 0
	for i := range all {
		totalMembers += len(all[i].Members)
		totalPrep += all[i].PrepCount()
		totalLeaders += all[i].LeaderCount()
	}
	if totalMembers == 0 {
		return score
	}
	n := float64(len(all))

	meanSize := float64(totalMembers) / n
	sizeDev := float64(len(g.Members)) - meanSize
	score -= w.SizeBalance * sizeDev * sizeDev

	meanPrep := float64(totalPrep) / n
	prepDev := float64(g.PrepCount()) - meanPrep
	score -= w.PrepBalance * prepDev * prepDev

	idealRatio := float64(totalLeaders) / float64(totalMembers)
	groupRatio := float64(g.LeaderCount()) / float64(len(g.Members))
	ratioDev := groupRatio - idealRatio
	score -= w.LeaderBalance * float64(len(g.Members)) * ratioDev * ratioDev

	return score
}

// labelEntropy is the Shannon entropy of the composite
// gender|faith|role labels: -sum(p*ln(p)) over distinct labels.
// The sum runs over sorted labels so float accumulation order is fixed
// and identical inputs give bit-identical results.
func labelEntropy(members []Member) float64 {
	counts := make(map[string]int, len(members))
	for _, m := range members {
		counts[m.Gender+"|"+m.FaithStatus+"|"+string(m.Role)]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	total := float64(len(members))
	entropy := 0.0
	for _, label := range labels {
		p := float64(counts[label]) / total
		entropy -= p * math.Log(p)
	}
	return entropy
}
