package divider

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Config holds the tuning knobs for partition construction. Cap values
// and constraint policies are deliberately configuration, not constants:
// they have shifted across deployments and callers need to override them.
type Config struct {
	// GroupCountHint suggests how many groups to form. Zero derives the
	// count from TargetSize. The hint is clamped so no group is ever
	// targeted below MinSize.
	GroupCountHint int

	// TargetSize is the ideal group size (soft cap). Groups may grow to
	// TargetSize+1 before the oversize penalty applies.
	TargetSize int

	// MinSize is the hard floor on group size in a successful partition.
	MinSize int

	// RequireLeader enforces at least one facilitator or counselor per
	// group. When set and no leader is present, Build fails with
	// ErrNoLeaders; the group count is also capped by the leader count so
	// coverage stays feasible.
	RequireLeader bool

	// AllowOversize lets groups grow past TargetSize+1 when there is no
	// other way to place every member. When false, running out of room
	// under the hard cap fails with ErrConstraintUnsatisfiable.
	AllowOversize bool

	// KeepApart lists pairs of member IDs that should not share a group.
	// The constraint is best-effort during placement and strictly honored
	// by the gender balancer's swap filter.
	KeepApart [][2]string

	// Weights tunes the diversity score used to break placement ties.
	// The zero value means DefaultWeights.
	Weights Weights

	// Rand supplies the randomness for shuffles and tie-breaking. Nil
	// means a time-seeded source; tests inject a fixed seed.
	Rand *rand.Rand
}

// DefaultConfig returns the production defaults: groups of 7, floor of
// 4, leader coverage required, hard cap enforced.
func DefaultConfig() Config {
	return Config{
		TargetSize:    7,
		MinSize:       4,
		RequireLeader: true,
		Weights:       DefaultWeights(),
	}
}

// Build partitions the present members into groups. Absent members are
// filtered out; every present member ends up in exactly one group, which
// is verified before returning.
//
// Constraint satisfaction order is fixed: prep attendees are seeded
// first (spread evenly), then leaders (facilitators to uncovered groups,
// counselors evenly, leftovers to the smallest groups), then graduated
// members are clustered into designated groups, then everyone remaining
// fills the smallest groups, with the diversity score breaking ties.
func (c Config) Build(members []Member) (Partition, error) {
	cfg := c.normalized()
	rng := cfg.Rand

	present := make([]Member, 0, len(members))
	for _, m := range members {
		if m.IsPresent {
			present = append(present, m)
		}
	}
	total := len(present)
	if total < cfg.MinSize {
		return nil, fmt.Errorf("%w: %d present, need at least %d",
			ErrInsufficientMembers, total, cfg.MinSize)
	}

	leaderCount := 0
	for _, m := range present {
		if m.Role.IsLeader() {
			leaderCount++
		}
	}
	if cfg.RequireLeader && leaderCount == 0 {
		return nil, fmt.Errorf("%w: %d members present", ErrNoLeaders, total)
	}

	numGroups := cfg.groupCount(total, leaderCount)

	b := &builder{
		cfg:      cfg,
		rng:      rng,
		groups:   make(Partition, numGroups),
		assigned: make(map[string]bool, total),
	}

	if err := b.seedPrepAttendees(present); err != nil {
		return nil, err
	}
	if err := b.seedLeaders(present); err != nil {
		return nil, err
	}
	if err := b.distributeRemainder(present); err != nil {
		return nil, err
	}

	if err := b.checkInvariants(present); err != nil {
		return nil, err
	}
	return b.groups, nil
}

// normalized fills in defaults for zero-valued fields.
func (c Config) normalized() Config {
	if c.TargetSize <= 0 {
		c.TargetSize = 7
	}
	if c.MinSize <= 0 {
		c.MinSize = 4
	}
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights()
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// groupCount derives the number of groups: ceil(total/target) or the
// caller's hint, clamped so the average group stays within [MinSize,
// total/2] and, when leader coverage is required, so every group can get
// a leader.
func (c Config) groupCount(total, leaders int) int {
	n := c.GroupCountHint
	if n <= 0 {
		n = (total + c.TargetSize - 1) / c.TargetSize
	}
	if max := total / 2; n > max {
		n = max
	}
	if max := total / c.MinSize; max >= 1 && n > max {
		n = max
	}
	if c.RequireLeader && leaders >= 1 && n > leaders {
		n = leaders
	}
	if n < 1 {
		n = 1
	}
	return n
}

type builder struct {
	cfg      Config
	rng      *rand.Rand
	groups   Partition
	assigned map[string]bool
}

// seedPrepAttendees spreads every prep attendee across the groups: each
// group gets the even minimum, and the remainder lands in randomly
// chosen distinct groups. Where the population allows, this leaves every
// group with at least one prep attendee.
func (b *builder) seedPrepAttendees(present []Member) error {
	preps := b.unassignedWhere(present, func(m Member) bool { return m.PrepAttended })
	b.shuffle(preps)

	n := len(b.groups)
	minPer := len(preps) / n
	idx := 0
	for gi := 0; gi < n; gi++ {
		for k := 0; k < minPer; k++ {
			b.assign(preps[idx], gi)
			idx++
		}
	}
	for _, gi := range b.rng.Perm(n)[:len(preps)%n] {
		b.assign(preps[idx], gi)
		idx++
	}
	return nil
}

// seedLeaders covers every leaderless group with a facilitator (falling
// back to a counselor when facilitators run out), then spreads the
// remaining counselors as evenly as possible, then drops leftover
// facilitators into the currently smallest groups.
func (b *builder) seedLeaders(present []Member) error {
	facs := b.unassignedWhere(present, func(m Member) bool { return m.Role == RoleFacilitator })
	couns := b.unassignedWhere(present, func(m Member) bool { return m.Role == RoleCounselor })
	b.shuffle(facs)
	b.shuffle(couns)

	// First pass: one leader for every group that has none yet.
	for _, gi := range b.rng.Perm(len(b.groups)) {
		if b.groups[gi].HasLeader() {
			continue
		}
		switch {
		case len(facs) > 0:
			b.assign(facs[0], gi)
			facs = facs[1:]
		case len(couns) > 0:
			b.assign(couns[0], gi)
			couns = couns[1:]
		}
	}

	// Counselors: even minimum first, then one at a time to the group
	// with the fewest counselors, recounting after each placement.
	n := len(b.groups)
	minPer := len(couns) / n
	idx := 0
	for gi := 0; gi < n; gi++ {
		for k := 0; k < minPer; k++ {
			b.assign(couns[idx], gi)
			idx++
		}
	}
	for ; idx < len(couns); idx++ {
		b.assign(couns[idx], b.pickGroup(func(g *Group) int { return g.CounselorCount() }))
	}

	// Leftover facilitators go to the smallest groups.
	for _, f := range facs {
		b.assign(f, b.pickGroup(func(g *Group) int { return g.Size() }))
	}

	// Repair pass: prep seeding can stack two leaders into one group and
	// leave another uncovered. Move a spare leader when that happens.
	for gi := range b.groups {
		if b.groups[gi].HasLeader() {
			continue
		}
		b.moveSpareLeader(gi)
	}
	return nil
}

// moveSpareLeader pulls one leader out of a group that has two or more
// and appends it to the group at dst. No-op when no group has a spare.
func (b *builder) moveSpareLeader(dst int) {
	for _, gi := range b.rng.Perm(len(b.groups)) {
		if gi == dst || b.groups[gi].LeaderCount() < 2 {
			continue
		}
		for mi, m := range b.groups[gi].Members {
			if !m.Role.IsLeader() {
				continue
			}
			b.groups[gi].Members = append(b.groups[gi].Members[:mi], b.groups[gi].Members[mi+1:]...)
			b.groups[dst].Members = append(b.groups[dst].Members, m)
			return
		}
	}
}

// distributeRemainder places everyone not yet assigned. Graduated
// members are clustered into designated graduate groups first; everyone
// else fills the smallest of the remaining groups, with the diversity
// score breaking size ties.
func (b *builder) distributeRemainder(present []Member) error {
	grads := b.unassignedWhere(present, func(m Member) bool { return m.IsGraduated })
	current := b.unassignedWhere(present, func(m Member) bool { return !m.IsGraduated })
	b.shuffle(grads)
	b.shuffle(current)

	gradTotal := 0
	for _, m := range present {
		if m.IsGraduated {
			gradTotal++
		}
	}
	if gradTotal < b.cfg.MinSize {
		// Too few graduates to sustain a group of their own; they join the
		// general pool instead.
		current = append(current, grads...)
		grads = nil
	}

	candidates := b.allGroupIndexes()
	if len(grads) > 0 {
		gradGroups := (gradTotal + b.cfg.TargetSize - 1) / b.cfg.TargetSize
		if gradGroups > len(b.groups) {
			gradGroups = len(b.groups)
		}

		// The groups that already accumulated the most graduates become
		// the designated graduate groups.
		order := b.allGroupIndexes()
		sort.SliceStable(order, func(i, j int) bool {
			return b.groups[order[i]].GraduateCount() > b.groups[order[j]].GraduateCount()
		})
		gradSet := order[:gradGroups]

		for _, m := range grads {
			if err := b.place(m, gradSet); err != nil {
				return err
			}
		}
		rest := order[gradGroups:]
		// A graduate group that still sits below the hard floor stays open
		// to non-graduates; the floor outranks the clustering preference.
		for _, gi := range gradSet {
			if b.groups[gi].Size() < b.cfg.MinSize {
				rest = append(rest, gi)
			}
		}
		if len(rest) > 0 {
			candidates = rest
		}
	}

	for _, m := range current {
		if err := b.place(m, candidates); err != nil {
			return err
		}
	}
	return nil
}

// place puts m into the best group among the candidate indexes: the
// smallest eligible group, with the diversity score breaking size ties.
// Groups holding a keep-apart partner of m are avoided when any other
// candidate remains.
func (b *builder) place(m Member, candidates []int) error {
	eligible := b.underCap(candidates, b.cfg.TargetSize)
	if len(eligible) == 0 {
		limit := b.cfg.TargetSize + 1
		if b.cfg.AllowOversize {
			limit = int(^uint(0) >> 1)
		}
		eligible = b.underCap(candidates, limit)
	}
	if len(eligible) == 0 {
		return fmt.Errorf("%w: no room left under the size cap of %d",
			ErrConstraintUnsatisfiable, b.cfg.TargetSize+1)
	}

	if filtered := b.withoutConflicts(eligible, m); len(filtered) > 0 {
		eligible = filtered
	}

	best := -1
	bestScore := 0.0
	for _, gi := range eligible {
		if best >= 0 {
			if b.groups[gi].Size() > b.groups[best].Size() {
				continue
			}
			if b.groups[gi].Size() == b.groups[best].Size() {
				if s := b.candidateScore(gi, m); s <= bestScore {
					continue
				}
			}
		}
		best = gi
		bestScore = b.candidateScore(gi, m)
	}
	b.assign(m, best)
	return nil
}

// candidateScore evaluates the partition-contextual diversity score of
// the group as it would look with m added.
func (b *builder) candidateScore(gi int, m Member) float64 {
	trial := Group{Members: append(append([]Member(nil), b.groups[gi].Members...), m)}
	return b.cfg.Weights.Score(trial, b.groups, b.cfg.TargetSize)
}

func (b *builder) underCap(candidates []int, limit int) []int {
	out := make([]int, 0, len(candidates))
	for _, gi := range candidates {
		if b.groups[gi].Size() < limit {
			out = append(out, gi)
		}
	}
	return out
}

// withoutConflicts drops candidate groups holding a keep-apart partner
// of m.
func (b *builder) withoutConflicts(candidates []int, m Member) []int {
	if len(b.cfg.KeepApart) == 0 {
		return candidates
	}
	partners := make([]string, 0, 2)
	for _, pair := range b.cfg.KeepApart {
		if pair[0] == m.ID {
			partners = append(partners, pair[1])
		}
		if pair[1] == m.ID {
			partners = append(partners, pair[0])
		}
	}
	if len(partners) == 0 {
		return candidates
	}
	out := make([]int, 0, len(candidates))
	for _, gi := range candidates {
		clear := true
		for _, id := range partners {
			if b.groups[gi].Contains(id) {
				clear = false
				break
			}
		}
		if clear {
			out = append(out, gi)
		}
	}
	return out
}

// pickGroup returns the index of the group minimizing the given
// statistic, ties broken randomly.
func (b *builder) pickGroup(stat func(*Group) int) int {
	best := -1
	for _, gi := range b.rng.Perm(len(b.groups)) {
		if best < 0 || stat(&b.groups[gi]) < stat(&b.groups[best]) {
			best = gi
		}
	}
	return best
}

func (b *builder) allGroupIndexes() []int {
	out := make([]int, len(b.groups))
	for i := range out {
		out[i] = i
	}
	return out
}

func (b *builder) assign(m Member, gi int) {
	b.groups[gi].Members = append(b.groups[gi].Members, m)
	b.assigned[m.ID] = true
}

func (b *builder) unassignedWhere(present []Member, keep func(Member) bool) []Member {
	out := make([]Member, 0, len(present))
	for _, m := range present {
		if !b.assigned[m.ID] && keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (b *builder) shuffle(members []Member) {
	b.rng.Shuffle(len(members), func(i, j int) {
		members[i], members[j] = members[j], members[i]
	})
}

// checkInvariants is the terminal check: exact coverage of the present
// set (no loss, no duplication) and the hard size floor.
func (b *builder) checkInvariants(present []Member) error {
	want := make(map[string]int, len(present))
	for _, m := range present {
		want[m.ID]++
	}
	if !b.groups.sameMembers(want) {
		return fmt.Errorf("%w: assignment does not cover the present members exactly",
			ErrConstraintUnsatisfiable)
	}
	for i := range b.groups {
		if b.groups[i].Size() < b.cfg.MinSize {
			return fmt.Errorf("%w: group of %d is below the minimum of %d",
				ErrConstraintUnsatisfiable, b.groups[i].Size(), b.cfg.MinSize)
		}
	}
	return nil
}
