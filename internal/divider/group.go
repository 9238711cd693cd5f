package divider

// Group is one small discussion group. Member order carries no meaning.
type Group struct {
	Members []Member
}

// Size returns the number of members in the group.
func (g *Group) Size() int { return len(g.Members) }

// LeaderCount returns how many facilitators and counselors the group has.
func (g *Group) LeaderCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Role.IsLeader() {
			n++
		}
	}
	return n
}

// HasLeader reports whether at least one member is a facilitator or counselor.
func (g *Group) HasLeader() bool { return g.LeaderCount() > 0 }

// FacilitatorCount returns how many facilitators the group has.
func (g *Group) FacilitatorCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Role == RoleFacilitator {
			n++
		}
	}
	return n
}

// CounselorCount returns how many counselors the group has.
func (g *Group) CounselorCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Role == RoleCounselor {
			n++
		}
	}
	return n
}

// PrepCount returns how many members attended the preparatory session.
func (g *Group) PrepCount() int {
	n := 0
	for _, m := range g.Members {
		if m.PrepAttended {
			n++
		}
	}
	return n
}

// GraduateCount returns how many members are graduated.
func (g *Group) GraduateCount() int {
	n := 0
	for _, m := range g.Members {
		if m.IsGraduated {
			n++
		}
	}
	return n
}

// Contains reports whether the group holds the member with the given ID.
func (g *Group) Contains(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// genderImbalance is |maleFraction - 0.5| for the dominant-axis gender.
// The balancer minimizes the sum of this over all groups. Any two-valued
// gender coding works: the fraction is computed against the first gender
// label seen across the partition, so the metric is symmetric.
func (g *Group) genderImbalance(refGender string) float64 {
	if len(g.Members) == 0 {
		return 0
	}
	n := 0
	for _, m := range g.Members {
		if m.Gender == refGender {
			n++
		}
	}
	f := float64(n) / float64(len(g.Members))
	if f < 0.5 {
		return 0.5 - f
	}
	return f - 0.5
}

// Partition is a full division of the present members into disjoint,
// exhaustive groups.
type Partition []Group

// Clone returns a deep copy of the partition. Groups own their member
// slices, so mutating the clone never touches the original.
func (p Partition) Clone() Partition {
	out := make(Partition, len(p))
	for i, g := range p {
		members := make([]Member, len(g.Members))
		copy(members, g.Members)
		out[i] = Group{Members: members}
	}
	return out
}

// TotalMembers returns the member count across all groups.
func (p Partition) TotalMembers() int {
	n := 0
	for i := range p {
		n += len(p[i].Members)
	}
	return n
}

// SameGroup reports whether the two members are currently placed in the
// same group. Members missing from the partition never share a group.
func (p Partition) SameGroup(id1, id2 string) bool {
	for i := range p {
		if p[i].Contains(id1) && p[i].Contains(id2) {
			return true
		}
	}
	return false
}

// idCounts returns the multiset of member IDs in the partition.
func (p Partition) idCounts() map[string]int {
	counts := make(map[string]int, p.TotalMembers())
	for i := range p {
		for _, m := range p[i].Members {
			counts[m.ID]++
		}
	}
	return counts
}

// sameMembers reports whether the partition holds exactly the given
// multiset of member IDs: nobody lost, nobody duplicated.
func (p Partition) sameMembers(want map[string]int) bool {
	got := p.idCounts()
	if len(got) != len(want) {
		return false
	}
	for id, n := range want {
		if got[id] != n {
			return false
		}
	}
	return true
}
