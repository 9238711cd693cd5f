package divider_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/khebert/koinonia/internal/divider"
	"github.com/stretchr/testify/require"
)

func regular(id, gender string) divider.Member {
	return divider.Member{ID: id, Role: divider.RoleRegular, Gender: gender, IsPresent: true}
}

func idMultiset(p divider.Partition) map[string]int {
	counts := map[string]int{}
	for _, g := range p {
		for _, m := range g.Members {
			counts[m.ID]++
		}
	}
	return counts
}

func groupIDs(g divider.Group) map[string]bool {
	ids := map[string]bool{}
	for _, m := range g.Members {
		ids[m.ID] = true
	}
	return ids
}

func TestBalanceGenderReducesImbalance(t *testing.T) {
	// One all-male and one all-female group of regulars: two swaps reach a
	// perfect 2/2 split in each.
	p := divider.Partition{
		{Members: []divider.Member{regular("a1", "M"), regular("a2", "M"), regular("a3", "M"), regular("a4", "M")}},
		{Members: []divider.Member{regular("b1", "F"), regular("b2", "F"), regular("b3", "F"), regular("b4", "F")}},
	}

	out := divider.BalanceGender(p, 1000, 7)
	require.Equal(t, idMultiset(p), idMultiset(out))
	for _, g := range out {
		males := 0
		for _, m := range g.Members {
			if m.Gender == "M" {
				males++
			}
		}
		require.Equal(t, 2, males, "each group should end at a 2/2 split")
	}
}

func TestBalanceGenderNeverChangesTheMemberMultiset(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		var p divider.Partition
		id := 0
		for g := 0; g < 4; g++ {
			group := divider.Group{}
			for k := 0; k < 4+rng.Intn(4); k++ {
				m := regular(fmt.Sprintf("m%d", id), []string{"M", "F"}[rng.Intn(2)])
				m.PrepAttended = rng.Intn(2) == 0
				if rng.Intn(6) == 0 {
					m.Role = divider.RoleCounselor
				}
				group.Members = append(group.Members, m)
				id++
			}
			p = append(p, group)
		}

		before := idMultiset(p)
		out := divider.BalanceGender(p, 5000, 7)
		require.Equal(t, before, idMultiset(out), "seed %d", seed)
	}
}

func TestBalanceGenderAlreadyBalancedIsIdentity(t *testing.T) {
	p := divider.Partition{
		{Members: []divider.Member{regular("a1", "M"), regular("a2", "F"), regular("a3", "M"), regular("a4", "F")}},
		{Members: []divider.Member{regular("b1", "M"), regular("b2", "F"), regular("b3", "M"), regular("b4", "F")}},
	}

	out := divider.BalanceGender(p, 10000, 7)
	require.Len(t, out, len(p))
	for i := range p {
		require.Equal(t, groupIDs(p[i]), groupIDs(out[i]),
			"a perfectly balanced partition must come back unchanged")
	}
}

func TestBalanceGenderRequiresExactRoleMatch(t *testing.T) {
	// The only cross-gender pairs straddle roles, so nothing may move.
	p := divider.Partition{
		{Members: []divider.Member{regular("a1", "M"), regular("a2", "M"),
			{ID: "af", Role: divider.RoleFacilitator, Gender: "M", IsPresent: true}}},
		{Members: []divider.Member{
			{ID: "b1", Role: divider.RoleCounselor, Gender: "F", IsPresent: true},
			{ID: "b2", Role: divider.RoleCounselor, Gender: "F", IsPresent: true},
			{ID: "bf", Role: divider.RoleFacilitator, Gender: "M", IsPresent: true}}},
	}

	out := divider.BalanceGender(p, 1000, 7)
	for i := range p {
		require.Equal(t, groupIDs(p[i]), groupIDs(out[i]))
	}
}

func TestBalanceGenderExcludesGraduates(t *testing.T) {
	grad := func(id, gender string) divider.Member {
		m := regular(id, gender)
		m.IsGraduated = true
		return m
	}
	p := divider.Partition{
		{Members: []divider.Member{grad("a1", "M"), grad("a2", "M"), regular("a3", "M")}},
		{Members: []divider.Member{grad("b1", "F"), grad("b2", "F"), regular("b3", "M")}},
	}

	out := divider.BalanceGender(p, 1000, 7)
	// The graduates cannot move and the two regulars share a gender, so
	// the partition is stuck as-is.
	for i := range p {
		require.Equal(t, groupIDs(p[i]), groupIDs(out[i]))
	}
}

func TestBalanceGenderRequiresMatchingPrepFlag(t *testing.T) {
	prep := func(id, gender string) divider.Member {
		m := regular(id, gender)
		m.PrepAttended = true
		return m
	}
	p := divider.Partition{
		{Members: []divider.Member{prep("a1", "M"), prep("a2", "M")}},
		{Members: []divider.Member{regular("b1", "F"), regular("b2", "F")}},
	}

	out := divider.BalanceGender(p, 1000, 7)
	for i := range p {
		require.Equal(t, groupIDs(p[i]), groupIDs(out[i]))
	}
}

func TestBalanceGenderHonorsKeepApart(t *testing.T) {
	// Swapping a1 into group B would join it with b2: that swap must be
	// rejected, while the a2/b1 swap remains available.
	p := divider.Partition{
		{Members: []divider.Member{regular("a1", "M"), regular("a2", "M"), regular("a3", "M"), regular("a4", "M")}},
		{Members: []divider.Member{regular("b1", "F"), regular("b2", "F"), regular("b3", "F"), regular("b4", "F")}},
	}

	out := divider.BalanceGenderKeepApart(p, 1000, [][2]string{{"a1", "b2"}})
	require.Equal(t, idMultiset(p), idMultiset(out))
	require.False(t, out.SameGroup("a1", "b2"),
		"keep-apart pair must not end up in the same group")
}

func TestBalanceGenderZeroIterationsIsIdentity(t *testing.T) {
	p := divider.Partition{
		{Members: []divider.Member{regular("a1", "M")}},
		{Members: []divider.Member{regular("b1", "F")}},
	}
	out := divider.BalanceGender(p, 0, 7)
	require.Equal(t, idMultiset(p), idMultiset(out))
}
