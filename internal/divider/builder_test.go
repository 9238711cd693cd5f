package divider_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/khebert/koinonia/internal/divider"
	"github.com/stretchr/testify/require"
)

// roster builds n present members with the given role/gender pattern
// cycling over the provided attribute slices.
func roster(n int, roles []divider.Role, genders []string) []divider.Member {
	members := make([]divider.Member, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, divider.Member{
			ID:          fmt.Sprintf("m%d", i),
			Role:        roles[i%len(roles)],
			Gender:      genders[i%len(genders)],
			FaithStatus: []string{"baptized", "seeker"}[i%2],
			IsPresent:   true,
		})
	}
	return members
}

func seededConfig(seed int64) divider.Config {
	cfg := divider.DefaultConfig()
	cfg.Rand = rand.New(rand.NewSource(seed))
	return cfg
}

func requireExactCoverage(t *testing.T, members []divider.Member, p divider.Partition) {
	t.Helper()
	want := map[string]bool{}
	for _, m := range members {
		if m.IsPresent {
			want[m.ID] = true
		}
	}
	got := map[string]bool{}
	for _, g := range p {
		for _, m := range g.Members {
			require.False(t, got[m.ID], "member %s appears in more than one group", m.ID)
			got[m.ID] = true
			require.True(t, want[m.ID], "member %s is not a present input member", m.ID)
		}
	}
	require.Len(t, got, len(want), "every present member must be assigned")
}

func TestBuildCoversEveryPresentMemberExactly(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		members := roster(23, []divider.Role{
			divider.RoleFacilitator, divider.RoleRegular, divider.RoleRegular,
			divider.RoleCounselor, divider.RoleRegular,
		}, []string{"M", "F"})
		// A couple of absentees must be filtered out.
		members[3].IsPresent = false
		members[17].IsPresent = false

		p, err := seededConfig(seed).Build(members)
		require.NoError(t, err, "seed %d", seed)
		requireExactCoverage(t, members, p)
	}
}

func TestBuildHonorsMinimumGroupSize(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		members := roster(18, []divider.Role{
			divider.RoleFacilitator, divider.RoleRegular, divider.RoleRegular,
		}, []string{"M", "F"})

		p, err := seededConfig(seed).Build(members)
		require.NoError(t, err)
		for _, g := range p {
			require.GreaterOrEqual(t, g.Size(), 4)
		}
	}
}

func TestBuildTwoGroupsWithLeadersScenario(t *testing.T) {
	// 2 facilitators + 1 counselor + 9 regulars at target size 6: two
	// groups, each led, each sized within [4, 8].
	members := []divider.Member{
		{ID: "f1", Role: divider.RoleFacilitator, Gender: "M", IsPresent: true},
		{ID: "f2", Role: divider.RoleFacilitator, Gender: "F", IsPresent: true},
		{ID: "c1", Role: divider.RoleCounselor, Gender: "F", IsPresent: true},
	}
	for i := 0; i < 9; i++ {
		members = append(members, divider.Member{
			ID: fmt.Sprintf("r%d", i), Role: divider.RoleRegular,
			Gender: []string{"M", "F"}[i%2], IsPresent: true,
		})
	}

	cfg := seededConfig(42)
	cfg.TargetSize = 6
	p, err := cfg.Build(members)
	require.NoError(t, err)
	require.Len(t, p, 2)
	for _, g := range p {
		require.True(t, g.HasLeader(), "every group needs a facilitator or counselor")
		require.GreaterOrEqual(t, g.Size(), 4)
		require.LessOrEqual(t, g.Size(), 8)
	}
	requireExactCoverage(t, members, p)
}

func TestBuildNoMembersPresent(t *testing.T) {
	_, err := seededConfig(1).Build(nil)
	require.ErrorIs(t, err, divider.ErrInsufficientMembers)

	absent := roster(8, []divider.Role{divider.RoleFacilitator, divider.RoleRegular}, []string{"M", "F"})
	for i := range absent {
		absent[i].IsPresent = false
	}
	_, err = seededConfig(1).Build(absent)
	require.ErrorIs(t, err, divider.ErrInsufficientMembers)
}

func TestBuildNoLeadersPresent(t *testing.T) {
	members := roster(7, []divider.Role{divider.RoleRegular}, []string{"M", "F"})

	_, err := seededConfig(1).Build(members)
	require.ErrorIs(t, err, divider.ErrNoLeaders)

	// With the leader policy off the same roster partitions fine.
	cfg := seededConfig(1)
	cfg.RequireLeader = false
	p, err := cfg.Build(members)
	require.NoError(t, err)
	requireExactCoverage(t, members, p)
}

func TestBuildSeedsPrepAttendeesAcrossGroups(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		members := roster(16, []divider.Role{
			divider.RoleFacilitator, divider.RoleRegular, divider.RoleRegular, divider.RoleRegular,
		}, []string{"M", "F"})
		// Four prep attendees for at most ceil(16/7)=3 groups.
		for i := 0; i < 4; i++ {
			members[i*4].PrepAttended = true
		}

		p, err := seededConfig(seed).Build(members)
		require.NoError(t, err)
		for _, g := range p {
			require.GreaterOrEqual(t, g.PrepCount(), 1,
				"prep attendees must be spread so each group has one when the population allows")
		}
	}
}

func TestBuildClustersGraduates(t *testing.T) {
	members := roster(14, []divider.Role{
		divider.RoleFacilitator, divider.RoleRegular, divider.RoleRegular,
		divider.RoleCounselor, divider.RoleRegular, divider.RoleRegular, divider.RoleRegular,
	}, []string{"M", "F"})
	// Five graduates, all regular members: they fit one graduate group.
	gradIDs := map[string]bool{}
	count := 0
	for i := range members {
		if members[i].Role == divider.RoleRegular && count < 5 {
			members[i].IsGraduated = true
			members[i].EducationStatus = divider.Graduated
			gradIDs[members[i].ID] = true
			count++
		}
	}

	p, err := seededConfig(7).Build(members)
	require.NoError(t, err)

	// All graduates must share one group.
	var home *divider.Group
	for i := range p {
		for _, m := range p[i].Members {
			if gradIDs[m.ID] {
				if home == nil {
					home = &p[i]
				}
				require.True(t, home.Contains(m.ID), "graduates must be clustered together")
			}
		}
	}
	require.NotNil(t, home)
}

func TestBuildFewGraduatesJoinGeneralPool(t *testing.T) {
	members := roster(12, []divider.Role{
		divider.RoleFacilitator, divider.RoleRegular, divider.RoleRegular,
	}, []string{"M", "F"})
	// Two graduates: below the floor of 4, so no dedicated group forms.
	members[1].IsGraduated = true
	members[4].IsGraduated = true

	p, err := seededConfig(3).Build(members)
	require.NoError(t, err)
	requireExactCoverage(t, members, p)
	for _, g := range p {
		require.GreaterOrEqual(t, g.Size(), 4)
	}
}

func TestBuildKeepsConflictingMembersApart(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		members := roster(16, []divider.Role{
			divider.RoleFacilitator, divider.RoleRegular, divider.RoleRegular, divider.RoleRegular,
		}, []string{"M", "F"})

		cfg := seededConfig(seed)
		cfg.KeepApart = [][2]string{{"m1", "m2"}}
		p, err := cfg.Build(members)
		require.NoError(t, err)
		require.False(t, p.SameGroup("m1", "m2"),
			"seed %d: conflicting members must not land in the same group", seed)
	}
}

func TestBuildOversizePolicy(t *testing.T) {
	// 20 members, a single leader: leader coverage caps the partition at
	// one group, which busts the hard cap of TargetSize+1.
	members := roster(20, []divider.Role{divider.RoleRegular}, []string{"M", "F"})
	members[0].Role = divider.RoleFacilitator

	cfg := seededConfig(5)
	_, err := cfg.Build(members)
	require.ErrorIs(t, err, divider.ErrConstraintUnsatisfiable)

	cfg = seededConfig(5)
	cfg.AllowOversize = true
	p, err := cfg.Build(members)
	require.NoError(t, err)
	require.Len(t, p, 1)
	requireExactCoverage(t, members, p)
}

func TestBuildDeterministicGivenSeed(t *testing.T) {
	members := roster(19, []divider.Role{
		divider.RoleFacilitator, divider.RoleRegular, divider.RoleCounselor, divider.RoleRegular,
	}, []string{"M", "F"})

	// Repeated rebuilds catch any ordering left to map iteration: a single
	// ULP of score jitter flips placement tie-breaks.
	p1, err := seededConfig(99).Build(members)
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		p2, err := seededConfig(99).Build(members)
		require.NoError(t, err)
		require.Equal(t, p1, p2, "rebuild %d diverged from the first partition", i)
	}
}

func TestParseRole(t *testing.T) {
	require.Equal(t, divider.RoleFacilitator, divider.ParseRole("Facilitator"))
	require.Equal(t, divider.RoleCounselor, divider.ParseRole(" counselor "))
	require.Equal(t, divider.RoleRegular, divider.ParseRole("none"))
	require.Equal(t, divider.RoleRegular, divider.ParseRole("regular"))
	require.Equal(t, divider.RoleRegular, divider.ParseRole("anything-else"))
}
