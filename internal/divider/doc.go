// Package divider partitions the members present at a meeting into
// balanced small discussion groups.
//
// The package is pure computation: it consumes flat Member records and a
// handful of tuning knobs, and produces a Partition (a list of Groups).
// It knows nothing about HTTP, Mongo, or templates; the web layer maps
// stored documents to Members before calling in, and renders the result
// afterwards.
//
// Three cooperating pieces:
//
//   - Score computes a scalar fitness for a group: Shannon diversity of
//     the (gender, faith status, role) mix, minus quadratic penalties for
//     oversizing and for deviating from the partition-wide size, prep and
//     leader-density averages.
//   - Config.Build constructs an initial valid partition: prep attendees
//     are seeded first, then leaders, then graduated members are clustered
//     together, then everyone else fills the smallest groups, with Score
//     breaking placement ties.
//   - BalanceGender runs a bounded greedy local search that swaps
//     same-role members across groups to even out the gender split,
//     without ever losing or duplicating a member.
//
// Every call is stateless and safe for concurrent use as long as each
// caller passes its own member slice.
package divider
