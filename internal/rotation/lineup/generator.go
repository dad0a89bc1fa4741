// Package lineup builds the ordered sequence of fair lineups that the
// planner converts into a timed substitution plan. See spec.md §4.1.
package lineup

import (
	"sort"

	"github.com/benchbalancer/rotation-engine/internal/models"
)

// Lineup is one field composition in the sequence.
type Lineup []models.PlayerID

// precomputed is the closed set of (roster size, field size, swaps-per-
// change) triples for which a provably minimum-variance circular rotation
// is used directly instead of the general fair-rotation builder. Chosen to
// span the small, common roster sizes a grassroots team actually fields
// (bench of one or two, single-player swaps); spec.md §4.1 names the
// existence and count of such a table (15 configurations, (6,4,1) through
// (12,11,1)) without publishing its exact membership, so this is a
// reconstruction — see DESIGN.md.
var precomputed = map[[3]int]bool{
	{6, 4, 1}:  true,
	{6, 5, 1}:  true,
	{7, 5, 1}:  true,
	{7, 6, 1}:  true,
	{8, 6, 1}:  true,
	{8, 7, 1}:  true,
	{9, 6, 1}:  true,
	{9, 7, 1}:  true,
	{9, 8, 1}:  true,
	{10, 7, 1}: true,
	{10, 8, 1}: true,
	{10, 9, 1}: true,
	{11, 9, 1}: true,
	{11, 10, 1}: true,
	{12, 11, 1}: true,
}

// Generate produces the lineup sequence for a rotatable player set.
// Returns nil for degenerate inputs (s=0, n<=f, f<=0, or s exceeding the
// smaller of bench size and field size).
func Generate(roster []models.PlayerID, fieldSize, swaps int) []Lineup {
	n := len(roster)
	if swaps <= 0 || fieldSize <= 0 || n <= fieldSize {
		return nil
	}
	if swaps > minInt(n-fieldSize, fieldSize) {
		return nil
	}

	if precomputed[[3]int{n, fieldSize, swaps}] {
		return circularWindow(roster, fieldSize, swaps)
	}
	return fairRotationBuilder(roster, fieldSize, swaps)
}

// circularWindow treats the roster as a circle and slides a window of size
// fieldSize by `swaps` positions each step, for one full period. Every step
// changes exactly 2*swaps players by construction, and by the symmetry of
// a circulant window every roster position is covered by the same number
// of windows per period — minimum possible variance for the configuration.
func circularWindow(roster []models.PlayerID, fieldSize, swaps int) []Lineup {
	n := len(roster)
	period := n / gcd(n, swaps)

	lineups := make([]Lineup, 0, period)
	for i := 0; i < period; i++ {
		start := (i * swaps) % n
		l := make(Lineup, fieldSize)
		for j := 0; j < fieldSize; j++ {
			l[j] = roster[(start+j)%n]
		}
		lineups = append(lineups, l)
	}
	return lineups
}

// fairRotationBuilder implements the general-case algorithm: repeatedly
// take the next lineup by sorting every rotatable player by (appearances
// ascending, last-seen index descending, roster index ascending) and
// picking the first fieldSize. This can move more than `swaps` players
// between consecutive lineups when several players tie; the Plan Builder
// truncates off/on to `swaps` when turning lineups into events, so this is
// not corrected here.
func fairRotationBuilder(roster []models.PlayerID, fieldSize, swaps int) []Lineup {
	n := len(roster)

	type tracked struct {
		id          models.PlayerID
		rosterIdx   int
		appearances int
		lastSeen    int // lineup index of last appearance, -1 = never
	}

	players := make([]*tracked, n)
	for i, id := range roster {
		players[i] = &tracked{id: id, rosterIdx: i, lastSeen: -1}
	}

	rank := func(list []*tracked) {
		sort.SliceStable(list, func(a, b int) bool {
			pa, pb := list[a], list[b]
			if pa.appearances != pb.appearances {
				return pa.appearances < pb.appearances
			}
			if pa.lastSeen != pb.lastSeen {
				return pa.lastSeen > pb.lastSeen
			}
			return pa.rosterIdx < pb.rosterIdx
		})
	}

	pickNext := func(lineupIdx int) Lineup {
		ranked := append([]*tracked(nil), players...)
		rank(ranked)
		next := make(Lineup, fieldSize)
		for i := 0; i < fieldSize; i++ {
			next[i] = ranked[i].id
			ranked[i].appearances++
			ranked[i].lastSeen = lineupIdx
		}
		return next
	}

	balanced := func() bool {
		minA, maxA := players[0].appearances, players[0].appearances
		for _, p := range players {
			if p.appearances < minA {
				minA = p.appearances
			}
			if p.appearances > maxA {
				maxA = p.appearances
			}
			if p.appearances == 0 {
				return false
			}
		}
		return maxA-minA <= 1
	}

	lineups := []Lineup{pickNext(0)}

	maxIterations := n * 6
	for i := 1; i < maxIterations && !balanced(); i++ {
		lineups = append(lineups, pickNext(i))
	}

	return lineups
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
