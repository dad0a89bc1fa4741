// Package planner turns a lineup sequence into a timed substitution plan.
// See spec.md §4.2.
package planner

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/lineup"
)

// Params bundles the inputs the interval computation needs beyond the
// lineup sequence itself.
type Params struct {
	Duration     int // segment length D, seconds
	Swaps        int // s, swaps per change
	MinInterval  int // MIN_ACCEPTABLE_SUB_INTERVAL
	EndBuffer    int // END_BUFFER
}

// Build converts a lineup sequence into a plan over a segment of duration
// Params.Duration. Returns an empty plan when the lineup sequence is too
// short or no interval satisfies the constraints.
func Build(lineups []lineup.Lineup, p Params) models.Plan {
	L := len(lineups)
	if L <= 1 {
		return models.Plan{}
	}

	E := L - 1
	I0 := p.Duration / L

	var interval int
	switch {
	case I0 < p.MinInterval:
		a := p.Duration - p.EndBuffer
		if a < p.MinInterval {
			return models.Plan{}
		}
		ePrime := a / p.MinInterval
		if ePrime == 0 {
			return models.Plan{}
		}
		if ePrime < E {
			E = ePrime
			interval = p.Duration / (E + 1)
		} else {
			interval = p.MinInterval
		}
	default:
		interval = I0
	}

	if interval < p.MinInterval {
		if p.Duration >= p.MinInterval+p.EndBuffer {
			interval = p.MinInterval
		} else {
			return models.Plan{}
		}
	}

	usable := lineups[:E+1]
	events := make([]models.RotationEvent, 0, E)
	for i := 1; i <= E; i++ {
		t := i * interval
		if t > p.Duration-p.EndBuffer {
			break
		}
		off, on := lineupDiff(usable[i-1], usable[i], p.Swaps)
		if len(off) == 0 {
			continue
		}
		events = append(events, models.RotationEvent{
			Time: t,
			Off:  off,
			On:   on,
		})
	}

	plan := models.Plan{Events: events}
	return applyEndGameEquity(plan, usable, p)
}

// lineupDiff computes off = prev \ next (order preserved from prev) and
// on = next \ prev (order preserved from next), truncated to at most
// `swaps` entries each.
func lineupDiff(prev, next lineup.Lineup, swaps int) ([]models.PlayerID, []models.PlayerID) {
	inNext := make(map[models.PlayerID]bool, len(next))
	for _, p := range next {
		inNext[p] = true
	}
	inPrev := make(map[models.PlayerID]bool, len(prev))
	for _, p := range prev {
		inPrev[p] = true
	}

	off := make([]models.PlayerID, 0)
	for _, p := range prev {
		if !inNext[p] {
			off = append(off, p)
		}
	}
	on := make([]models.PlayerID, 0)
	for _, p := range next {
		if !inPrev[p] {
			on = append(on, p)
		}
	}

	n := minInt(len(off), len(on))
	n = minInt(n, swaps)
	return off[:n], on[:n]
}

// simulate projects field_seconds for every rotatable player from t=0 to
// Params.Duration given an initial lineup and an ordered event sequence.
func simulate(initial lineup.Lineup, roster []models.PlayerID, events []models.RotationEvent, duration int) map[models.PlayerID]int {
	field := make(map[models.PlayerID]bool, len(initial))
	for _, p := range initial {
		field[p] = true
	}
	totals := make(map[models.PlayerID]int, len(roster))
	for _, p := range roster {
		totals[p] = 0
	}

	cursor := 0
	apply := func(upTo int) {
		delta := upTo - cursor
		if delta <= 0 {
			return
		}
		for p := range field {
			totals[p] += delta
		}
		cursor = upTo
	}

	for _, ev := range events {
		apply(ev.Time)
		for _, p := range ev.Off {
			delete(field, p)
		}
		for _, p := range ev.On {
			field[p] = true
		}
	}
	apply(duration)
	return totals
}

// applyEndGameEquity re-evaluates the final event against a forced-rest and
// a no-sub variant, adopting whichever most improves end-of-segment
// variance over the original by at least 5 seconds. See spec.md §4.2.
func applyEndGameEquity(plan models.Plan, lineups []lineup.Lineup, p Params) models.Plan {
	if len(plan.Events) == 0 {
		return plan
	}

	roster := make([]models.PlayerID, 0, len(lineups[0]))
	seen := map[models.PlayerID]bool{}
	for _, l := range lineups {
		for _, id := range l {
			if !seen[id] {
				seen[id] = true
				roster = append(roster, id)
			}
		}
	}

	finalIdx := len(plan.Events) - 1
	finalEvent := plan.Events[finalIdx]
	before := plan.Events[:finalIdx]

	variance := func(evs []models.RotationEvent) float64 {
		totals := simulate(lineups[0], roster, evs, p.Duration)
		values := make([]float64, 0, len(totals))
		for _, v := range totals {
			values = append(values, float64(v))
		}
		maxV, _ := stats.Max(values)
		minV, _ := stats.Min(values)
		return maxV - minV
	}

	original := append(append([]models.RotationEvent(nil), before...), finalEvent)
	varOriginal := variance(original)

	noSub := append([]models.RotationEvent(nil), before...)
	varNoSub := variance(noSub)

	// Forced-rest variant: off = s field players with the highest current
	// totals at the event time; on = s bench players with the lowest.
	preEventTotals := simulate(lineups[0], roster, before, finalEvent.Time)
	fieldAtEvent := fieldAt(lineups[0], before)

	type ranked struct {
		id    models.PlayerID
		total int
		idx   int
	}
	rosterIdx := make(map[models.PlayerID]int, len(roster))
	for i, id := range roster {
		rosterIdx[id] = i
	}

	var fieldCandidates, benchCandidates []ranked
	for _, id := range roster {
		r := ranked{id: id, total: preEventTotals[id], idx: rosterIdx[id]}
		if fieldAtEvent[id] {
			fieldCandidates = append(fieldCandidates, r)
		} else {
			benchCandidates = append(benchCandidates, r)
		}
	}
	sort.Slice(fieldCandidates, func(a, b int) bool {
		if fieldCandidates[a].total != fieldCandidates[b].total {
			return fieldCandidates[a].total > fieldCandidates[b].total
		}
		return fieldCandidates[a].idx < fieldCandidates[b].idx
	})
	sort.Slice(benchCandidates, func(a, b int) bool {
		if benchCandidates[a].total != benchCandidates[b].total {
			return benchCandidates[a].total < benchCandidates[b].total
		}
		return benchCandidates[a].idx < benchCandidates[b].idx
	})

	swaps := minInt(len(finalEvent.Off), minInt(len(fieldCandidates), len(benchCandidates)))
	altEvent := finalEvent
	if swaps > 0 {
		off := make([]models.PlayerID, swaps)
		on := make([]models.PlayerID, swaps)
		for i := 0; i < swaps; i++ {
			off[i] = fieldCandidates[i].id
			on[i] = benchCandidates[i].id
		}
		altEvent = models.RotationEvent{Time: finalEvent.Time, Off: off, On: on, Reason: finalEvent.Reason}
	}
	alt := append(append([]models.RotationEvent(nil), before...), altEvent)
	varAlt := variance(alt)

	best := original
	bestVar := varOriginal
	if varNoSub <= bestVar-5 {
		best = noSub
		bestVar = varNoSub
	}
	if varAlt <= bestVar-5 {
		best = alt
		bestVar = varAlt
	}

	return models.Plan{Events: best}
}

func fieldAt(initial lineup.Lineup, events []models.RotationEvent) map[models.PlayerID]bool {
	field := make(map[models.PlayerID]bool, len(initial))
	for _, p := range initial {
		field[p] = true
	}
	for _, ev := range events {
		for _, p := range ev.Off {
			delete(field, p)
		}
		for _, p := range ev.On {
			field[p] = true
		}
	}
	return field
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
