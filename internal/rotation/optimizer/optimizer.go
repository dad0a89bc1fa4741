// Package optimizer implements the deviation-aware, tick-coupled decision
// engine described in spec.md §4.3: it decides whether to substitute at a
// given instant, and can simulate a full forward plan from any state.
package optimizer

import (
	"errors"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/benchbalancer/rotation-engine/internal/models"
)

// ErrNotEnoughPlayers is returned when fewer than field_size players are
// available to fill the field at all.
var ErrNotEnoughPlayers = errors.New("optimizer: fewer than field_size players available")

// Tempo scales the variance goal used by the threshold decision.
type Tempo string

const (
	TempoBalanced     Tempo = "balanced"
	TempoAggressive   Tempo = "aggressive"
	TempoConservative Tempo = "conservative"
)

func varianceGoalFor(t Tempo) int {
	switch t {
	case TempoAggressive:
		return 45
	case TempoConservative:
		return 75
	default:
		return 60
	}
}

// Status is a tracked player's participation state during simulation.
type Status string

const (
	StatusOnField Status = "on_field"
	StatusOnBench Status = "on_bench"
	StatusRemoved Status = "removed"
)

// PlayerTrack is the per-player state the optimizer maintains while
// deciding and simulating, mirroring spec.md §4.3's tracked-state list.
type PlayerTrack struct {
	ID                models.PlayerID
	RosterIdx         int
	Status            Status
	TotalPlayed       int
	CurrentFieldStint int
	CurrentBenchStint int
	TotalBenched      int
}

// Targets are the dynamic, roster-size-dependent limits recomputed whenever
// the active roster changes.
type Targets struct {
	TargetPerPlayer float64
	IdealShifts     int
	MinSubGap       int
	MaxFieldStint   int
	MaxBenchStint   int
	VarianceGoal    int
}

// ComputeTargets derives Targets for the given active roster and config.
// gameLength and fieldSize are seconds/count; idealShiftsOverride of 0
// means "auto-choose".
func ComputeTargets(activeCount, fieldSize, gameLength, checkInterval, idealShiftsOverride int, tempo Tempo) Targets {
	if activeCount <= 0 {
		activeCount = fieldSize
	}
	targetPerPlayer := float64(gameLength) * float64(fieldSize) / float64(activeCount)
	benchDepth := activeCount - fieldSize

	threshold := 120
	if benchDepth <= 2 {
		threshold = 90
	}

	idealShifts := idealShiftsOverride
	if idealShifts <= 0 {
		idealShifts = 1
		for s := 6; s >= 1; s-- {
			if gameLength/s >= threshold {
				idealShifts = s
				break
			}
		}
	}

	minSubGap := gameLength / idealShifts
	minSubGap = clampInt(minSubGap, 60, minInt(420, gameLength/6))

	maxFieldStint := maxFloat(targetPerPlayer/float64(idealShifts), float64(2*checkInterval))
	maxFieldStint = maxFloat(maxFieldStint, 0.9*float64(minSubGap))

	targetBenchPerPlayer := float64(gameLength) * float64(benchDepth) / float64(activeCount)
	maxBenchStint := maxFloat(targetBenchPerPlayer/float64(idealShifts), float64(2*checkInterval))
	maxBenchStint = maxFloat(maxBenchStint, 0.9*float64(minSubGap))

	return Targets{
		TargetPerPlayer: targetPerPlayer,
		IdealShifts:     idealShifts,
		MinSubGap:       minSubGap,
		MaxFieldStint:   int(maxFieldStint),
		MaxBenchStint:   int(maxBenchStint),
		VarianceGoal:    varianceGoalFor(tempo),
	}
}

// dynamicVarianceThreshold widens the allowance early in the game and
// tightens it linearly to the variance goal by game end.
func dynamicVarianceThreshold(now, gameLength, varianceGoal int) float64 {
	maxEarlyVariance := float64(varianceGoal) * 3
	frac := 1 - float64(now)/float64(gameLength)
	if frac < 0 {
		frac = 0
	}
	return float64(varianceGoal) + (maxEarlyVariance-float64(varianceGoal))*frac
}

// Input bundles everything GeneratePlan/Decide need.
type Input struct {
	Now                      int
	GameLength               int
	FieldSize                int
	CheckInterval            int
	LookAheadWindow          int
	MinAcceptableSubInterval int
	Tempo                    Tempo
	IdealShiftsOverride      int
	Players                  []PlayerTrack
	LastSubTime              int
	HalftimeFired            bool
	HalftimeWindowHalfWidth  int // default 30s
}

// decision is one proposed swap plus bookkeeping needed to fold it back
// into the simulated tracked state.
type decision struct {
	off    []models.PlayerID
	on     []models.PlayerID
	reason models.Reason
}

// Decide evaluates the online decision function once, at in.Now, against
// in.Players. Returns nil if no swap should fire.
func Decide(in Input, targets Targets) *decision {
	active := activePlayers(in.Players)
	if len(active) < in.FieldSize {
		return nil
	}

	timeSinceLastSub := in.Now - in.LastSubTime
	pressure := subGapPressure(in, targets)
	effectiveGap := targets.MinSubGap
	if pressure > 0 {
		effectiveGap = int(float64(targets.MinSubGap) * (1 - 0.4*pressure))
	}

	halfWidth := in.HalftimeWindowHalfWidth
	if halfWidth <= 0 {
		halfWidth = 30
	}
	half := in.GameLength / 2
	inHalftimeWindow := in.Now >= half-halfWidth && in.Now <= half+halfWidth

	if inHalftimeWindow && !in.HalftimeFired {
		if d := halftimeRefresh(active, in.FieldSize); d != nil {
			return d
		}
	}

	if timeSinceLastSub < effectiveGap {
		return nil
	}

	field, bench := splitByStatus(active)

	lookAhead := in.LookAheadWindow
	if lookAhead <= 0 {
		lookAhead = 60
	}
	urgentOff, upcomingOff, proactiveOff := classifyOff(field, targets, lookAhead)
	urgentOn, upcomingOn, proactiveOn := classifyOn(bench, targets, lookAhead)

	if len(urgentOff) > 0 || len(urgentOn) > 0 {
		offOrder := append(append(append([]PlayerTrack(nil), urgentOff...), upcomingOff...), proactiveOff...)
		onOrder := append(append(append([]PlayerTrack(nil), urgentOn...), upcomingOn...), proactiveOn...)
		n := minInt(2, minInt(len(offOrder), len(onOrder)))
		if n == 0 {
			return nil
		}
		return swapDecision(offOrder[:n], onOrder[:n], models.ReasonUrgent)
	}

	currentVariance := maxMinSpread(active)
	threshold := dynamicVarianceThreshold(in.Now, in.GameLength, targets.VarianceGoal)
	if currentVariance > threshold {
		if len(proactiveOff) > 0 && len(proactiveOn) > 0 {
			return swapDecision(proactiveOff[:1], proactiveOn[:1], models.ReasonVarianceCorrection)
		}
	}

	if grown, amount := projectedDeviationGrowth(active, targets.MinSubGap); grown {
		lateGame := float64(in.Now) >= 0.7*float64(in.GameLength)
		limit := 60.0
		if lateGame {
			limit = 90.0
		}
		if amount > limit && len(proactiveOff) > 0 && len(proactiveOn) > 0 {
			return swapDecision(proactiveOff[:1], proactiveOn[:1], models.ReasonProactive)
		}
	}

	if len(upcomingOff) > 0 && len(upcomingOn) > 0 {
		return swapDecision(upcomingOff[:1], upcomingOn[:1], models.ReasonScheduledBalance)
	}

	return nil
}

func swapDecision(off, on []PlayerTrack, reason models.Reason) *decision {
	d := &decision{reason: reason}
	for _, p := range off {
		d.off = append(d.off, p.ID)
	}
	for _, p := range on {
		d.on = append(d.on, p.ID)
	}
	return d
}

func halftimeRefresh(active []PlayerTrack, fieldSize int) *decision {
	ranked := append([]PlayerTrack(nil), active...)
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].TotalPlayed != ranked[b].TotalPlayed {
			return ranked[a].TotalPlayed < ranked[b].TotalPlayed
		}
		return ranked[a].RosterIdx < ranked[b].RosterIdx
	})
	target := make(map[models.PlayerID]bool, fieldSize)
	for i := 0; i < fieldSize && i < len(ranked); i++ {
		target[ranked[i].ID] = true
	}

	var off, on []models.PlayerID
	for _, p := range active {
		if p.Status == StatusOnField && !target[p.ID] {
			off = append(off, p.ID)
		}
		if p.Status == StatusOnBench && target[p.ID] {
			on = append(on, p.ID)
		}
	}
	n := minInt(len(off), len(on))
	if n == 0 {
		return nil
	}
	return &decision{off: off[:n], on: on[:n], reason: models.ReasonHalftimeRefresh}
}

func subGapPressure(in Input, targets Targets) float64 {
	variance := maxMinSpread(activePlayers(in.Players))
	varianceRatio := 0.0
	if targets.VarianceGoal > 0 {
		varianceRatio = variance / float64(targets.VarianceGoal)
	}
	remaining := in.GameLength - in.Now
	timeRatio := 0.0
	if targets.MinSubGap > 0 {
		timeRatio = 1 - float64(remaining)/float64(3*targets.MinSubGap)
	}
	p := maxFloat(varianceRatio-1, timeRatio)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

func classifyOff(field []PlayerTrack, targets Targets, lookAhead int) (urgent, upcoming, proactive []PlayerTrack) {
	mean := meanTotalPlayed(field)
	for _, p := range field {
		switch {
		case p.CurrentFieldStint >= targets.MaxFieldStint:
			urgent = append(urgent, p)
		case p.CurrentFieldStint >= targets.MaxFieldStint-lookAhead:
			upcoming = append(upcoming, p)
		default:
			proactive = append(proactive, p)
		}
	}
	sort.Slice(urgent, func(a, b int) bool { return urgent[a].CurrentFieldStint > urgent[b].CurrentFieldStint })
	sort.Slice(upcoming, func(a, b int) bool { return upcoming[a].CurrentFieldStint > upcoming[b].CurrentFieldStint })
	sort.Slice(proactive, func(a, b int) bool {
		sa := (float64(proactive[a].TotalPlayed) - mean) + 0.5*float64(proactive[a].CurrentFieldStint)
		sb := (float64(proactive[b].TotalPlayed) - mean) + 0.5*float64(proactive[b].CurrentFieldStint)
		if sa != sb {
			return sa > sb
		}
		return proactive[a].RosterIdx < proactive[b].RosterIdx
	})
	return
}

func classifyOn(bench []PlayerTrack, targets Targets, lookAhead int) (urgent, upcoming, proactive []PlayerTrack) {
	mean := meanTotalPlayed(bench)
	for _, p := range bench {
		switch {
		case p.CurrentBenchStint >= targets.MaxBenchStint:
			urgent = append(urgent, p)
		case p.CurrentBenchStint >= targets.MaxBenchStint-lookAhead:
			upcoming = append(upcoming, p)
		default:
			proactive = append(proactive, p)
		}
	}
	sort.Slice(urgent, func(a, b int) bool {
		if urgent[a].CurrentBenchStint != urgent[b].CurrentBenchStint {
			return urgent[a].CurrentBenchStint > urgent[b].CurrentBenchStint
		}
		return urgent[a].TotalBenched > urgent[b].TotalBenched
	})
	sort.Slice(upcoming, func(a, b int) bool { return upcoming[a].CurrentBenchStint > upcoming[b].CurrentBenchStint })
	sort.Slice(proactive, func(a, b int) bool {
		sa := (mean - float64(proactive[a].TotalPlayed)) + 0.5*float64(proactive[a].TotalBenched)
		sb := (mean - float64(proactive[b].TotalPlayed)) + 0.5*float64(proactive[b].TotalBenched)
		if sa != sb {
			return sa > sb
		}
		return proactive[a].RosterIdx < proactive[b].RosterIdx
	})
	return
}

// projectedDeviationGrowth advances every field player in active by
// minSubGap and reports whether the max-deviation across all active players
// would grow, and by how much, relative to the current spread.
func projectedDeviationGrowth(active []PlayerTrack, minSubGap int) (bool, float64) {
	if len(active) == 0 {
		return false, 0
	}
	before := maxMinSpread(active)
	projected := make([]PlayerTrack, len(active))
	for i, p := range active {
		projected[i] = p
		if p.Status == StatusOnField {
			projected[i].TotalPlayed += minSubGap
		}
	}
	after := maxMinSpread(projected)
	return after > before, after - before
}

func meanTotalPlayed(players []PlayerTrack) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0
	for _, p := range players {
		sum += p.TotalPlayed
	}
	return float64(sum) / float64(len(players))
}

func maxMinSpread(players []PlayerTrack) float64 {
	if len(players) == 0 {
		return 0
	}
	minV, maxV := players[0].TotalPlayed, players[0].TotalPlayed
	for _, p := range players {
		if p.TotalPlayed < minV {
			minV = p.TotalPlayed
		}
		if p.TotalPlayed > maxV {
			maxV = p.TotalPlayed
		}
	}
	return float64(maxV - minV)
}

func activePlayers(players []PlayerTrack) []PlayerTrack {
	out := make([]PlayerTrack, 0, len(players))
	for _, p := range players {
		if p.Status != StatusRemoved {
			out = append(out, p)
		}
	}
	return out
}

func splitByStatus(players []PlayerTrack) (field, bench []PlayerTrack) {
	for _, p := range players {
		if p.Status == StatusOnField {
			field = append(field, p)
		} else {
			bench = append(bench, p)
		}
	}
	return
}

// GeneratePlan simulates forward from in.Now in CheckInterval increments,
// applying Decide at each boundary and folding the result back into
// tracked state, until GameLength-30s. Returns the resulting plan and the
// expected end-of-segment variance (root-mean-square deviation from mean).
func GeneratePlan(in Input) (models.Plan, float64, error) {
	active := activePlayers(in.Players)
	if len(active) < in.FieldSize {
		return models.Plan{}, 0, ErrNotEnoughPlayers
	}

	players := append([]PlayerTrack(nil), in.Players...)
	byID := make(map[models.PlayerID]*PlayerTrack, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}

	lastSub := in.LastSubTime
	halftimeFired := in.HalftimeFired
	events := make([]models.RotationEvent, 0)

	checkInterval := in.CheckInterval
	if checkInterval <= 0 {
		checkInterval = 15
	}

	end := in.GameLength - 30
	for now := in.Now; now < end; now += checkInterval {
		for i := range players {
			switch players[i].Status {
			case StatusOnField:
				players[i].TotalPlayed += checkInterval
				players[i].CurrentFieldStint += checkInterval
			case StatusOnBench:
				players[i].TotalBenched += checkInterval
				players[i].CurrentBenchStint += checkInterval
			}
		}

		activeCount := len(activePlayers(players))
		targets := ComputeTargets(activeCount, in.FieldSize, in.GameLength, checkInterval, in.IdealShiftsOverride, in.Tempo)

		step := in
		step.Now = now + checkInterval
		step.Players = players
		step.LastSubTime = lastSub
		step.HalftimeFired = halftimeFired

		// The plan's first event keeps the full minimum gap after the last
		// real substitution; Decide's pressure-reduced gap applies only
		// between the plan's own events.
		if len(events) == 0 && step.Now-in.LastSubTime < targets.MinSubGap {
			continue
		}

		d := Decide(step, targets)
		if d == nil {
			continue
		}

		events = append(events, models.RotationEvent{Time: step.Now, Off: d.off, On: d.on, Reason: d.reason})
		lastSub = step.Now
		if d.reason == models.ReasonHalftimeRefresh {
			halftimeFired = true
		}

		offSet := make(map[models.PlayerID]bool, len(d.off))
		for _, id := range d.off {
			offSet[id] = true
		}
		onSet := make(map[models.PlayerID]bool, len(d.on))
		for _, id := range d.on {
			onSet[id] = true
		}
		for i := range players {
			if offSet[players[i].ID] {
				players[i].Status = StatusOnBench
				players[i].CurrentFieldStint = 0
			}
			if onSet[players[i].ID] {
				players[i].Status = StatusOnField
				players[i].CurrentBenchStint = 0
			}
		}
	}

	values := make([]float64, 0, len(players))
	for _, p := range activePlayers(players) {
		values = append(values, float64(p.TotalPlayed))
	}
	rms, _ := stats.StandardDeviation(values)

	return models.Plan{Events: events}, rms, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
