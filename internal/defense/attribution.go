package defense

import (
	"fmt"
	"log/slog"

	"github.com/citruslab/go-frc-metrics/internal/model"
)

// BaselineSource supplies season baselines for opposing teams. A nil baseline
// with a nil error means the team has none yet (first match of a season);
// attribution skips that opponent rather than failing.
type BaselineSource interface {
	TeamBaseline(team int) (*model.TeamBaseline, error)
}

// Points holds the scoring value of each game-piece kind.
type Points struct {
	Cargo float64
	Panel float64
}

// DefaultPoints returns the standard piece values: cargo 3, panel 2.
func DefaultPoints() Points {
	return Points{Cargo: 3, Panel: 2}
}

// For returns the point value of the given piece.
func (p Points) For(piece model.Piece) float64 {
	if piece == model.PieceCargo {
		return p.Cargo
	}
	return p.Panel
}

// Result is the outcome of one attribution run over a match.
type Result struct {
	// Impacts holds one entry per defending robot, in roster-scan order.
	Impacts []model.DefenseImpact

	// DefenderTeams lists the teams observed to have played defense; their
	// season aggregates need recomputation after the impacts are persisted.
	DefenderTeams []int

	// Skipped lists robots left out of the run: roster mismatches and
	// records with no calculated data.
	Skipped []int
}

// Engine cross-references every alliance's defenders against the opposing
// alliance's timelines for one match.
type Engine struct {
	baselines BaselineSource
	points    Points
	log       *slog.Logger
}

// NewEngine builds an attribution engine. A nil logger falls back to the
// default slog logger.
func NewEngine(baselines BaselineSource, points Points, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{baselines: baselines, points: points, log: log}
}

// acquireContext is the running "most recent acquisition" state threaded
// through an opponent-timeline scan. A defended event cannot be attributed as
// a cycle without this context.
type acquireContext struct {
	time  float64
	piece model.Piece
	valid bool
}

// defendedCycle is one opposing event that happened under defense, annotated
// with the acquisition that opened its cycle.
type defendedCycle struct {
	action     model.Action
	intakeTime float64
	piece      model.Piece
}

// Attribute runs defense attribution for one match. It never mutates the
// input records and yields identical results on identical inputs; the caller
// persists the impacts. Per-robot problems are logged and skipped, never
// fatal for the match.
func (e *Engine) Attribute(sched *model.MatchSchedule, timds []*model.TIMD) (*Result, error) {
	if sched == nil {
		return nil, fmt.Errorf("attribute: nil match schedule")
	}
	if err := sched.Validate(); err != nil {
		return nil, fmt.Errorf("attribute: %w", err)
	}

	res := &Result{}

	byAlliance := map[model.Alliance][]*model.TIMD{}
	for _, t := range timds {
		alliance, ok := sched.AllianceOf(t.TeamNumber)
		if !ok {
			e.log.Warn("robot not on either alliance roster, skipping",
				"team", t.TeamNumber, "match", sched.MatchNumber)
			res.Skipped = append(res.Skipped, t.TeamNumber)
			continue
		}
		if t.CalculatedData == nil {
			e.log.Warn("robot record has no calculated data, skipping",
				"team", t.TeamNumber, "match", sched.MatchNumber)
			res.Skipped = append(res.Skipped, t.TeamNumber)
			continue
		}
		byAlliance[alliance] = append(byAlliance[alliance], t)
	}

	for _, alliance := range []model.Alliance{model.AllianceRed, model.AllianceBlue} {
		var defenders []*model.TIMD
		for _, t := range byAlliance[alliance] {
			if t.CalculatedData.PlayedDefense() {
				defenders = append(defenders, t)
			}
		}
		if len(defenders) == 0 {
			continue
		}

		e.flagOverlaps(sched.MatchNumber, defenders)

		var opponents []*model.TIMD
		if alliance == model.AllianceRed {
			opponents = byAlliance[model.AllianceBlue]
		} else {
			opponents = byAlliance[model.AllianceRed]
		}

		for _, defender := range defenders {
			windows := Windows(defender.Timeline)
			// Sole defender on this alliance: every defended opposing cycle
			// is theirs, so widen to the full match span.
			if len(defenders) == 1 {
				windows = []Window{FullMatch}
			}

			impact := e.attributeDefender(defender, windows, opponents)
			res.Impacts = append(res.Impacts, impact)
			res.DefenderTeams = append(res.DefenderTeams, defender.TeamNumber)
		}
	}

	return res, nil
}

// flagOverlaps logs the unresolved double-attribution case: more than one
// defender on an alliance with overlapping windows. Each defender is still
// attributed independently afterwards.
func (e *Engine) flagOverlaps(match int, defenders []*model.TIMD) {
	if len(defenders) < 2 {
		return
	}
	for i := 0; i < len(defenders); i++ {
		for j := i + 1; j < len(defenders); j++ {
			for _, wi := range Windows(defenders[i].Timeline) {
				for _, wj := range Windows(defenders[j].Timeline) {
					if wi.Overlaps(wj) {
						e.log.Warn("overlapping defense windows, cycles in the overlap attribute to both defenders",
							"match", match,
							"team_a", defenders[i].TeamNumber, "team_b", defenders[j].TeamNumber,
							"window_a_start", wi.Start, "window_a_end", wi.End,
							"window_b_start", wj.Start, "window_b_end", wj.End)
					}
				}
			}
		}
	}
}

// attributeDefender computes one defender's impact across all opposing
// robots.
func (e *Engine) attributeDefender(defender *model.TIMD, windows []Window, opponents []*model.TIMD) model.DefenseImpact {
	impact := model.DefenseImpact{
		TeamNumber:  defender.TeamNumber,
		MatchNumber: defender.MatchNumber,
	}

	for _, opp := range opponents {
		cycles := defendedCycles(opp.Timeline, windows)
		if len(cycles) == 0 {
			continue
		}

		baseline, err := e.baselines.TeamBaseline(opp.TeamNumber)
		if err != nil {
			e.log.Warn("baseline lookup failed, skipping opponent",
				"team", opp.TeamNumber, "error", err)
			continue
		}
		if baseline == nil {
			e.log.Debug("opponent has no season baseline yet, skipping",
				"team", opp.TeamNumber)
			continue
		}

		for _, piece := range model.Pieces {
			points, failedCycles, ok := e.pieceImpact(cycles, piece, baseline.ForPiece(piece))
			if !ok {
				continue
			}
			if piece == model.PieceCargo {
				impact.CargoPointsPrevented += points
				impact.CargoFailedCyclesCaused += failedCycles
			} else {
				impact.PanelPointsPrevented += points
				impact.PanelFailedCyclesCaused += failedCycles
			}
		}
	}

	return impact
}

// defendedCycles scans one opposing timeline for events marked wasDefended
// that fall strictly inside any of the defender's windows, attaching the most
// recent preceding acquisition as cycle context. A leading placement or drop
// is a preload, not a defended cycle, and is dropped before scanning. The
// stored timeline is never modified.
func defendedCycles(tl []model.Action, windows []Window) []defendedCycle {
	if len(tl) > 0 && (tl[0].Type == model.ActionPlacement || tl[0].Type == model.ActionDrop) {
		tl = tl[1:]
	}

	var out []defendedCycle
	var ctx acquireContext
	for _, a := range tl {
		if !a.WasDefended {
			if a.Type == model.ActionIntake {
				ctx = acquireContext{time: a.Time, piece: a.Piece, valid: true}
			}
			continue
		}
		// No acquisition context yet: the event cannot be a defended cycle.
		if !ctx.valid {
			continue
		}
		for _, w := range windows {
			if w.Contains(a.Time) {
				out = append(out, defendedCycle{action: a, intakeTime: ctx.time, piece: ctx.piece})
				break
			}
		}
	}
	return out
}

// pieceImpact turns one opponent's defended cycles of one piece kind into
// points prevented and failed cycles caused, against that opponent's
// baseline. ok is false when the piece had no defended cycles or the
// baseline cannot provide rates.
func (e *Engine) pieceImpact(cycles []defendedCycle, piece model.Piece, baseline model.PieceBaseline) (points, failedCycles float64, ok bool) {
	count, drops, fails := 0, 0, 0
	var cycleTimes []float64
	for _, c := range cycles {
		if c.piece != piece {
			continue
		}
		count++
		switch c.action.Type {
		case model.ActionDrop:
			drops++
		case model.ActionPlacement:
			if c.action.DidSucceed != nil && !*c.action.DidSucceed {
				fails++
			} else {
				cycleTimes = append(cycleTimes, c.intakeTime-c.action.Time)
			}
		}
	}
	if count == 0 {
		return 0, 0, false
	}

	baseDropRate := baseline.DropRate()
	baseFailRate := baseline.FailRate()
	if baseDropRate == nil || baseFailRate == nil {
		return 0, 0, false
	}

	defendedDropRate := float64(drops) / float64(count)
	defendedFailRate := float64(fails) / float64(count)

	dropsCaused := (defendedDropRate - *baseDropRate) * float64(drops)
	failsCaused := (defendedFailRate - *baseFailRate) * float64(fails)

	lostCycles := 0.0
	if baseline.AvgCycleTime != nil && *baseline.AvgCycleTime > 0 {
		lostTime := 0.0
		for _, ct := range cycleTimes {
			lostTime += ct - *baseline.AvgCycleTime
		}
		lostCycles = lostTime / *baseline.AvgCycleTime
	}

	points = e.points.For(piece) * (dropsCaused + failsCaused + lostCycles)
	failedCycles = dropsCaused + failsCaused
	return points, failedCycles, true
}
