// Package pipeline sequences the analytics stages: timeline ingest feeds the
// metrics extractor, extracted records feed defense attribution, and
// attribution updates trigger baseline recomputation for the defending
// teams. Each stage persists before the next reads, which is the
// happens-before contract the stages rely on.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/citruslab/go-frc-metrics/internal/defense"
	"github.com/citruslab/go-frc-metrics/internal/model"
	"github.com/citruslab/go-frc-metrics/internal/storage"
	"github.com/citruslab/go-frc-metrics/internal/timd"
)

// Pipeline wires the stages to the store.
type Pipeline struct {
	store  *storage.DB
	engine *defense.Engine
	log    *slog.Logger
}

// New builds a pipeline over the given store. A nil logger falls back to the
// default slog logger.
func New(store *storage.DB, points defense.Points, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		store:  store,
		engine: defense.NewEngine(store, points, log),
		log:    log,
	}
}

// Ingest runs the metrics extractor over one consolidated timeline, persists
// the record, and refreshes the team's season baseline. Returns the stored
// record.
func (p *Pipeline) Ingest(t *model.TIMD) (*model.TIMD, error) {
	cd, err := timd.Calculate(t)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	t.CalculatedData = cd

	if err := p.store.UpsertTIMD(t); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if _, err := p.store.RecomputeTeamBaseline(t.TeamNumber); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	p.log.Info("ingested timd", "timd", t.Key(),
		"scored", cd.TotalScored(), "defending_s", cd.TimeDefending)
	return t, nil
}

// RunDefense runs defense attribution for one match over whatever records
// are stored, persists each defender's impact, and recomputes the defender
// teams' baselines. Re-running with unchanged inputs recomputes the same
// impacts; nothing accumulates.
func (p *Pipeline) RunDefense(match int) (*defense.Result, error) {
	sched, err := p.store.GetSchedule(match)
	if err != nil {
		return nil, fmt.Errorf("defense for match %d: %w", match, err)
	}
	timds, err := p.store.TIMDsForMatch(match)
	if err != nil {
		return nil, fmt.Errorf("defense for match %d: %w", match, err)
	}
	if len(timds) == 0 {
		return nil, fmt.Errorf("defense for match %d: no records stored", match)
	}

	res, err := p.engine.Attribute(sched, timds)
	if err != nil {
		return nil, fmt.Errorf("defense for match %d: %w", match, err)
	}

	for _, impact := range res.Impacts {
		if err := p.store.UpdateDefenseImpact(impact); err != nil {
			return nil, fmt.Errorf("defense for match %d: %w", match, err)
		}
		p.log.Info("attributed defense", "team", impact.TeamNumber,
			"match", match, "points_prevented", impact.PointsPrevented())
	}

	// The trigger the store contract asks for: every team seen defending
	// gets its season aggregate refreshed.
	for _, team := range res.DefenderTeams {
		if _, err := p.store.RecomputeTeamBaseline(team); err != nil {
			return nil, fmt.Errorf("defense for match %d: %w", match, err)
		}
	}
	return res, nil
}
