package engine

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"flowtop/collector"
	"flowtop/model"
)

// Engine owns one tick of the pipeline: fetch a snapshot, parse it, fold
// records into rate groups against the counter store.
type Engine struct {
	src     collector.Source
	store   *CounterStore
	mode    model.GroupMode
	log     *log.Logger
	History *History

	totalIn  uint64
	totalOut uint64

	tickMu sync.Mutex // serializes Tick() calls so overlapping ticks cannot interleave store updates
}

// New creates an engine reading from src and grouping by mode.
func New(src collector.Source, mode model.GroupMode, pruneAfter, historySize int, logger *log.Logger) *Engine {
	if historySize < 1 {
		historySize = 120
	}
	return &Engine{
		src:     src,
		store:   NewCounterStore(pruneAfter),
		mode:    mode,
		log:     logger,
		History: NewHistory(historySize),
	}
}

// Tick runs one fetch + parse + aggregate cycle. On a fetch or schema
// failure it returns an error and leaves the store untouched, so the next
// successful tick differences against intact counters.
func (e *Engine) Tick() (*model.Frame, error) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	snap, err := e.src.Snapshot()
	if err != nil {
		return nil, err
	}

	recs, skipped, err := collector.ParseSnapshot(snap.Lines)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	groups, io := Aggregate(e.store, e.mode, recs, snap.At)
	e.totalIn += io.DeltaIn
	e.totalOut += io.DeltaOut

	var sumIn, sumOut float64
	for _, g := range groups {
		sumIn += g.InKBs
		sumOut += g.OutKBs
	}
	e.History.Push(TickStat{
		At:      snap.At,
		InKBs:   sumIn,
		OutKBs:  sumOut,
		Groups:  len(groups),
		Skipped: skipped,
	})

	e.log.WithFields(log.Fields{
		"records": len(recs),
		"skipped": skipped,
		"groups":  len(groups),
		"keys":    e.store.Len(),
	}).Debug("tick")

	return &model.Frame{
		At:      snap.At,
		Groups:  groups,
		Records: len(recs),
		Skipped: skipped,
	}, nil
}

// Describe reports the source invocation for the header echo.
func (e *Engine) Describe() string { return e.src.Describe() }

// Mode returns the grouping mode fixed at construction.
func (e *Engine) Mode() model.GroupMode { return e.mode }

// Totals returns the cumulative bytes moved since the session started.
func (e *Engine) Totals() (in, out uint64) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	return e.totalIn, e.totalOut
}
