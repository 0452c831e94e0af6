package pipeline

import (
	"context"
	"time"

	"github.com/fwojciec/harvest"
	"golang.org/x/sync/errgroup"
)

// Dispatcher sends chunks to a backend with bounded concurrency.
type Dispatcher struct {
	Backend     harvest.Backend
	Concurrency int
	Attempts    int
	RetryDelays []time.Duration
}

// NewDispatcher returns a Dispatcher for backend configured from cfg.
func NewDispatcher(backend harvest.Backend, cfg harvest.Config) *Dispatcher {
	return &Dispatcher{
		Backend:     backend,
		Concurrency: cfg.ExtractionConcurrency,
		Attempts:    cfg.ExtractionAttempts,
		RetryDelays: DefaultRetryDelays,
	}
}

// Dispatch extracts records from every chunk. The returned units follow
// the order of chunks whatever order the calls complete in. A failed
// chunk is reported in its unit and does not affect the others.
func (d *Dispatcher) Dispatch(ctx context.Context, chunks []harvest.Chunk, schema *harvest.Schema, instruction string) []harvest.ExtractionUnit {
	units := make([]harvest.ExtractionUnit, len(chunks))
	if len(chunks) == 0 {
		return units
	}

	type indexedUnit struct {
		pos  int
		unit harvest.ExtractionUnit
	}
	resultCh := make(chan indexedUnit, len(chunks))

	var g errgroup.Group
	g.SetLimit(max(d.Concurrency, 1))

	go func() {
		for i, c := range chunks {
			g.Go(func() error {
				resultCh <- indexedUnit{pos: i, unit: d.extract(ctx, c, schema, instruction)}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		units[r.pos] = r.unit
	}
	return units
}

func (d *Dispatcher) extract(ctx context.Context, c harvest.Chunk, schema *harvest.Schema, instruction string) harvest.ExtractionUnit {
	unit := harvest.ExtractionUnit{Chunk: c}
	var records []harvest.Record
	unit.Attempts, unit.Err = Retry(ctx, d.Attempts, d.RetryDelays, func(ctx context.Context) error {
		var err error
		records, err = d.Backend.Extract(ctx, c.Text, schema, instruction)
		return err
	})
	if unit.Err == nil {
		unit.Records = records
	}
	return unit
}
