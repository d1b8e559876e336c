package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/pamgo/fabric"
	"github.com/hupe1980/pamgo/internal/barrier"
	"github.com/hupe1980/pamgo/internal/shard"
	"github.com/hupe1980/pamgo/medoids"
)

// Runner executes the three-phase clustering loop over a shared state.
type Runner struct {
	state *medoids.State
	opts  Options
}

// New creates a Runner for state.
func New(state *medoids.State, optFns ...func(o *Options)) *Runner {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Fabric == nil {
		opts.Fabric = fabric.Single()
	}
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	if opts.MaxSwapIterations <= 0 {
		opts.MaxSwapIterations = DefaultOptions.MaxSwapIterations
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetrics{}
	}

	return &Runner{state: state, opts: opts}
}

// control carries the coordinator's decision across the post-step
// barrier. Only worker 0 writes it, and only between the two barriers of
// a step, so the barrier ordering makes it safe to read afterwards.
type control struct {
	err  error
	stop bool
}

// Run drives the state to completion: k build steps followed by swap
// iterations until no improving swap remains or MaxSwapIterations is hit.
// It spawns the configured worker goroutines once and joins them before
// returning. On error the state is left mid-phase and must be discarded.
func (r *Runner) Run(ctx context.Context) error {
	threads := r.opts.Threads
	best := make([]medoids.Candidate, threads)
	bar := barrier.New(threads)
	ctl := &control{}

	var limiter *rate.Limiter
	if r.opts.ProgressInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(r.opts.ProgressInterval), 1)
	}

	var wg sync.WaitGroup
	wg.Add(threads)
	for thread := 0; thread < threads; thread++ {
		thread := thread
		go func() {
			defer wg.Done()
			r.work(ctx, thread, best, bar, ctl, limiter)
		}()
	}
	wg.Wait()

	return ctl.err
}

func (r *Runner) work(ctx context.Context, thread int, best []medoids.Candidate, bar *barrier.Barrier, ctl *control, limiter *rate.Limiter) {
	fab := r.opts.Fabric
	workers := fab.Size() * r.opts.Threads
	workerIndex := fab.Rank()*r.opts.Threads + thread
	begin, end := shard.Range(workerIndex, workers, r.state.Size())

	// Initializing and Building: one medoid added per step.
	for step := 0; step < r.state.NumClusters(); step++ {
		best[thread] = medoids.ScanBuild(r.state, begin, end)
		bar.Wait()
		if thread == 0 {
			r.buildStep(ctx, step, best, ctl)
		}
		bar.Wait()
		if ctl.err != nil {
			return
		}
	}

	for iteration := 0; iteration < r.opts.MaxSwapIterations; iteration++ {
		best[thread] = medoids.ScanSwap(r.state, begin, end)
		bar.Wait()
		if thread == 0 {
			r.swapStep(ctx, iteration, best, ctl, limiter)
		}
		bar.Wait()
		if ctl.err != nil || ctl.stop {
			return
		}
	}
}

// buildStep runs on worker 0 only: fold thread-local bests in thread
// order, all-reduce across processes, apply the winning addition.
func (r *Runner) buildStep(ctx context.Context, step int, best []medoids.Candidate, ctl *control) {
	start := time.Now()
	phase := r.state.Phase()

	if r.opts.Fabric.Rank() == 0 {
		r.opts.Logger.Debug("Building", slog.Int("step", step))
	}

	acc := best[0]
	for _, c := range best[1:] {
		acc.Min(c)
	}

	winner, err := r.opts.Fabric.AllReduce(ctx, acc)
	if err != nil {
		ctl.err = err
		return
	}

	if err := r.state.AddMedoid(int(winner.Object)); err != nil {
		ctl.err = err
		return
	}

	r.opts.Metrics.RecordStep(phase, time.Since(start))
}

// swapStep runs on worker 0 only: fold, all-reduce, and either apply the
// winning swap or stop the loop when no swap improves the cost.
func (r *Runner) swapStep(ctx context.Context, iteration int, best []medoids.Candidate, ctl *control, limiter *rate.Limiter) {
	start := time.Now()

	acc := best[0]
	for _, c := range best[1:] {
		acc.Min(c)
	}

	winner, err := r.opts.Fabric.AllReduce(ctx, acc)
	if err != nil {
		ctl.err = err
		return
	}

	if winner.Distance >= 0 {
		ctl.stop = true
		r.opts.Metrics.RecordStep(medoids.PhaseSwapping, time.Since(start))
		return
	}

	if r.opts.Fabric.Rank() == 0 && (limiter == nil || limiter.Allow()) {
		r.opts.Logger.Debug("Swapping",
			slog.Int("iteration", iteration),
			slog.Int("medoid", int(winner.Medoid)),
			slog.Int("object", int(winner.Object)),
			slog.Float64("result", float64(winner.Distance)))
	}

	if err := r.state.Swap(int(winner.Medoid), int(winner.Object)); err != nil {
		ctl.err = err
		return
	}

	r.opts.Metrics.RecordSwap(iteration, winner.Distance)
	r.opts.Metrics.RecordStep(medoids.PhaseSwapping, time.Since(start))
}
