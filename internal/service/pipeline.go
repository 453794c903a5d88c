package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/GoPolymarket/xterio-checker/internal/model"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/metrics"
)

const DefaultWorkers = 5

type WalletChecker interface {
	Check(ctx context.Context, credential string) model.CheckResult
}

// Summary holds successful results in completion order and their sum.
type Summary struct {
	Results   []model.CheckResult
	Total     int64
	Succeeded int
	Failed    int
}

// Pipeline fans wallet checks out to a fixed number of workers.
type Pipeline struct {
	checker WalletChecker
	workers int
	log     *slog.Logger

	queued    atomic.Int64
	processed atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	points    atomic.Int64
}

func NewPipeline(checker WalletChecker, workers int, log *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		checker: checker,
		workers: workers,
		log:     log,
	}
}

// RunAll checks every credential once. A failing or panicking check never stops
// its siblings; failures are counted but excluded from Results and Total.
func (p *Pipeline) RunAll(ctx context.Context, credentials []string) Summary {
	var summary Summary
	if len(credentials) == 0 {
		return summary
	}
	p.queued.Add(int64(len(credentials)))

	workers := min(p.workers, len(credentials))
	tasks := make(chan string)
	results := make(chan model.CheckResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for credential := range tasks {
				results <- p.safeCheck(ctx, credential)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, credential := range credentials {
			tasks <- credential
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		p.record(&summary, res)
	}

	p.log.Info("batch finished",
		"wallets", len(credentials),
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"total_points", summary.Total,
	)
	return summary
}

func (p *Pipeline) Progress() model.Progress {
	return model.Progress{
		Queued:      p.queued.Load(),
		Processed:   p.processed.Load(),
		Succeeded:   p.succeeded.Load(),
		Failed:      p.failed.Load(),
		TotalPoints: p.points.Load(),
	}
}

func (p *Pipeline) safeCheck(ctx context.Context, credential string) (res model.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			p.log.ErrorContext(ctx, "wallet check panicked", "panic", fmt.Sprint(r))
			res = model.Failure(model.UnknownAddress, apperrors.NewUnexpectedFault(r))
		}
	}()
	return p.checker.Check(ctx, credential)
}

func (p *Pipeline) record(summary *Summary, res model.CheckResult) {
	p.processed.Add(1)
	if !res.OK() {
		summary.Failed++
		p.failed.Add(1)
		metrics.WalletChecks.WithLabelValues("failure", string(res.Err.Type)).Inc()
		p.log.Debug("wallet excluded from report", "address", res.Address, "kind", res.Err.Type)
		return
	}

	summary.Results = append(summary.Results, res)
	summary.Total += res.Balance
	summary.Succeeded++
	p.succeeded.Add(1)
	p.points.Add(res.Balance)
	metrics.WalletChecks.WithLabelValues("success", "").Inc()
	metrics.PointsTotal.Add(float64(res.Balance))
}
