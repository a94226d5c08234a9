// Command flowsched drives a batch of the deadline-aware flow scheduler
// against a fat-tree (or file-defined) data-center topology.
//
// # Overview
//
// Each run:
//  1. builds a topology (a k-ary fat-tree by default, or a bracket-section
//     topology file when topology.source=file)
//  2. generates workload.runs independent query-aggregation batches (many
//     senders converging on one randomly chosen receiver, exponential
//     deadlines, uniform sizes)
//  3. schedules every batch with the configured algorithm (dr or ecmp) and
//     ordering rule, committing admitted flows into a fresh ledger per run
//  4. averages the admitted/rejected counts across runs, the same
//     across-runs averaging the reference workload driver performs, and
//     prints the summary
//  5. optionally exports the averaged summary and the last run's full
//     admission detail to an xlsx report
//
// # Configuration
//
// Configuration loads from, in increasing priority:
//  1. built-in defaults (pkg/config/loader.go)
//  2. a YAML file (config.yaml, config/config.yaml, /etc/flowsched/config.yaml,
//     or the path named by CONFIG_PATH)
//  3. environment variables prefixed FLOWSCHED_ (e.g. FLOWSCHED_SCHEDULER_ALGORITHM=ecmp)
//
// Key settings:
//
//	topology.source          fattree | file (default fattree)
//	topology.fattree_k       fat-tree parameter k, must be positive and even (default 4)
//	topology.file_path       bracket-section topology file, when source=file
//	scheduler.algorithm      dr | ecmp (default dr)
//	scheduler.order          size | arrival | arrival_size | none (default size)
//	scheduler.seed           RNG seed for workload generation and ECMP tie-breaking
//	workload.runs            number of independent batches to average over
//	report.enabled           export an xlsx report when true
//
// # Observability
//
// Structured logs go to log/slog (pkg/logger), batch and flow counters to
// Prometheus (pkg/metrics, served on metrics.port when metrics.enabled),
// and a span is opened per run when tracing.enabled.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/rand"

	"flowsched/internal/report"
	"flowsched/internal/scheduler"
	"flowsched/internal/topology"
	"flowsched/internal/workload"
	"flowsched/pkg/cache"
	"flowsched/pkg/config"
	"flowsched/pkg/domain"
	"flowsched/pkg/logger"
	"flowsched/pkg/metrics"
	"flowsched/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Warn("failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	var scheduleCache *cache.ScheduleCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Warn("failed to create cache, continuing without cache", "error", err)
		} else {
			scheduleCache = cache.NewScheduleCache(baseCache, cfg.Cache.DefaultTTL)
		}
	}

	topo, err := buildTopology(cfg)
	if err != nil {
		logger.Fatal("failed to build topology", "error", err)
	}

	m.RecordTopologySize(
		len(topo.NodesByLayer(domain.Core)),
		len(topo.NodesByLayer(domain.Aggr)),
		len(topo.NodesByLayer(domain.Edge)),
		len(topo.NodesByLayer(domain.Host)),
		topo.EdgeCount(),
	)

	hosts := topo.NodesByLayer(domain.Host)
	if len(hosts) < 2 {
		logger.Fatal("topology has fewer than two hosts, cannot generate workload", "hosts", len(hosts))
	}

	algorithm, order := resolveAlgorithmAndOrder(cfg.Scheduler.Algorithm, cfg.Scheduler.Order)
	rng := rand.New(rand.NewSource(uint64(cfg.Scheduler.Seed)))

	runs := cfg.Workload.Runs
	if runs < 1 {
		runs = 1
	}

	var admittedSum, rejectedSum float64
	var lastDetail report.BatchDetail

	for i := 0; i < runs; i++ {
		flows, err := generateBatch(hosts, cfg, rng)
		if err != nil {
			logger.Fatal("failed to generate workload", "error", err)
		}

		var result scheduler.Result
		cached := false
		if scheduleCache != nil {
			if cr, hit, err := scheduleCache.Get(ctx, topo, flows, cfg.Scheduler.Algorithm, cfg.Scheduler.Order, cfg.Scheduler.Seed); err == nil && hit {
				result = fromCachedBatchResult(cr)
				cached = true
				m.RecordCacheHit()
			}
		}

		var duration time.Duration
		if !cached {
			if scheduleCache != nil {
				m.RecordCacheMiss()
			}

			sched := scheduler.New(topo, scheduler.DefaultOptions().
				WithAlgorithm(algorithm).
				WithOrder(order).
				WithRandSource(rng))

			runCtx, span := telemetry.StartSpan(ctx, "batch-run")
			timer := metrics.NewTimer(m.BatchDuration, cfg.Scheduler.Algorithm)
			result, err = sched.RunBatch(runCtx, flows)
			duration = timer.ObserveDuration()
			if err != nil {
				telemetry.SetError(runCtx, err)
			} else {
				telemetry.SetAttributes(runCtx, telemetry.BatchAttributes(cfg.Scheduler.Algorithm, cfg.Scheduler.Order,
					len(flows), len(result.Admitted), len(result.Rejected))...)
			}
			span.End()
			if err != nil {
				logger.Error("batch run failed", "error", err, "run", i+1)
				m.RecordBatch(cfg.Scheduler.Algorithm, false, duration)
				continue
			}

			if scheduleCache != nil {
				cr := toCachedBatchResult(result)
				if err := scheduleCache.Set(ctx, topo, flows, cfg.Scheduler.Algorithm, cfg.Scheduler.Order, cfg.Scheduler.Seed, &cr, cfg.Cache.DefaultTTL); err != nil {
					logger.Warn("failed to cache schedule result", "error", err)
				}
			}
		}
		m.RecordBatch(cfg.Scheduler.Algorithm, true, duration)

		for _, rec := range result.Admitted {
			m.RecordFlowAdmitted(cfg.Scheduler.Algorithm, averageRateMbps(rec), 0)
		}
		for range result.Rejected {
			m.RecordFlowRejected(cfg.Scheduler.Algorithm, 0)
		}

		admittedSum += float64(len(result.Admitted))
		rejectedSum += float64(len(result.Rejected))
		lastDetail = report.BatchDetail{Algorithm: cfg.Scheduler.Algorithm, Admitted: result.Admitted, Rejected: result.Rejected}

		logger.Info("batch run complete",
			"run", i+1,
			"algorithm", cfg.Scheduler.Algorithm,
			"admitted", len(result.Admitted),
			"rejected", len(result.Rejected),
			"duration_ms", duration.Milliseconds(),
		)
	}

	admittedAvg := admittedSum / float64(runs)
	rejectedAvg := rejectedSum / float64(runs)
	total := admittedAvg + rejectedAvg

	fmt.Printf("Algorithm: %s (order: %s)\n", cfg.Scheduler.Algorithm, cfg.Scheduler.Order)
	fmt.Printf("\tAdmitted (avg over %d runs): %.3f\n", runs, admittedAvg)
	fmt.Printf("\tRejected (avg over %d runs): %.3f\n", runs, rejectedAvg)

	if cfg.Report.Enabled {
		summary := report.RunSummary{
			Algorithm:    cfg.Scheduler.Algorithm,
			Order:        cfg.Scheduler.Order,
			FlowsTotal:   total,
			AdmittedAvg:  admittedAvg,
			RejectedAvg:  rejectedAvg,
			AdmittedRate: safeDiv(admittedAvg, total),
		}
		if err := report.Write(cfg.Report.OutputPath, cfg.Report.SheetName,
			[]report.RunSummary{summary}, []report.BatchDetail{lastDetail}); err != nil {
			logger.Warn("failed to write report", "error", err)
		} else {
			logger.Info("report written", "path", cfg.Report.OutputPath)
		}
	}
}

func buildTopology(cfg *config.Config) (*topology.Topology, error) {
	switch cfg.Topology.Source {
	case "file":
		f, err := os.Open(cfg.Topology.FilePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return topology.Parse(f)
	default:
		bw := cfg.Topology.DefaultBandwidthGbps
		return topology.FatTree(cfg.Topology.FatTreeK, topology.FatTreeAttrs{AllBandwidth: bw})
	}
}

func generateBatch(hosts []string, cfg *config.Config, rng *rand.Rand) ([]domain.Flow, error) {
	return workload.QueryAggr(hosts, workload.QueryAggrOptions{
		MinFlowNum:        cfg.Workload.MinFlowNum,
		MaxFlowNum:        cfg.Workload.MaxFlowNum,
		AverageDeadlineMs: cfg.Workload.AverageDeadlineMs,
		MinFlowSizeKB:     cfg.Workload.MinFlowSizeKB,
		MaxFlowSizeKB:     cfg.Workload.MaxFlowSizeKB,
	}, rng)
}

func resolveAlgorithmAndOrder(algorithm, order string) (scheduler.Algorithm, scheduler.Order) {
	alg := scheduler.DR
	if algorithm == "ecmp" {
		alg = scheduler.ECMP
	}

	switch order {
	case "arrival":
		return alg, scheduler.OrderByArrival
	case "arrival_size":
		return alg, scheduler.OrderByArrivalThenSize
	case "none":
		return alg, scheduler.OrderNone
	default:
		return alg, scheduler.OrderBySize
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func averageRateMbps(rec domain.SuccessRecord) float64 {
	duration := rec.FinishTime - rec.Flow.Arrival
	// Mbit per ms is Gbps; scale by 1000 for Mbps.
	return safeDiv(rec.Flow.SizeMbit, duration) * 1000
}

func toCachedBatchResult(result scheduler.Result) cache.CachedBatchResult {
	cr := cache.CachedBatchResult{Rejected: make([]domain.FailureRecord, 0, len(result.Rejected))}
	for _, rec := range result.Admitted {
		cr.Admitted = append(cr.Admitted, cache.CachedPlan{
			Flow:       rec.Flow,
			Path:       rec.Path,
			Plan:       rec.Plan,
			FinishTime: rec.FinishTime,
		})
	}
	cr.Rejected = append(cr.Rejected, result.Rejected...)
	return cr
}

func fromCachedBatchResult(cr *cache.CachedBatchResult) scheduler.Result {
	var result scheduler.Result
	for _, p := range cr.Admitted {
		result.Admitted = append(result.Admitted, domain.SuccessRecord{
			Flow:       p.Flow,
			Path:       p.Path,
			Plan:       p.Plan,
			FinishTime: p.FinishTime,
		})
	}
	result.Rejected = append(result.Rejected, cr.Rejected...)
	return result
}
