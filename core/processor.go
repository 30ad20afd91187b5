package core

import (
	"context"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/imagedecoder/config"
	apperrors "github.com/Skryldev/imagedecoder/errors"
	"github.com/Skryldev/imagedecoder/utils"
)

// Processor is the central orchestrator.  It is safe for concurrent use; the
// ImageDecoders it hands out are not.
type Processor struct {
	cfg      config.Config
	registry Registry
	limits   Limits
	hooks    []Hook
	logger   Logger
	metrics  MetricsCollector

	// Worker pool.
	jobQueue chan Job
	wg       sync.WaitGroup
	once     sync.Once
	shutdown chan struct{}

	// Atomic counters for lightweight internal metrics.
	processedCount int64
	errorCount     int64
}

// New creates a Processor with the given config.  Call Start() before
// submitting jobs; call Stop() when done.
func New(cfg config.Config, reg Registry) *Processor {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Processor{
		cfg:      cfg,
		registry: reg,
		limits:   LimitsFromConfig(cfg),
		logger:   nopLogger{},
		jobQueue: make(chan Job, queueSize),
		shutdown: make(chan struct{}),
	}
}

// LimitsFromConfig converts the configured ceilings into a Limits policy.
func LimitsFromConfig(cfg config.Config) Limits {
	return Limits{
		MaxImageWidth:  cfg.Limits.MaxWidth,
		MaxImageHeight: cfg.Limits.MaxHeight,
		MaxAlloc:       cfg.Limits.MaxAlloc,
	}
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	p.logger = l
}

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m MetricsCollector) { p.metrics = m }

// AddHook registers a pipeline hook.
func (p *Processor) AddHook(h Hook) { p.hooks = append(p.hooks, h) }

// Registry returns the underlying registry so callers can register
// decoders after construction.
func (p *Processor) Registry() Registry { return p.registry }

// Limits returns the policy applied to every opened decoder.
func (p *Processor) Limits() Limits { return p.limits }

// Start launches the worker pool.  It is idempotent.
func (p *Processor) Start() {
	p.once.Do(func() {
		workerCount := p.cfg.WorkerCount
		if workerCount <= 0 {
			workerCount = runtime.NumCPU()
		}
		for i := 0; i < workerCount; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// Stop shuts down all workers.  Jobs still queued are dropped.
func (p *Processor) Stop() {
	close(p.shutdown)
	p.wg.Wait()
}

// Load drains src into memory (respecting the max size limit) and detects
// its format.
func (p *Processor) Load(ctx context.Context, src Source) (*ImageData, error) {
	if src.Reader == nil {
		return nil, apperrors.New(apperrors.CategoryInput, "load", apperrors.ErrEmptyInput)
	}
	r := src.Reader
	if p.cfg.MaxImageBytes > 0 {
		r = &utils.LimitedReader{R: src.Reader, Max: p.cfg.MaxImageBytes}
	}

	buf, err := utils.DrainReader(ctx, r, p.cfg.ChunkSize)
	if err != nil {
		if err == utils.ErrLimitExceeded {
			err = apperrors.ErrInputTooLarge
		}
		return nil, apperrors.Wrap(apperrors.CategoryInput, "load.drain", err)
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)
	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.CategoryInput, "load", apperrors.ErrEmptyInput)
	}

	format := Format(utils.DetectFormat(raw))
	if src.ContentType != "" {
		if f := Format(utils.ContentTypeFormat(src.ContentType)); f != FormatUnknown {
			format = f
		}
	}
	return &ImageData{Data: raw, Format: format, OriginalSize: int64(len(raw))}, nil
}

// Open loads src and returns a decoder for it with the processor's limits
// already applied.  The caller reads pixels with ReadImage or DecodeImage.
func (p *Processor) Open(ctx context.Context, src Source) (ImageDecoder, *ImageData, error) {
	img, err := p.Load(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	dec, err := OpenDecoder(ctx, p.registry, img, p.limits)
	if err != nil {
		p.logger.Warn("decoder.open.failed", "format", img.Format, "source", src.Name, "error", err.Error())
		return nil, nil, err
	}
	w, h := dec.Dimensions()
	p.logger.Debug("decoder.open",
		"format", img.Format,
		"source", src.Name,
		"width", w,
		"height", h,
		"color_type", dec.ColorType().String(),
		"original_color_type", dec.OriginalColorType().String(),
	)
	return dec, img, nil
}

// DecodeImage opens src and decodes all of its pixels.
func (p *Processor) DecodeImage(ctx context.Context, src Source) (image.Image, error) {
	dec, img, err := p.Open(ctx, src)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		return nil, err
	}
	out, err := DecodeImage(dec, p.limits)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		if apperrors.IsUnsupported(err) {
			p.logger.Warn("decoder.read.unsupported", "format", img.Format, "source", src.Name,
				"original_color_type", dec.OriginalColorType().String())
		}
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "decode", err)
	}
	atomic.AddInt64(&p.processedCount, 1)
	if p.metrics != nil {
		p.metrics.RecordThroughput(int64(TotalBytes(dec)))
	}
	return out, nil
}

// Process is the primary synchronous API.  It reads from src, runs steps, and
// returns a ProcessingResult.  Failures are not retried: a stream that fails
// to decode once will fail again.
func (p *Processor) Process(ctx context.Context, src Source, steps ...Step) (*ProcessingResult, error) {
	if len(steps) == 0 {
		return nil, apperrors.New(apperrors.CategoryPipeline, "process", apperrors.ErrEmptyInput)
	}

	start := time.Now()

	img, err := p.Load(ctx, src)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		return nil, err
	}

	timings := make(map[string]time.Duration, len(steps))
	current := img
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			atomic.AddInt64(&p.errorCount, 1)
			return nil, apperrors.Wrap(apperrors.CategoryPipeline, step.Name(), err)
		}
		p.notifyBefore(ctx, step.Name(), current)
		t := time.Now()
		next, stepErr := step.Execute(ctx, current)
		elapsed := time.Since(t)
		timings[step.Name()] = elapsed
		p.notifyAfter(ctx, step.Name(), next, elapsed, stepErr)
		if stepErr != nil {
			atomic.AddInt64(&p.errorCount, 1)
			p.logger.Error("pipeline.step.failed", "step", step.Name(), "source", src.Name, "error", stepErr.Error())
			return nil, stepErr
		}
		current = next
	}

	atomic.AddInt64(&p.processedCount, 1)

	return &ProcessingResult{
		Primary:        current,
		ProcessingTime: time.Since(start),
		StepTimings:    timings,
	}, nil
}

// Submit enqueues an async job.  Returns ErrWorkerPoolFull if the queue is full.
func (p *Processor) Submit(job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	default:
		return apperrors.New(apperrors.CategoryPipeline, "submit", apperrors.ErrWorkerPoolFull)
	}
}

// Batch processes multiple sources concurrently (fan-out / fan-in).
func (p *Processor) Batch(ctx context.Context, sources []Source, steps ...Step) ([]*ProcessingResult, []error) {
	results := make([]*ProcessingResult, len(sources))
	errs := make([]error, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			results[idx], errs[idx] = p.Process(ctx, s, steps...)
		}(i, src)
	}
	wg.Wait()
	return results, errs
}

// ── worker pool internals ──────────────────────────────────────────────────────

func (p *Processor) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.processJob(job)
		}
	}
}

func (p *Processor) processJob(job Job) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := p.cfg.JobTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := p.Process(ctx, job.Source, job.Steps...)
	if job.ResultCh != nil {
		job.ResultCh <- JobResult{JobID: job.ID, Result: result, Err: err}
	}
}

func (p *Processor) notifyBefore(ctx context.Context, name string, img *ImageData) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, img)
	}
}

func (p *Processor) notifyAfter(ctx context.Context, name string, img *ImageData, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, img, d, err)
	}
}

// ProcessedCount returns the total number of successfully processed images.
func (p *Processor) ProcessedCount() int64 { return atomic.LoadInt64(&p.processedCount) }

// ErrorCount returns the total number of processing errors.
func (p *Processor) ErrorCount() int64 { return atomic.LoadInt64(&p.errorCount) }
