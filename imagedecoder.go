// Package imagedecoder decodes JPEG, PNG, WebP and JPEG XL images through a
// single format-agnostic decoder contract (core.ImageDecoder), with resource
// limits checked before any pixel buffer is allocated.
package imagedecoder

import (
	"context"
	"image"
	"io"

	"github.com/Skryldev/imagedecoder/adapters/decoder"
	"github.com/Skryldev/imagedecoder/adapters/jxl"
	"github.com/Skryldev/imagedecoder/config"
	"github.com/Skryldev/imagedecoder/core"
	"github.com/Skryldev/imagedecoder/pipeline"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
	JXL  = core.FormatJXL
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Processor is the primary entry point.
type Processor struct {
	inner *core.Processor
	reg   *core.DefaultRegistry
}

// New creates a fully wired Processor with the JPEG, PNG, WebP and JPEG XL
// decoders registered.  JPEG XL uses the WASM engine.  To decode through
// libvips instead, pass a vips.Backend's OpenEngine to NewWithJXLEngine; it
// needs cgo, so this package does not import it.
func New(cfg config.Config) *Processor {
	return NewWithJXLEngine(cfg, jxl.OpenWASM)
}

// NewWithJXLEngine is New with an explicit JPEG XL engine.
func NewWithJXLEngine(cfg config.Config, open jxl.OpenFunc) *Processor {
	reg := core.NewRegistry()
	reg.RegisterDecoder(core.FormatJPEG, decoder.NewJPEG())
	reg.RegisterDecoder(core.FormatPNG, decoder.NewPNG())
	reg.RegisterDecoder(core.FormatWebP, decoder.NewWebP())
	reg.RegisterDecoder(core.FormatJXL, decoder.NewJXL(open))

	inner := core.New(cfg, reg)
	return &Processor{inner: inner, reg: reg}
}

// Inner exposes the underlying core.Processor for advanced use (e.g., direct
// registry access in tests).  Prefer the high-level API for normal usage.
func (p *Processor) Inner() *core.Processor { return p.inner }

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l core.Logger) { p.inner.SetLogger(l) }

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m core.MetricsCollector) { p.inner.SetMetrics(m) }

// AddHook registers an observer for pipeline step events.
func (p *Processor) AddHook(h core.Hook) { p.inner.AddHook(h) }

// RegisterDecoder registers a custom decoder for the given format.
func (p *Processor) RegisterDecoder(f core.Format, d core.Decoder) { p.reg.RegisterDecoder(f, d) }

// Start starts the background worker pool.
func (p *Processor) Start() { p.inner.Start() }

// Stop shuts down the worker pool.
func (p *Processor) Stop() { p.inner.Stop() }

// Open returns the decoder for src with the configured limits applied.
// Check OriginalColorType before allocating a buffer: a CMYK JPEG XL image
// reports an RGB ColorType for sizing but refuses to render.
func (p *Processor) Open(ctx context.Context, src core.Source) (core.ImageDecoder, error) {
	dec, _, err := p.inner.Open(ctx, src)
	return dec, err
}

// Decode opens src and decodes it to an image.Image.
func (p *Processor) Decode(ctx context.Context, src core.Source) (image.Image, error) {
	return p.inner.DecodeImage(ctx, src)
}

// Process executes the provided steps synchronously and returns the result.
func (p *Processor) Process(ctx context.Context, src core.Source, steps ...core.Step) (*core.ProcessingResult, error) {
	return p.inner.Process(ctx, src, steps...)
}

// Batch runs the same steps on multiple sources concurrently.
func (p *Processor) Batch(ctx context.Context, sources []core.Source, steps ...core.Step) ([]*core.ProcessingResult, []error) {
	return p.inner.Batch(ctx, sources, steps...)
}

// Submit enqueues an async job for the worker pool.
func (p *Processor) Submit(job core.Job) error { return p.inner.Submit(job) }

// NewPipeline creates a reusable, standalone pipeline.
func (p *Processor) NewPipeline(steps ...core.Step) *pipeline.Pipeline {
	return pipeline.New().Use(steps...)
}

// Stats returns lightweight processing statistics.
func (p *Processor) Stats() (processed, errors int64) {
	return p.inner.ProcessedCount(), p.inner.ErrorCount()
}

// Probe returns a step that reads metadata without decoding pixels.
func (p *Processor) Probe() core.Step {
	return &pipeline.ProbeStep{Registry: p.reg, Limits: p.inner.Limits()}
}

// Decoder returns a decode step bound to this processor's registry and limits.
func (p *Processor) Decoder() core.Step {
	return &pipeline.DecodeStep{Registry: p.reg, Limits: p.inner.Limits()}
}

// ── Source constructors ────────────────────────────────────────────────────────

// FromReader creates a Source from an io.Reader.
func FromReader(r io.Reader) core.Source { return core.Source{Reader: r, Size: -1} }

// FromReaderWithMeta creates a Source with known size and content-type hints.
func FromReaderWithMeta(r io.Reader, size int64, contentType, name string) core.Source {
	return core.Source{Reader: r, Size: size, ContentType: contentType, Name: name}
}

// ── Step constructors ─────────────────────────────────────────────────────────

// DecodeWith returns a decode step bound to the given registry and limits.
func DecodeWith(reg core.Registry, limits core.Limits) core.Step {
	return &pipeline.DecodeStep{Registry: reg, Limits: limits}
}

// Resize returns a resize step.  Pass 0 for one axis to preserve aspect ratio.
func Resize(width, height int) core.Step { return &pipeline.ResizeStep{Width: width, Height: height} }

// Grayscale returns a step that converts the image to grayscale.
func Grayscale() core.Step { return &pipeline.GrayscaleStep{} }
