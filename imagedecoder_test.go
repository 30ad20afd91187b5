package imagedecoder_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	imagedecoder "github.com/Skryldev/imagedecoder"
	"github.com/Skryldev/imagedecoder/adapters/jxl"
	"github.com/Skryldev/imagedecoder/adapters/jxl/jxltest"
	"github.com/Skryldev/imagedecoder/config"
	"github.com/Skryldev/imagedecoder/core"
	apperrors "github.com/Skryldev/imagedecoder/errors"
	"github.com/Skryldev/imagedecoder/hooks"
	"github.com/Skryldev/imagedecoder/utils"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

// jxlStub is enough of a JPEG XL codestream for format detection; the test
// engines ignore its contents.
var jxlStub = []byte{0xFF, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

func newRedJPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func newBluePNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 50, G: 50, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

// serveImage returns a JPEG XL engine opener that hands out img regardless
// of the bitstream.
func serveImage(img image.Image, icc []byte) jxl.OpenFunc {
	return func(r io.Reader) (jxl.Engine, error) {
		if _, err := io.ReadAll(r); err != nil {
			return nil, err
		}
		return jxl.NewImageEngine(img, icc), nil
	}
}

func grayFixture() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	copy(g.Pix, []byte{0, 85, 170, 255})
	return g
}

func newProc(t *testing.T) *imagedecoder.Processor {
	t.Helper()
	return newProcWith(t, imagedecoder.DefaultConfig(), serveImage(grayFixture(), nil))
}

func newProcWith(t *testing.T, cfg config.Config, open jxl.OpenFunc) *imagedecoder.Processor {
	t.Helper()
	cfg.WorkerCount = 2
	cfg.QueueSize = 16
	p := imagedecoder.NewWithJXLEngine(cfg, open)
	p.Start()
	t.Cleanup(p.Stop)
	return p
}

// ── JPEG XL through the default engine ───────────────────────────────────────

func newDefaultProc(t *testing.T, cfg config.Config) *imagedecoder.Processor {
	t.Helper()
	p := imagedecoder.New(cfg)
	p.Start()
	t.Cleanup(p.Stop)
	return p
}

func TestNew_DecodesJXLBitstream(t *testing.T) {
	proc := newDefaultProc(t, imagedecoder.DefaultConfig())

	img, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxltest.Gray)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("Decode returned %T, want *image.Gray", img)
	}
	if want := []byte{0, 85, 170, 255}; !bytes.Equal(gray.Pix, want) {
		t.Errorf("pixels = %v, want %v", gray.Pix, want)
	}
}

func TestNew_JXLDimensionLimit(t *testing.T) {
	cfg := imagedecoder.DefaultConfig()
	cfg.Limits.MaxWidth = 1024
	proc := newDefaultProc(t, cfg)

	_, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxltest.Flat2048)))
	if !apperrors.IsLimit(err) {
		t.Fatalf("Decode = %v, want limit error", err)
	}
}

func TestNew_JXLCMYKRefused(t *testing.T) {
	proc := newDefaultProc(t, imagedecoder.DefaultConfig())

	_, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxltest.CMYK)))
	if !apperrors.IsUnsupported(err) {
		t.Fatalf("Decode = %v, want unsupported error", err)
	}
}

// ── JPEG XL ───────────────────────────────────────────────────────────────────

func TestDecode_JXLGray(t *testing.T) {
	proc := newProc(t)

	img, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxlStub)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("Decode returned %T, want *image.Gray", img)
	}
	if want := grayFixture().Pix; !bytes.Equal(gray.Pix, want) {
		t.Errorf("pixels = %v, want %v", gray.Pix, want)
	}
	if processed, _ := proc.Stats(); processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
}

func TestOpen_JXLReportsICC(t *testing.T) {
	icc := []byte("fake icc")
	proc := newProcWith(t, imagedecoder.DefaultConfig(), serveImage(grayFixture(), icc))

	dec, err := proc.Open(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxlStub)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := dec.ICCProfile()
	if err != nil {
		t.Fatalf("ICCProfile: %v", err)
	}
	if !bytes.Equal(got, icc) {
		t.Errorf("ICCProfile = %q, want %q", got, icc)
	}
}

func TestDecode_JXLCMYKRefused(t *testing.T) {
	cmyk := image.NewCMYK(image.Rect(0, 0, 4, 4))
	proc := newProcWith(t, imagedecoder.DefaultConfig(), serveImage(cmyk, nil))

	result, err := proc.Process(context.Background(),
		imagedecoder.FromReader(bytes.NewReader(jxlStub)),
		proc.Probe(),
	)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	meta := result.Primary.Meta
	if meta.OriginalColorType != core.ExtendedCMYK8 || meta.ColorType != core.ColorRGB8 {
		t.Errorf("probe color types = %v / %v, want Rgb8 / Cmyk8", meta.ColorType, meta.OriginalColorType)
	}

	_, err = proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxlStub)))
	if !apperrors.IsUnsupported(err) {
		t.Fatalf("Decode = %v, want unsupported error", err)
	}
	if !apperrors.IsCategory(err, apperrors.CategoryUnsupported) {
		t.Errorf("category lost in %v", err)
	}
	if _, failed := proc.Stats(); failed != 1 {
		t.Errorf("errors = %d, want 1", failed)
	}
}

func TestDecode_JXLEngineFailure(t *testing.T) {
	engineErr := errors.New("bad header")
	proc := newProcWith(t, imagedecoder.DefaultConfig(), func(io.Reader) (jxl.Engine, error) {
		return nil, engineErr
	})

	_, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxlStub)))
	var de *apperrors.DecodingError
	if !errors.As(err, &de) {
		t.Fatalf("Decode = %v, want DecodingError", err)
	}
	if de.Format != apperrors.FormatHintUnknown {
		t.Errorf("format hint = %q, want unknown", de.Format)
	}
	if !errors.Is(err, engineErr) {
		t.Error("engine diagnostic not preserved")
	}
}

func TestDecode_ContentTypeSelectsJXL(t *testing.T) {
	proc := newProc(t)
	// Container-less data with no signature; only the hint names the format.
	src := imagedecoder.FromReaderWithMeta(bytes.NewReader([]byte("opaque")), 6, "image/jxl", "x.jxl")
	if _, err := proc.Decode(context.Background(), src); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

// ── Standard formats ──────────────────────────────────────────────────────────

func TestProcess_PNG_Decode(t *testing.T) {
	proc := newProc(t)
	raw := newBluePNG(t, 100, 100)

	result, err := proc.Process(context.Background(),
		imagedecoder.FromReader(bytes.NewReader(raw)),
		proc.Decoder(),
	)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	meta := result.Primary.Meta
	if meta.Format != core.FormatPNG {
		t.Errorf("format: got %s, want png", meta.Format)
	}
	if meta.SizeBytes != int64(100*100*meta.ColorType.BytesPerPixel()) {
		t.Errorf("SizeBytes = %d for %v", meta.SizeBytes, meta.ColorType)
	}
}

func TestProcess_JPEG_Resize(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 800, 600)

	result, err := proc.Process(context.Background(),
		imagedecoder.FromReader(bytes.NewReader(raw)),
		proc.Decoder(),
		imagedecoder.Resize(400, 0),
	)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	got := result.Primary
	if got.Meta.Width != 400 {
		t.Errorf("width: got %d, want 400", got.Meta.Width)
	}
	// Aspect ratio: 800x600 → 400x300
	if got.Meta.Height != 300 {
		t.Errorf("height: got %d, want 300", got.Meta.Height)
	}
	if b := got.Image.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("image bounds = %v", b)
	}
}

func TestProcess_Grayscale(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 50, 50)

	result, err := proc.Process(context.Background(),
		imagedecoder.FromReader(bytes.NewReader(raw)),
		proc.Decoder(),
		imagedecoder.Grayscale(),
	)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Primary.Meta.ColorType != core.ColorL8 {
		t.Errorf("color type: got %v, want L8", result.Primary.Meta.ColorType)
	}
	if _, ok := result.Primary.Image.(*image.Gray); !ok {
		t.Errorf("image type %T, want *image.Gray", result.Primary.Image)
	}
}

func TestProcess_ContextCancel(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 100, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := proc.Process(ctx,
		imagedecoder.FromReader(bytes.NewReader(raw)),
		proc.Decoder(),
	)
	if err == nil {
		t.Error("expected context cancellation error, got nil")
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	proc := newProc(t)
	_, err := proc.Decode(context.Background(),
		imagedecoder.FromReader(strings.NewReader("definitely not an image")))
	if !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("Decode = %v, want ErrUnsupportedFormat", err)
	}
}

// ── Limits ────────────────────────────────────────────────────────────────────

func TestOpen_DimensionLimit(t *testing.T) {
	cfg := imagedecoder.DefaultConfig()
	cfg.Limits.MaxWidth = 10
	proc := newProcWith(t, cfg, nil)

	_, err := proc.Open(context.Background(), imagedecoder.FromReader(bytes.NewReader(newBluePNG(t, 20, 5))))
	var le *apperrors.LimitError
	if !errors.As(err, &le) || le.Kind != apperrors.LimitDimensions {
		t.Fatalf("Open = %v, want dimension limit error", err)
	}
}

func TestDecode_AllocLimit(t *testing.T) {
	cfg := imagedecoder.DefaultConfig()
	cfg.Limits.MaxAlloc = 3 // the 2x2 gray fixture needs 4 bytes
	proc := newProcWith(t, cfg, serveImage(grayFixture(), nil))

	_, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxlStub)))
	var le *apperrors.LimitError
	if !errors.As(err, &le) || le.Kind != apperrors.LimitInsufficientMemory {
		t.Fatalf("Decode = %v, want insufficient memory", err)
	}
}

func TestLoad_InputTooLarge(t *testing.T) {
	cfg := imagedecoder.DefaultConfig()
	cfg.MaxImageBytes = 16
	proc := newProcWith(t, cfg, nil)

	_, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(newBluePNG(t, 8, 8))))
	if !errors.Is(err, apperrors.ErrInputTooLarge) {
		t.Errorf("Decode = %v, want ErrInputTooLarge", err)
	}
}

// ── Table-driven tests ────────────────────────────────────────────────────────

func TestScaleDimensions(t *testing.T) {
	tests := []struct {
		srcW, srcH, targetW, targetH int
		wantW, wantH                 int
	}{
		{800, 600, 400, 0, 400, 300},
		{800, 600, 0, 300, 400, 300},
		{800, 600, 200, 200, 200, 200},
		{800, 600, 0, 0, 800, 600},
	}
	for _, tc := range tests {
		gotW, gotH := utils.ScaleDimensions(tc.srcW, tc.srcH, tc.targetW, tc.targetH)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("ScaleDimensions(%d,%d,%d,%d) = %d,%d; want %d,%d",
				tc.srcW, tc.srcH, tc.targetW, tc.targetH, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

// ── Concurrency tests ─────────────────────────────────────────────────────────

func TestProcess_ConcurrentSafety(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 200, 200)

	const goroutines = 20
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			src := raw
			if idx%2 == 1 {
				src = jxlStub
			}
			_, errs[idx] = proc.Process(context.Background(),
				imagedecoder.FromReader(bytes.NewReader(src)),
				proc.Decoder(),
				imagedecoder.Resize(100, 0),
			)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: %v", i, err)
		}
	}
}

// ── Batch test ────────────────────────────────────────────────────────────────

func TestBatch(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 100, 100)

	sources := make([]core.Source, 5)
	for i := range sources {
		sources[i] = imagedecoder.FromReader(bytes.NewReader(raw))
	}

	results, errs := proc.Batch(context.Background(), sources,
		proc.Decoder(),
		imagedecoder.Resize(50, 50),
	)

	for i, err := range errs {
		if err != nil {
			t.Errorf("batch[%d]: %v", i, err)
		}
		if results[i] == nil {
			t.Errorf("batch[%d]: nil result", i)
		}
	}
}

// ── Async worker pool test ────────────────────────────────────────────────────

func TestWorkerPool_Async(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 100, 100)

	resultCh := make(chan core.JobResult, 1)
	job := core.Job{
		ID:     "test-job-1",
		Ctx:    context.Background(),
		Source: imagedecoder.FromReader(bytes.NewReader(raw)),
		Steps: []core.Step{
			proc.Decoder(),
			imagedecoder.Resize(50, 0),
		},
		ResultCh: resultCh,
	}

	if err := proc.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case res := <-resultCh:
		if res.Err != nil {
			t.Fatalf("async job error: %v", res.Err)
		}
		if res.Result.Primary.Meta.Width != 50 {
			t.Errorf("async width: got %d, want 50", res.Result.Primary.Meta.Width)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("async job timed out")
	}
}

// ── Hooks / metrics / logging ─────────────────────────────────────────────────

func TestMetricsHook(t *testing.T) {
	m := hooks.NewInMemoryMetrics()
	proc := newProc(t)
	proc.AddHook(hooks.NewMetricsHook(m))

	raw := newRedJPEG(t, 100, 100)
	_, err := proc.Process(context.Background(),
		imagedecoder.FromReader(bytes.NewReader(raw)),
		proc.Decoder(),
		imagedecoder.Resize(50, 0),
	)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	snap := m.Snapshot()
	if snap.StepCalls["resize"] == 0 {
		t.Error("resize step was not recorded in metrics")
	}
	if snap.TotalThroughputB == 0 {
		t.Error("no throughput recorded")
	}
}

func TestMetricsHook_RecordsErrorCategory(t *testing.T) {
	m := hooks.NewInMemoryMetrics()
	proc := newProcWith(t, imagedecoder.DefaultConfig(), serveImage(image.NewCMYK(image.Rect(0, 0, 1, 1)), nil))
	proc.AddHook(hooks.NewMetricsHook(m))

	_, err := proc.Process(context.Background(),
		imagedecoder.FromReader(bytes.NewReader(jxlStub)),
		proc.Decoder(),
	)
	if err == nil {
		t.Fatal("expected CMYK decode to fail")
	}
	snap := m.Snapshot()
	if snap.StepErrors["decode"] != 1 {
		t.Errorf("decode errors = %d, want 1", snap.StepErrors["decode"])
	}
	if snap.ErrorCategories[string(apperrors.CategoryUnsupported)] != 1 {
		t.Errorf("categories = %v", snap.ErrorCategories)
	}
}

func TestLogger_OpenEvents(t *testing.T) {
	var buf bytes.Buffer
	proc := newProc(t)
	proc.SetLogger(hooks.NewJSONLogger(&buf, "debug"))
	proc.AddHook(hooks.NewLoggingHook(hooks.NewJSONLogger(&buf, "debug")))

	if _, err := proc.Open(context.Background(), imagedecoder.FromReader(bytes.NewReader(jxlStub))); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !strings.Contains(buf.String(), `"msg":"decoder.open"`) {
		t.Errorf("missing decoder.open event in %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"original_color_type":"L8"`) {
		t.Errorf("missing color type in %s", buf.String())
	}

	buf.Reset()
	if _, err := proc.Process(context.Background(),
		imagedecoder.FromReader(bytes.NewReader(jxlStub)), proc.Decoder()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(buf.String(), `"msg":"pipeline.step.done"`) {
		t.Errorf("missing step event in %s", buf.String())
	}
}

// ── Custom step test ──────────────────────────────────────────────────────────

// brightenStep is a custom pipeline step for testing extensibility.
type brightenStep struct{ delta uint8 }

func (b *brightenStep) Name() string { return "brighten" }
func (b *brightenStep) Execute(_ context.Context, img *core.ImageData) (*core.ImageData, error) {
	src := img.Image
	if src == nil {
		return img, nil
	}
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bv, a := src.At(x, y).RGBA()
			dst.SetRGBA(x, y, color.RGBA{
				R: clampAdd(uint8(r>>8), b.delta),
				G: clampAdd(uint8(g>>8), b.delta),
				B: clampAdd(uint8(bv>>8), b.delta),
				A: uint8(a >> 8),
			})
		}
	}
	out := *img
	out.Image = dst
	return &out, nil
}

func clampAdd(a, b uint8) uint8 {
	if int(a)+int(b) > 255 {
		return 255
	}
	return a + b
}

func TestCustomStep(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 50, 50)

	p := proc.NewPipeline(proc.Decoder(), &brightenStep{delta: 10})
	img, err := proc.Inner().Load(context.Background(), imagedecoder.FromReader(bytes.NewReader(raw)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, timings, err := p.Run(context.Background(), img)
	if err != nil {
		t.Fatalf("Run with custom step: %v", err)
	}
	if _, ok := timings["brighten"]; !ok {
		t.Error("custom step not timed")
	}
	if _, ok := out.Image.(*image.RGBA); !ok {
		t.Errorf("custom step output %T", out.Image)
	}
}

// ── Config validation test ────────────────────────────────────────────────────

func TestConfigValidation(t *testing.T) {
	if err := config.Validate(config.Default()); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"chunk size", func(c *config.Config) { c.ChunkSize = 0 }},
		{"queue size", func(c *config.Config) { c.QueueSize = -1 }},
		{"max bytes", func(c *config.Config) { c.MaxImageBytes = -1 }},
		{"log level", func(c *config.Config) { c.LogLevel = "verbose" }},
	}
	for _, tc := range tests {
		cfg := config.Default()
		tc.mutate(&cfg)
		if err := config.Validate(cfg); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLimitsFromConfig(t *testing.T) {
	cfg := config.Default()
	l := core.LimitsFromConfig(cfg)
	if l.MaxImageWidth != cfg.Limits.MaxWidth || l.MaxImageHeight != cfg.Limits.MaxHeight || l.MaxAlloc != cfg.Limits.MaxAlloc {
		t.Errorf("LimitsFromConfig = %+v", l)
	}
	if l.MaxIntermediateAlloc != 0 {
		t.Error("intermediate limit set; no decoder supports it")
	}
}

// ── Benchmarks ────────────────────────────────────────────────────────────────

func BenchmarkDecode_JPEG(b *testing.B) {
	proc := imagedecoder.New(imagedecoder.DefaultConfig())
	raw := newRedJPEG(b, 1920, 1080)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := proc.Decode(context.Background(), imagedecoder.FromReader(bytes.NewReader(raw))); err != nil {
			b.Fatalf("Decode: %v", err)
		}
	}
}

func BenchmarkBatch_Parallel(b *testing.B) {
	proc := imagedecoder.New(imagedecoder.DefaultConfig())
	proc.Start()
	defer proc.Stop()

	raw := newRedJPEG(b, 800, 600)
	const batchSize = 10

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sources := make([]core.Source, batchSize)
		for j := range sources {
			sources[j] = imagedecoder.FromReader(bytes.NewReader(raw))
		}
		proc.Batch(context.Background(), sources,
			proc.Decoder(),
			imagedecoder.Resize(400, 0),
		)
	}
}
