package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/dreams-promo/internal/config"
	"github.com/ivlev/dreams-promo/internal/director"
	"github.com/ivlev/dreams-promo/internal/renderer"
	"github.com/ivlev/dreams-promo/internal/scene"
	"github.com/ivlev/dreams-promo/internal/source"
	"github.com/ivlev/dreams-promo/internal/system"
	"github.com/ivlev/dreams-promo/internal/video"
)

// Opener starts the video output for a render.
type Opener func(ctx context.Context, cfg *config.Config) (video.FrameWriter, error)

// FFmpegOpener streams into ffmpeg and, when configured, also collects the APNG preview.
func FFmpegOpener(enc *video.FFmpegEncoder) Opener {
	return func(ctx context.Context, cfg *config.Config) (video.FrameWriter, error) {
		stream, err := enc.Open(ctx, cfg.OutputVideo, video.Params{
			Width:     cfg.Width,
			Height:    cfg.Height,
			FPS:       cfg.FPS,
			Encoder:   cfg.VideoEncoder,
			Quality:   cfg.Quality,
			AudioPath: cfg.AudioPath,
		})
		if err != nil {
			return nil, err
		}
		if cfg.PreviewAPNG == "" {
			return stream, nil
		}
		return video.Tee{stream, video.NewAPNGWriter(cfg.PreviewAPNG, cfg.PreviewSize, cfg.FPS)}, nil
	}
}

// Project renders the promo described by Config.
type Project struct {
	Config  *config.Config
	Loader  source.Loader
	Bold    *source.FontShaper
	Regular *source.FontShaper
	Open    Opener
}

func NewProject(cfg *config.Config, loader source.Loader, bold, regular *source.FontShaper, open Opener) *Project {
	return &Project{Config: cfg, Loader: loader, Bold: bold, Regular: regular, Open: open}
}

// Report summarises a finished run.
type Report struct {
	Branch   string
	Frames   int
	Duration float64 // seconds of video
	Workers  int
	Total    time.Duration
	Pipeline PipelineStats
	Timeline *director.Timeline
	Stats    system.Stats
}

// Run plays the sequence and encodes it. With DryRun only the timeline is built.
func (p *Project) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	cfg := p.Config
	seq := director.New(cfg, p.Loader, p.Bold, p.Regular)

	fmt.Println("--- [DREAMS PROMO] ---")
	fmt.Printf("[*] Ассет: %s | Вариант: %s | Цвет: %s\n", cfg.AssetPath, cfg.Variant, cfg.BrandColor)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS\n", cfg.Width, cfg.Height, cfg.FPS)
	fmt.Println("----------------------")

	rep := &Report{}
	var s *scene.Scene
	var res *director.Result

	if cfg.DryRun {
		s = scene.New(cfg.FPS, nil)
		var err error
		if res, err = seq.Run(ctx, s); err != nil {
			return nil, err
		}
		for _, st := range s.Steps() {
			fmt.Println(st.Describe())
		}
	} else {
		r := renderer.New(renderer.Options{
			Width:       cfg.Width,
			Height:      cfg.Height,
			FrameWidth:  cfg.FrameWidth,
			FrameHeight: cfg.FrameHeight,
			Background:  cfg.BackgroundColor(),
			GlowSigma:   cfg.GlowSigma,
		})
		frameBytes := uint64(cfg.Width * cfg.Height * 4)
		rep.Workers = system.Collect().WorkerCount(cfg.Workers, frameBytes)

		out, err := p.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка запуска кодировщика: %w", err)
		}
		pipe := NewPipeline(ctx, r, out, rep.Workers)
		s = scene.New(cfg.FPS, pipe)

		res, err = seq.Run(ctx, s)
		if err != nil {
			pipe.Abort(err)
			pipe.Close()
			return nil, err
		}
		if err := pipe.Close(); err != nil {
			return nil, fmt.Errorf("ошибка кодирования: %w", err)
		}
		rep.Pipeline = pipe.Stats()
	}

	rep.Branch = res.Branch
	rep.Frames = s.FrameCount()
	rep.Duration = s.Time()
	rep.Timeline = director.NewTimeline(s, res.Branch, cfg.Variant)
	rep.Total = time.Since(startTime)
	rep.Stats = system.Collect()

	if cfg.TimelinePath != "" {
		if err := director.WriteTimeline(rep.Timeline, cfg.TimelinePath); err != nil {
			return nil, fmt.Errorf("ошибка записи таймлайна: %w", err)
		}
		fmt.Printf("[*] Таймлайн сохранен: %s\n", cfg.TimelinePath)
	}

	if cfg.ShowStats {
		p.printReport(rep)
	}
	return rep, nil
}

func (p *Project) printReport(rep *Report) {
	fps := 0.0
	if rep.Total > 0 {
		fps = float64(rep.Frames) / rep.Total.Seconds()
	}
	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Branch: %s\n"+
			"Frames: %d (%.2fs)\n"+
			"Workers: %d\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU, summed): %.2fs\n"+
			"Frame buffers: %d\n"+
			"Effective FPS: %.2f\n"+
			"System: %s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, rep.Branch, rep.Frames, rep.Duration, rep.Workers,
		rep.Total.Seconds(), rep.Pipeline.RenderTime.Seconds(), rep.Pipeline.Allocated, fps, rep.Stats,
	)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Asset: %s | Branch: %s | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.AssetPath),
		rep.Branch,
		rep.Frames,
		rep.Total.Seconds(),
		rep.Pipeline.RenderTime.Seconds(),
		fps,
	)
	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
		return
	}
	f.WriteString(logEntry)
	f.Close()
}
