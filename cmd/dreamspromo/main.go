package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ivlev/dreams-promo/internal/config"
	"github.com/ivlev/dreams-promo/internal/engine"
	"github.com/ivlev/dreams-promo/internal/source"
	"github.com/ivlev/dreams-promo/internal/system"
	"github.com/ivlev/dreams-promo/internal/video"
	"github.com/joho/godotenv"
)

// buildVersion задается при сборке: -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/icons", "input/audio", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[!] Не удалось прочитать .env: %v", err)
	}

	configPtr := flag.String("config", "", "YAML-файл конфигурации")
	assetPtr := flag.String("asset", "", "Путь к SVG/PDF иконке или папке (по умолчанию: самый свежий файл в input/icons/)")
	colorPtr := flag.String("color", "", "Цвет бренда, например #9938EB")
	variantPtr := flag.String("variant", "", "Вариант глифа: thicken, fill")
	outroPtr := flag.Bool("outro", false, "Финальное уменьшение и затухание (по умолчанию зависит от варианта)")
	skipPtr := flag.Int("glyph-skip", 1, "Сколько первых контуров SVG считать фоном")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	previewPtr := flag.String("preview", "", "Путь к APNG-превью")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	timelinePtr := flag.String("timeline", "", "Сохранить таймлайн в YAML")
	dryRunPtr := flag.Bool("dry-run", false, "Только построить таймлайн, без рендера")
	presetPtr := flag.String("preset", "", "Пресет формата: 1:1, 9:16 (Shorts/TikTok), 16:9")
	widthPtr := flag.Int("width", 0, "Ширина")
	heightPtr := flag.Int("height", 0, "Высота")
	fpsPtr := flag.Int("fps", 0, "FPS")
	workersPtr := flag.Int("workers", 0, "Потоки рендера (0 - авто по CPU и памяти)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	encoderPtr := flag.String("encoder", "", "Энкодер ffmpeg (по умолчанию: лучший доступный H.264)")
	fontPtr := flag.String("font", "", "Путь к TTF/OTF шрифту логотипа")
	glowPtr := flag.Float64("glow", 0, "Радиус свечения под иконкой в пикселях")
	qrPtr := flag.String("qr", "", "URL для QR-кода под логотипом")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("[-] Ошибка окружения: %v", err)
	}
	if err := cfg.Merge(*configPtr); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}
	cfg.BuildVersion = buildVersion

	// Флаги перекрывают файл и окружение, только если заданы явно.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "asset":
			cfg.AssetPath = *assetPtr
		case "color":
			cfg.BrandColor = *colorPtr
		case "variant":
			cfg.Variant = *variantPtr
		case "outro":
			cfg.Outro = outroPtr
		case "glyph-skip":
			cfg.GlyphSkip = *skipPtr
		case "output":
			cfg.OutputVideo = *outputPtr
		case "preview":
			cfg.PreviewAPNG = *previewPtr
		case "audio":
			cfg.AudioPath = *audioPtr
		case "timeline":
			cfg.TimelinePath = *timelinePtr
		case "dry-run":
			cfg.DryRun = *dryRunPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "encoder":
			cfg.VideoEncoder = *encoderPtr
		case "font":
			cfg.FontPath = *fontPtr
		case "glow":
			cfg.GlowSigma = *glowPtr
		case "qr":
			cfg.QRURL = *qrPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})

	if err := cfg.ApplyPreset(*presetPtr); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	// Кадр сцены должен иметь те же пропорции, что и видео.
	if cfg.Height > 0 && cfg.FrameHeight > 0 &&
		math.Abs(float64(cfg.Width)/float64(cfg.Height)-cfg.FrameWidth/cfg.FrameHeight) > 1e-6 {
		cfg.FitFrame()
	}

	cfg.AssetPath = system.ResolveAsset(cfg.AssetPath, "input/icons")

	// Обработка аудио
	if cfg.AudioPath == "" {
		if latest, err := system.FindLatestAudio("input/audio"); err == nil {
			cfg.AudioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", cfg.AudioPath)
		}
	}
	if cfg.AudioPath != "" {
		if d, err := system.GetAudioDuration(cfg.AudioPath); err == nil {
			fmt.Printf("[*] Длительность аудио: %.2fs (видео обрежет его по своей длине)\n", d)
		} else {
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		}
	}

	if cfg.OutputVideo == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("dreams_%s_%s.mp4", cfg.Variant, timestamp))
	}

	if cfg.VideoEncoder == "" {
		cfg.VideoEncoder = system.GetBestH264Encoder()
		if cfg.VideoEncoder != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
		}
	}
	if cfg.Quality == 0 {
		cfg.Quality = video.DefaultQuality(cfg.VideoEncoder)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	bold, err := source.LoadFontShaper(cfg.FontPath, cfg.FontFamily+"-Bold", source.EmbeddedBold)
	if err != nil {
		log.Fatalf("[-] Ошибка шрифта: %v", err)
	}
	regular, err := source.LoadFontShaper("", cfg.FontFamily+"-Regular", source.EmbeddedRegular)
	if err != nil {
		log.Fatalf("[-] Ошибка шрифта: %v", err)
	}
	fmt.Printf("[*] Шрифты: %s / %s\n", bold.Name, regular.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	project := engine.NewProject(cfg, source.NewFileLoader(), bold, regular, engine.FFmpegOpener(&video.FFmpegEncoder{}))
	rep, err := project.Run(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if cfg.DryRun {
		fmt.Printf("[+++] Таймлайн готов: %d кадров, %.2fs (%s)\n", rep.Frames, rep.Duration, rep.Branch)
		return
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
	if cfg.PreviewAPNG != "" {
		fmt.Printf("[+++] Превью: %s\n", cfg.PreviewAPNG)
	}
}
