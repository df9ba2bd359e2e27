package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ivlev/rosebloom/internal/config"
	"github.com/ivlev/rosebloom/internal/engine"
	"github.com/ivlev/rosebloom/internal/preview"
	"github.com/ivlev/rosebloom/internal/share"
	"github.com/ivlev/rosebloom/internal/system"
)

// version задаётся при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	modePtr := flag.String("mode", "export", "Режим: export (видео), preview (окно), poster (PNG кадр), serve (раздать последнее видео)")
	configPtr := flag.String("config", "", "YAML-файл с настройками сцены и вывода")
	outputPtr := flag.String("output", "", "Путь к результату (если пусто, генерируется автоматически в output/)")
	inputPtr := flag.String("input", "", "Видео для режима serve (по умолчанию: самый свежий webm в output/)")
	widthPtr := flag.Int("width", 1280, "Ширина (CSS пиксели)")
	heightPtr := flag.Int("height", 720, "Высота (CSS пиксели)")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram), 1:1")
	fpsPtr := flag.Int("fps", 60, "FPS записи")
	ratioPtr := flag.Float64("pixel-ratio", 1, "Плотность пикселей (devicePixelRatio)")
	durationPtr := flag.Duration("duration", 0, "Длительность анимации (по умолчанию 14s)")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки рендера")
	qualityPtr := flag.Int("quality", 0, "Качество VP9 (CRF 0-63, 0 - из конфига)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и записать benchmark.log")
	layersPtr := flag.String("layers", "", "Слои для poster через запятую (по умолчанию все)")
	progressPtr := flag.Float64("progress", 1, "Прогресс кадра для poster (0..1)")
	addrPtr := flag.String("addr", "", "Адрес HTTP сервера для serve/-share")
	dumpPtr := flag.String("dump-config", "", "Сохранить итоговые настройки в YAML и выйти")
	sharePtr := flag.Bool("share", false, "Раздать видео по HTTP с QR-кодом (export: после экспорта, preview: последнюю запись)")

	flag.Parse()

	cfg := config.Default()
	cfg.BuildVersion = version
	if *configPtr != "" {
		if err := cfg.Load(*configPtr); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		fmt.Printf("[*] Конфиг: %s\n", *configPtr)
	}

	// флаги, заданные явно, важнее конфига
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.OutputVideo = *outputPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "pixel-ratio":
			cfg.PixelRatio = *ratioPtr
		case "duration":
			cfg.Duration = *durationPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "quality":
			if *qualityPtr > 0 {
				cfg.Quality = *qualityPtr
			}
		case "stats":
			cfg.ShowStats = *statsPtr
		case "addr":
			cfg.Addr = *addrPtr
		}
	})
	if err := cfg.ApplyPreset(*presetPtr); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	if *dumpPtr != "" {
		if err := cfg.Save(*dumpPtr); err != nil {
			log.Fatalf("[-] Ошибка сохранения конфига: %v", err)
		}
		fmt.Printf("[+++] Конфиг сохранен: %s\n", *dumpPtr)
		return
	}

	// Создаем нужные директории, если их нет
	os.MkdirAll(cfg.OutputDir, 0755)

	switch *modePtr {
	case "export":
		runExport(cfg, *sharePtr)
	case "preview":
		runPreview(cfg, *sharePtr)
	case "poster":
		runPoster(cfg, *progressPtr, *layersPtr)
	case "serve":
		runServe(cfg, *inputPtr)
	default:
		log.Fatalf("[-] Неизвестный режим %q", *modePtr)
	}
}

func pickEncoder(cfg *config.Config) {
	encoderName, ok := system.GetBestWebMEncoder(cfg.FFmpeg)
	if !ok {
		log.Printf("[!] %s не поддерживает VP9, запись может не сработать", cfg.FFmpeg)
		return
	}
	if encoderName != cfg.VideoEncoder {
		fmt.Printf("[*] Кодек %s недоступен, используется %s\n", cfg.VideoEncoder, encoderName)
		cfg.VideoEncoder = encoderName
	}
}

func runExport(cfg *config.Config, serve bool) {
	pickEncoder(cfg)

	finalOutput := cfg.OutputVideo
	if finalOutput == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join(cfg.OutputDir, fmt.Sprintf("rose-bloom_%s.webm", timestamp))
	}

	eng, err := engine.New(cfg, engine.Options{})
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации: %v", err)
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := eng.Export(ctx, finalOutput)
	if err != nil {
		log.Fatalf("[-] Ошибка экспорта: %v", err)
	}
	fmt.Printf("[+++] Успех! Результат: %s (%d кадров, %.1f KiB)\n", res.Path, res.Frames, float64(res.Bytes)/1024)

	if serve {
		if err := share.Serve(cfg.Addr, share.FileSource{Path: res.Path}); err != nil {
			log.Fatalf("[-] Ошибка сервера: %v", err)
		}
	}
}

func runPreview(cfg *config.Config, serve bool) {
	pickEncoder(cfg)

	eng, err := engine.New(cfg, engine.Options{Pumped: true})
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации: %v", err)
	}
	defer eng.Close()

	if serve {
		// окно занимает главный поток, сервер живет рядом
		go func() {
			if err := share.Serve(cfg.Addr, share.MediaSource{Latest: eng.Media}); err != nil {
				log.Printf("[!] Ошибка сервера: %v", err)
			}
		}()
	}

	fmt.Println("[*] R - заново, V - записать, Esc - выход")
	if err := preview.Run(eng, cfg.OutputDir); err != nil {
		log.Fatalf("[-] Ошибка окна: %v", err)
	}
}

func runServe(cfg *config.Config, input string) {
	path := input
	if path == "" {
		latest, err := system.FindLatestVideo(cfg.OutputDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Сначала запустите -mode export", err)
		}
		path = latest
	}
	fmt.Printf("[*] Выбран файл: %s\n", path)
	if dur, err := system.GetVideoDuration(path); err == nil {
		fmt.Printf("[*] Длительность: %.2fs\n", dur)
	}
	if err := share.Serve(cfg.Addr, share.FileSource{Path: path}); err != nil {
		log.Fatalf("[-] Ошибка сервера: %v", err)
	}
}
