package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/rosebloom/internal/system"
)

func (e *Engine) report(res *ExportResult, total, render, encode time.Duration) {
	cfg := e.Config
	fps := float64(res.Frames) / total.Seconds()

	host, err := system.CollectStats()
	if err != nil {
		fmt.Printf("[!] Статистика системы неполная: %v\n", err)
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU, sum over workers): %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Output: %.1f KiB\n"+
			"%s"+
			"----------------------------\n",
		cfg.BuildVersion, total.Seconds(), render.Seconds(), encode.Seconds(), fps,
		float64(res.Bytes)/1024, host,
	)
	if dur, err := system.GetVideoDuration(res.Path); err == nil {
		report += fmt.Sprintf("Video Duration: %.2fs\n", dur)
	}
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f | RSS: %.1fMiB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(res.Path),
		res.Frames,
		total.Seconds(),
		render.Seconds(),
		encode.Seconds(),
		fps,
		float64(host.ProcessRSS)/(1<<20),
	)

	if err := appendLog(benchmarkLog, logEntry); err != nil {
		fmt.Printf("[!] Не удалось записать %s: %v\n", benchmarkLog, err)
	}
}

const benchmarkLog = "benchmark.log"

func appendLog(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
