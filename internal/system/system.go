package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// fileLimit is enough for the ffmpeg pipes, the export output and the
// share server's connections.
const fileLimit = 2048

// InitResourceLimits поднимает мягкий лимит открытых файлов до fileLimit.
// Лимит, который уже выше, не трогаем.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}
	want := raisedLimit(rLimit.Cur, rLimit.Max)
	if want == rLimit.Cur {
		return
	}
	rLimit.Cur = want
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
		return
	}
	fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
}

// raisedLimit returns the soft limit to request: fileLimit capped by max,
// never below cur.
func raisedLimit(cur, max uint64) uint64 {
	want := uint64(fileLimit)
	if want > max {
		want = max
	}
	if want < cur {
		return cur
	}
	return want
}

// FindLatestVideo returns the newest .webm file in dir.
func FindLatestVideo(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".webm") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено webm-файлов", dir)
	}
	return latestFile, nil
}

// GetVideoDuration asks ffprobe for the container duration in seconds.
func GetVideoDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return duration, nil
}
