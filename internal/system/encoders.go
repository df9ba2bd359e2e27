package system

import (
	"os/exec"
	"strings"
	"sync"
)

var (
	probeMu    sync.Mutex
	probeCache = map[string]string{}
)

// HasEncoder reports whether the ffmpeg binary lists the named encoder.
// The `-encoders` listing is read once per binary.
func HasEncoder(binary, name string) bool {
	if binary == "" {
		binary = "ffmpeg"
	}
	probeMu.Lock()
	defer probeMu.Unlock()

	out, ok := probeCache[binary]
	if !ok {
		raw, err := exec.Command(binary, "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			// не кэшируем: ffmpeg могут доустановить, пока процесс жив
			return false
		}
		out = string(raw)
		probeCache[binary] = out
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

// GetBestWebMEncoder выбирает кодек для webm.
// Приоритеты:
// 1. libvpx-vp9 (программный VP9)
// 2. vp9_qsv (Intel Quick Sync)
func GetBestWebMEncoder(binary string) (string, bool) {
	for _, name := range []string{"libvpx-vp9", "vp9_qsv"} {
		if HasEncoder(binary, name) {
			return name, true
		}
	}
	return "", false
}
