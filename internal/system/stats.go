package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HostStats is a snapshot of the process and machine for the performance
// report.
type HostStats struct {
	CPUModel     string
	LogicalCPUs  int
	TotalMemory  uint64
	UsedPercent  float64
	ProcessRSS   uint64
	ProcessCPU   float64
	GoRoutines   int
	HeapInUseMiB float64
}

// CollectStats gathers HostStats. Missing readings are left zero; the
// error reports the first one that failed.
func CollectStats() (HostStats, error) {
	var (
		st       HostStats
		firstErr error
	)
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		st.CPUModel = infos[0].ModelName
	} else {
		keep(err)
	}
	n, err := cpu.Counts(true)
	keep(err)
	st.LogicalCPUs = n

	if vm, err := mem.VirtualMemory(); err == nil {
		st.TotalMemory = vm.Total
		st.UsedPercent = vm.UsedPercent
	} else {
		keep(err)
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			st.ProcessRSS = mi.RSS
		} else {
			keep(err)
		}
		if pct, err := p.CPUPercent(); err == nil {
			st.ProcessCPU = pct
		} else {
			keep(err)
		}
	} else {
		keep(err)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	st.GoRoutines = runtime.NumGoroutine()
	st.HeapInUseMiB = float64(ms.HeapInuse) / (1 << 20)

	if firstErr != nil {
		return st, fmt.Errorf("collect host stats: %w", firstErr)
	}
	return st, nil
}

// String formats the snapshot for the performance report.
func (s HostStats) String() string {
	return fmt.Sprintf(
		"CPU: %s (%d threads)\n"+
			"Memory: %.1f GiB total, %.0f%% used\n"+
			"Process: RSS %.1f MiB, CPU %.1f%%, heap %.1f MiB, goroutines %d\n",
		s.CPUModel, s.LogicalCPUs,
		float64(s.TotalMemory)/(1<<30), s.UsedPercent,
		float64(s.ProcessRSS)/(1<<20), s.ProcessCPU, s.HeapInUseMiB, s.GoRoutines,
	)
}
