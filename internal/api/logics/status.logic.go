package logics

import (
	"math"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/utils"
)

// processStatus collects resource usage of this process and the host.
// Probes that fail leave their fields zero.
func processStatus() *models.ProcessStatus {
	st := &models.ProcessStatus{
		PID:         int32(os.Getpid()),
		Goroutines:  runtime.NumGoroutine(),
		CollectedAt: utils.FormatTimestamp(utils.NowUTC()),
	}

	if p, err := process.NewProcess(st.PID); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			st.RSSBytes = info.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			st.CPUPercent = round2(pct)
		}
	} else {
		utils.LogDebugWithContext("status", "process stats unavailable", err)
	}

	if avg, err := load.Avg(); err == nil {
		st.LoadAvg1, st.LoadAvg5, st.LoadAvg15 = round2(avg.Load1), round2(avg.Load5), round2(avg.Load15)
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		st.MemUsedPct = round2(vmem.UsedPercent)
	} else {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		st.RSSBytes = max(st.RSSBytes, ms.Sys)
	}
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
