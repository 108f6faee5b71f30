// Package sysstats 采集服务进程与主机的资源占用，供统计接口展示
package sysstats

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot 资源占用快照，采集失败的字段保持零值
type Snapshot struct {
	PID            int32   `json:"pid"`
	Goroutines     int     `json:"goroutines"`
	ProcessRSS     uint64  `json:"process_rss_bytes"`
	ProcessCPU     float64 `json:"process_cpu_percent"`
	HostCPUCores   int     `json:"host_cpu_cores"`
	HostMemUsedPct float64 `json:"host_mem_used_percent"`
}

// Collector 资源采集器
type Collector struct {
	proc *process.Process
}

// NewCollector 绑定当前进程
func NewCollector() (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{proc: proc}, nil
}

// Collect 采集一次快照。gopsutil 的单项错误只会让对应字段为零
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := Snapshot{
		PID:        c.proc.Pid,
		Goroutines: runtime.NumGoroutine(),
	}

	if info, err := c.proc.MemoryInfoWithContext(ctx); err == nil && info != nil {
		snap.ProcessRSS = info.RSS
	}
	if pct, err := c.proc.CPUPercentWithContext(ctx); err == nil {
		snap.ProcessCPU = pct
	}
	if cores, err := cpu.CountsWithContext(ctx, true); err == nil {
		snap.HostCPUCores = cores
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.HostMemUsedPct = vm.UsedPercent
	}

	return snap
}
