package system

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats - снимок ресурсов машины и процесса.
type Stats struct {
	LogicalCPUs  int
	TotalMemory  uint64
	AvailMemory  uint64
	ProcessRSS   uint64
	GoHeap       uint64
	NumGoroutine int
	CollectedAt  time.Time
}

// Collect собирает статистику. Недоступные метрики остаются нулевыми.
func Collect() Stats {
	s := Stats{NumGoroutine: runtime.NumGoroutine(), CollectedAt: time.Now()}

	if n, err := cpu.Counts(true); err == nil {
		s.LogicalCPUs = n
	} else {
		s.LogicalCPUs = runtime.NumCPU()
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.TotalMemory = vm.Total
		s.AvailMemory = vm.Available
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			s.ProcessRSS = mi.RSS
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.GoHeap = ms.HeapAlloc
	return s
}

// WorkerCount подбирает число потоков рендера.
// Явное значение requested > 0 используется как есть. Иначе берется число ядер,
// но так, чтобы кадры в очереди (по 4 на поток) занимали не больше четверти свободной памяти.
func (s Stats) WorkerCount(requested int, frameBytes uint64) int {
	if requested > 0 {
		return requested
	}
	n := s.LogicalCPUs
	if n < 1 {
		n = 1
	}
	if s.AvailMemory > 0 && frameBytes > 0 {
		byMemory := int(s.AvailMemory / 4 / (frameBytes * 4))
		if byMemory < n {
			n = byMemory
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (s Stats) String() string {
	return fmt.Sprintf("CPU: %d, RAM: %s свободно из %s, RSS: %s, heap: %s, горутин: %d",
		s.LogicalCPUs, humanBytes(s.AvailMemory), humanBytes(s.TotalMemory),
		humanBytes(s.ProcessRSS), humanBytes(s.GoHeap), s.NumGoroutine)
}

func humanBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
