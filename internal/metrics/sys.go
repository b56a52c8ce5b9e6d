package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
)

// Health is a snapshot of process memory and the size of the data
// directory holding the local database.
type Health struct {
	AllocMB    uint64 `json:"alloc_mb"`
	SysMB      uint64 `json:"sys_mb"`
	NumGC      uint32 `json:"num_gc"`
	Goroutines int    `json:"goroutines"`
	DataBytes  int64  `json:"data_bytes"`
}

// ReadHealth takes a snapshot. An unreadable dataDir counts as empty.
func ReadHealth(dataDir string) Health {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Health{
		AllocMB:    m.Alloc >> 20,
		SysMB:      m.Sys >> 20,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		DataBytes:  dirSize(dataDir),
	}
}

// DataSize renders DataBytes for people.
func (h Health) DataSize() string {
	return humanBytes(h.DataBytes)
}

func dirSize(dir string) int64 {
	var size int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
