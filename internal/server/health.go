package server

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

var startedAt = time.Now()

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Sessions      int     `json:"sessions"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpuPercent"`
	RSSBytes      uint64  `json:"rssBytes"`
}

// handleHealth reports liveness plus process CPU and memory so operators can
// spot a leaking or spinning instance without attaching a profiler.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(startedAt).Seconds(),
		Sessions:      s.store.Len(),
		Goroutines:    runtime.NumGoroutine(),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			resp.CPUPercent = cpu
		}
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			resp.RSSBytes = mem.RSS
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}
