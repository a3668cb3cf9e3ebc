// Package metrics defines the payloads served by the hardware metrics backend
// and decodes them into typed values.
package metrics

import "math"

// CPU is one logical core as reported by the backend.
type CPU struct {
	Usage     float64 `json:"usage"`     // percent 0-100
	Frequency uint64  `json:"frequency"` // MHz
}

// Memory figures are in KB.
type Memory struct {
	Total     uint64 `json:"total"`
	Used      uint64 `json:"used"`
	Available uint64 `json:"available"`
}

// UsedPercent returns Used/Total*100. A zero total is not guarded.
func (m Memory) UsedPercent() float64 {
	return float64(m.Used) / float64(m.Total) * 100
}

// Disk space figures are in KB.
type Disk struct {
	Name           string  `json:"name"`
	PercentUsed    float64 `json:"percent_used"`
	AvailableSpace uint64  `json:"available_space"`
	TotalSpace     uint64  `json:"total_space"`
}

// Snapshot is one point-in-time read of the host.
type Snapshot struct {
	Timestamp int64  `json:"timestamp,omitempty"`
	CPUs      []CPU  `json:"cpus"`
	Memory    Memory `json:"memory"`
	Disks     []Disk `json:"disks"`
	Hostname  string `json:"hostname"`
	Uptime    uint64 `json:"uptime"` // seconds
}

// MeanCPUUsage averages the per-core usage. An empty core list yields NaN.
func (s Snapshot) MeanCPUUsage() float64 {
	if len(s.CPUs) == 0 {
		return math.NaN()
	}
	var total float64
	for _, c := range s.CPUs {
		total += c.Usage
	}
	return total / float64(len(s.CPUs))
}

// Anomalies are computed by the backend and consumed as-is. The backend omits
// a zero score.
type Anomalies struct {
	CPU         bool    `json:"cpu_anomaly"`
	Memory      bool    `json:"memory_anomaly"`
	CPUScore    float64 `json:"cpu_score,omitempty"`
	MemoryScore float64 `json:"memory_score,omitempty"`
}

// DashboardPayload is the body of the dashboard endpoint.
type DashboardPayload struct {
	Current   Snapshot  `json:"current_metrics"`
	Anomalies Anomalies `json:"anomalies"`
	Timestamp int64     `json:"timestamp"` // seconds since epoch
}

// History holds parallel, oldest-first percent series.
type History struct {
	CPU    []float64 `json:"cpu"`
	Memory []float64 `json:"memory"`
}
