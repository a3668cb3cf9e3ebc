package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload is wrapped by every decode failure so callers can tell a
// bad body apart from a transport or status failure.
var ErrMalformedPayload = errors.New("malformed payload")

func missing(path string) error {
	return fmt.Errorf("%w: %s is missing", ErrMalformedPayload, path)
}

func undecodable(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrMalformedPayload, typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
}

// The wire shapes use pointers so an absent field can be told apart from a zero value.

type wireCPU struct {
	Usage     *float64 `json:"usage"`
	Frequency *uint64  `json:"frequency"`
}

type wireMemory struct {
	Total     *uint64 `json:"total"`
	Used      *uint64 `json:"used"`
	Available *uint64 `json:"available"`
}

type wireDisk struct {
	Name           *string  `json:"name"`
	PercentUsed    *float64 `json:"percent_used"`
	AvailableSpace *uint64  `json:"available_space"`
	TotalSpace     *uint64  `json:"total_space"`
}

type wireSnapshot struct {
	Timestamp *int64      `json:"timestamp"`
	CPUs      *[]wireCPU  `json:"cpus"`
	Memory    *wireMemory `json:"memory"`
	Disks     *[]wireDisk `json:"disks"`
	Hostname  *string     `json:"hostname"`
	Uptime    *uint64     `json:"uptime"`
}

type wireAnomalies struct {
	CPU         *bool    `json:"cpu_anomaly"`
	Memory      *bool    `json:"memory_anomaly"`
	CPUScore    *float64 `json:"cpu_score"`
	MemoryScore *float64 `json:"memory_score"`
}

type wireDashboard struct {
	Current   *wireSnapshot  `json:"current_metrics"`
	Anomalies *wireAnomalies `json:"anomalies"`
	Timestamp *int64         `json:"timestamp"`
}

type wireHistory struct {
	CPU    *[]float64 `json:"cpu"`
	Memory *[]float64 `json:"memory"`
}

// ParseDashboard decodes and validates a dashboard body.
func ParseDashboard(data []byte) (DashboardPayload, error) {
	var w wireDashboard
	if err := json.Unmarshal(data, &w); err != nil {
		return DashboardPayload{}, undecodable(err)
	}
	if w.Current == nil {
		return DashboardPayload{}, missing("current_metrics")
	}
	if w.Anomalies == nil {
		return DashboardPayload{}, missing("anomalies")
	}
	if w.Timestamp == nil {
		return DashboardPayload{}, missing("timestamp")
	}

	snap, err := w.Current.snapshot("current_metrics")
	if err != nil {
		return DashboardPayload{}, err
	}
	anomalies, err := w.Anomalies.anomalies("anomalies")
	if err != nil {
		return DashboardPayload{}, err
	}

	return DashboardPayload{
		Current:   snap,
		Anomalies: anomalies,
		Timestamp: *w.Timestamp,
	}, nil
}

// ParseHistory decodes and validates a history body. The two series are not
// required to have the same length.
func ParseHistory(data []byte) (History, error) {
	var w wireHistory
	if err := json.Unmarshal(data, &w); err != nil {
		return History{}, undecodable(err)
	}
	if w.CPU == nil {
		return History{}, missing("cpu")
	}
	if w.Memory == nil {
		return History{}, missing("memory")
	}
	return History{CPU: *w.CPU, Memory: *w.Memory}, nil
}

func (w *wireSnapshot) snapshot(path string) (Snapshot, error) {
	switch {
	case w.CPUs == nil:
		return Snapshot{}, missing(path + ".cpus")
	case w.Memory == nil:
		return Snapshot{}, missing(path + ".memory")
	case w.Disks == nil:
		return Snapshot{}, missing(path + ".disks")
	case w.Hostname == nil:
		return Snapshot{}, missing(path + ".hostname")
	case w.Uptime == nil:
		return Snapshot{}, missing(path + ".uptime")
	}

	s := Snapshot{
		CPUs:     make([]CPU, 0, len(*w.CPUs)),
		Disks:    make([]Disk, 0, len(*w.Disks)),
		Hostname: *w.Hostname,
		Uptime:   *w.Uptime,
	}
	if w.Timestamp != nil {
		s.Timestamp = *w.Timestamp
	}

	for i, c := range *w.CPUs {
		at := fmt.Sprintf("%s.cpus[%d]", path, i)
		if c.Usage == nil {
			return Snapshot{}, missing(at + ".usage")
		}
		if c.Frequency == nil {
			return Snapshot{}, missing(at + ".frequency")
		}
		s.CPUs = append(s.CPUs, CPU{Usage: *c.Usage, Frequency: *c.Frequency})
	}

	m := w.Memory
	switch {
	case m.Total == nil:
		return Snapshot{}, missing(path + ".memory.total")
	case m.Used == nil:
		return Snapshot{}, missing(path + ".memory.used")
	case m.Available == nil:
		return Snapshot{}, missing(path + ".memory.available")
	}
	s.Memory = Memory{Total: *m.Total, Used: *m.Used, Available: *m.Available}

	for i, d := range *w.Disks {
		at := fmt.Sprintf("%s.disks[%d]", path, i)
		switch {
		case d.Name == nil:
			return Snapshot{}, missing(at + ".name")
		case d.PercentUsed == nil:
			return Snapshot{}, missing(at + ".percent_used")
		case d.AvailableSpace == nil:
			return Snapshot{}, missing(at + ".available_space")
		case d.TotalSpace == nil:
			return Snapshot{}, missing(at + ".total_space")
		}
		s.Disks = append(s.Disks, Disk{
			Name:           *d.Name,
			PercentUsed:    *d.PercentUsed,
			AvailableSpace: *d.AvailableSpace,
			TotalSpace:     *d.TotalSpace,
		})
	}

	return s, nil
}

func (w *wireAnomalies) anomalies(path string) (Anomalies, error) {
	if w.CPU == nil {
		return Anomalies{}, missing(path + ".cpu_anomaly")
	}
	if w.Memory == nil {
		return Anomalies{}, missing(path + ".memory_anomaly")
	}
	a := Anomalies{CPU: *w.CPU, Memory: *w.Memory}
	if w.CPUScore != nil {
		a.CPUScore = *w.CPUScore
	}
	if w.MemoryScore != nil {
		a.MemoryScore = *w.MemoryScore
	}
	return a, nil
}
