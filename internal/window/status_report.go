package window

import (
	"time"

	"calbotd/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := "waiting"
	if m.cyclesTotal > 0 {
		state = "ready"
	}
	resp := types.StatusResponse{
		WindowCount:    len(m.window),
		WindowSize:     m.windowSize,
		State:          state,
		LastOutcome:    string(m.lastOutcome),
		LastReason:     m.lastReason,
		CyclesTotal:    m.cyclesTotal,
		UpdatesTotal:   m.updatesTotal,
		PreservedTotal: m.preservedTotal,
		NoDataTotal:    m.noDataTotal,
		Timezone:       m.tzName,
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if !m.lastCycle.IsZero() {
		resp.LastRefreshUnix = m.lastCycle.Unix()
	}
	if m.invalidator != nil {
		resp.WindowVersion = m.invalidator.Version()
	}
	return resp
}
