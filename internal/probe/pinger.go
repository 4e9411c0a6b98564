package probe

import (
	"context"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// ping sends one round of ICMP echoes to host and returns the average RTT.
// Windows requires privileged (raw socket) mode; everywhere else the
// unprivileged UDP path is used so the process needs no extra capabilities.
func (m *Module) ping(ctx context.Context, host string) (time.Duration, bool) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		m.logger.Debug("failed to create pinger", zap.String("host", host), zap.Error(err))
		return 0, false
	}

	pinger.Count = m.cfg.PingCount
	pinger.Timeout = m.cfg.PingTimeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if runErr := pinger.Run(); runErr != nil {
			m.logger.Debug("ping failed", zap.String("host", host), zap.Error(runErr))
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		pinger.Stop()
		return 0, false
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, false
	}
	return stats.AvgRtt, true
}
