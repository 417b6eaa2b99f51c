package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	checkinsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "habits",
		Name:      "checkins_total",
		Help:      "Number of successful habit check-ins.",
	})
	streakResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "habits",
		Name:      "streak_resets_total",
		Help:      "Number of check-ins that reset a streak after a missed day.",
	})
	lastCheckinGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tracker",
		Subsystem: "habits",
		Name:      "last_checkin_timestamp_seconds",
		Help:      "Unix timestamp of the most recent habit check-in.",
	})
	chatFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "chat",
		Name:      "fallbacks_total",
		Help:      "Number of chat requests answered with the static fallback reply.",
	})
)

func init() {
	prometheus.MustRegister(checkinsTotal, streakResetsTotal, lastCheckinGauge, chatFallbacksTotal)
}

// RecordCheckIn updates the check-in counters and watermark.
func RecordCheckIn(reset bool) {
	checkinsTotal.Inc()
	if reset {
		streakResetsTotal.Inc()
	}
	lastCheckinGauge.Set(float64(time.Now().Unix()))
}

// RecordChatFallback counts a chat request that degraded to the fallback reply.
func RecordChatFallback() {
	chatFallbacksTotal.Inc()
}
