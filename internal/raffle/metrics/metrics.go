package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EntriesTotal         prometheus.Counter
	DrawsTriggeredTotal  prometheus.Counter
	RoundsCompletedTotal prometheus.Counter
	PayoutFailuresTotal  prometheus.Counter
	RejectedEntriesTotal prometheus.Counter
	PoolBalance          prometheus.Gauge
	Participants         prometheus.Gauge
	RoundCalculating     prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		EntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "raffle_entries_total",
			Help: "Total number of accepted raffle entries",
		}),
		DrawsTriggeredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "raffle_draws_triggered_total",
			Help: "Total number of draws triggered",
		}),
		RoundsCompletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "raffle_rounds_completed_total",
			Help: "Total number of rounds completed with a paid-out winner",
		}),
		PayoutFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "raffle_payout_failures_total",
			Help: "Total number of fulfillments aborted by a failed payout transfer",
		}),
		RejectedEntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "raffle_rejected_entries_total",
			Help: "Total number of entries rejected by validation or round state",
		}),
		PoolBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "raffle_pool_balance",
			Help: "Pooled balance of the current round in base units",
		}),
		Participants: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "raffle_participants",
			Help: "Number of participants in the current round",
		}),
		RoundCalculating: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "raffle_round_calculating",
			Help: "1 while a randomness request is outstanding, 0 while the round is open",
		}),
	}
}

func (m *Metrics) RecordEntry(pool uint64, participants int) {
	m.EntriesTotal.Inc()
	m.PoolBalance.Set(float64(pool))
	m.Participants.Set(float64(participants))
}

func (m *Metrics) RecordRejectedEntry() {
	m.RejectedEntriesTotal.Inc()
}

func (m *Metrics) RecordDrawTriggered() {
	m.DrawsTriggeredTotal.Inc()
	m.RoundCalculating.Set(1)
}

func (m *Metrics) RecordDrawReverted() {
	m.RoundCalculating.Set(0)
}

func (m *Metrics) RecordPayoutFailure() {
	m.PayoutFailuresTotal.Inc()
}

func (m *Metrics) RecordRoundCompleted() {
	m.RoundsCompletedTotal.Inc()
	m.PoolBalance.Set(0)
	m.Participants.Set(0)
	m.RoundCalculating.Set(0)
}
