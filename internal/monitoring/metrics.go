package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsReserved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_reserved_total",
			Help: "Tickets reserved, by category",
		},
		[]string{"category"},
	)

	paymentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_outcomes_total",
			Help: "Terminal payment transitions, by outcome",
		},
		[]string{"outcome"},
	)

	callbackVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_callbacks_total",
			Help: "Gateway callback deliveries, by path and acknowledgement code",
		},
		[]string{"path", "rsp_code"},
	)
)

func TicketReserved(category string) {
	ticketsReserved.WithLabelValues(category).Inc()
}

func PaymentOutcome(outcome string) {
	paymentOutcomes.WithLabelValues(outcome).Inc()
}

func CallbackVerdict(path, rspCode string) {
	callbackVerdicts.WithLabelValues(path, rspCode).Inc()
}
