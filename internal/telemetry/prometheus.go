package telemetry

import "github.com/prometheus/client_golang/prometheus"

const livelookNamespace string = "livelook"

var (
	promClientsTotal        prometheus.Gauge
	promRoomsTotal          prometheus.Gauge
	promFramesEmitted       prometheus.Counter
	promFramesSuppressed    prometheus.Counter
	promRecomputations      *prometheus.CounterVec
	promBusMessages         *prometheus.CounterVec
	ServiceOperationCounter *prometheus.CounterVec
)

func init() {
	promClientsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: livelookNamespace,
		Subsystem: "layout",
		Name:      "clients_total",
	})

	promRoomsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: livelookNamespace,
		Subsystem: "layout",
		Name:      "rooms_total",
	})

	promFramesEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: livelookNamespace,
		Subsystem: "layout",
		Name:      "frames_emitted",
	})

	promFramesSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: livelookNamespace,
		Subsystem: "layout",
		Name:      "frames_suppressed",
	})

	promRecomputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: livelookNamespace,
			Subsystem: "layout",
			Name:      "recomputations",
		},
		[]string{"component"},
	)

	promBusMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: livelookNamespace,
			Subsystem: "eventbus",
			Name:      "messages",
		},
		[]string{"method", "status"},
	)

	ServiceOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   livelookNamespace,
			Subsystem:   "node",
			Name:        "service_operation",
			ConstLabels: prometheus.Labels{"node_id": "1"},
		},
		[]string{"type", "status", "error_type"},
	)

	prometheus.MustRegister(promClientsTotal)
	prometheus.MustRegister(promRoomsTotal)
	prometheus.MustRegister(promFramesEmitted)
	prometheus.MustRegister(promFramesSuppressed)
	prometheus.MustRegister(promRecomputations)
	prometheus.MustRegister(promBusMessages)
	prometheus.MustRegister(ServiceOperationCounter)
}

func ClientAttached() {
	promClientsTotal.Inc()
}

func ClientDetached() {
	promClientsTotal.Dec()
}

func RoomOpened() {
	promRoomsTotal.Inc()
}

func RoomClosed() {
	promRoomsTotal.Dec()
}

func FrameEmitted() {
	promFramesEmitted.Inc()
}

func FrameSuppressed() {
	promFramesSuppressed.Inc()
}

// Recomputed counts a memo miss of a layout component
func Recomputed(component string) {
	promRecomputations.WithLabelValues(component).Inc()
}

func BusMessage(method string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	promBusMessages.WithLabelValues(method, status).Inc()
}
