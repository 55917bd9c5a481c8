package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we are tightly coupled to the prometheus collector type;
	// the go otel metrics sdk also has a prometheus adapter that implements
	// this interface.
	prometheus.Collector
}

type Metrics struct {
	// EventCount counts events received from the RTM firehose.
	EventCount Observer
	// CommandCount counts resolved command invocations by command name.
	CommandCount Observer
	// CommandLatency observes seconds from resolve to report by command name.
	CommandLatency Observer
	// SendErrors counts failed sends back to the chat service.
	SendErrors Observer
	// RemoteErrors counts failed calls to the surveillance system.
	RemoteErrors Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EventCount,
		m.CommandCount,
		m.CommandLatency,
		m.SendErrors,
		m.RemoteErrors,
	}
}
