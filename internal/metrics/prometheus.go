package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the relay.
type Metrics struct {
	// Connection metrics
	ConnectedClients prometheus.Gauge
	ActiveRooms      prometheus.Gauge

	// Frame metrics
	FramesReceived *prometheus.CounterVec
	ParseErrors    prometheus.Counter

	// Audio metrics
	AudioChunksReceived prometheus.Counter
	AudioBytesReceived  prometheus.Counter

	// Transcript metrics
	TranscriptionsRelayed prometheus.Counter

	// Agent metrics
	AgentRequests      prometheus.Counter
	ProposalsDelivered prometheus.Counter
	ProposalErrors     prometheus.Counter

	// Persistence metrics
	SectionActions  *prometheus.CounterVec
	EncounterWrites prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "consulta_connected_clients",
			Help: "Number of websocket clients currently connected",
		}),
		ActiveRooms: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "consulta_active_rooms",
			Help: "Number of call rooms with at least one client",
		}),
		FramesReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consulta_frames_received_total",
			Help: "Total inbound frames by message type",
		}, []string{"type"}),
		ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_parse_errors_total",
			Help: "Total inbound frames dropped as malformed",
		}),
		AudioChunksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_audio_chunks_received_total",
			Help: "Total audio_chunk frames received",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_audio_bytes_received_total",
			Help: "Total decoded PCM bytes received",
		}),
		TranscriptionsRelayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_transcriptions_relayed_total",
			Help: "Total transcription frames fanned out to room peers",
		}),
		AgentRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_agent_requests_total",
			Help: "Total process_with_agent requests forwarded to the agent",
		}),
		ProposalsDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_proposals_delivered_total",
			Help: "Total proposal frames delivered back to rooms",
		}),
		ProposalErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_proposal_errors_total",
			Help: "Total proposal_error frames delivered back to rooms",
		}),
		SectionActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consulta_section_actions_total",
			Help: "Total section_action frames by action",
		}, []string{"accion"}),
		EncounterWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consulta_encounter_writes_total",
			Help: "Total encounter rows persisted",
		}),
	}
}
