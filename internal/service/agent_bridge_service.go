package service

import (
	"context"
	"encoding/json"
	"log"

	"video-consulta-sync/internal/dto"
	"video-consulta-sync/internal/metrics"
	"video-consulta-sync/internal/pkg/logger"
	"video-consulta-sync/internal/websocket"
	"video-consulta-sync/pkg/channel"
	"video-consulta-sync/pkg/events"
	pktNats "video-consulta-sync/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IAgentBridgeService moves agent traffic across the process boundary: it
// drains queued process_with_agent requests onto the NATS bus where the
// external agent listens, and delivers the agent's proposal responses back
// into the originating room.
type IAgentBridgeService interface {
	Consume(ctx context.Context) error
}

type agentBridgeService struct {
	pubSub          *gochannel.GoChannel
	processTopic    string
	proposalSubject string
	natsPub         *pktNats.Publisher
	natsSub         *pktNats.Subscriber
	hub             *websocket.Hub
	metrics         *metrics.Metrics
	logger          logger.ILogger
}

func NewAgentBridgeService(
	pubSub *gochannel.GoChannel,
	processTopic string,
	proposalSubject string,
	natsPub *pktNats.Publisher,
	natsSub *pktNats.Subscriber,
	hub *websocket.Hub,
	m *metrics.Metrics,
	log logger.ILogger,
) IAgentBridgeService {
	return &agentBridgeService{
		pubSub:          pubSub,
		processTopic:    processTopic,
		proposalSubject: proposalSubject,
		natsPub:         natsPub,
		natsSub:         natsSub,
		hub:             hub,
		metrics:         m,
		logger:          log,
	}
}

// Consume starts both directions. The outbound drain runs until ctx ends;
// the inbound NATS consumer is durable so agent responses survive a relay
// restart.
func (s *agentBridgeService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.processTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.forwardRequest(ctx, msg)
		}
	}()

	if s.natsSub != nil {
		if err := s.natsSub.Subscribe("consulta."+s.proposalSubject, "agent-proposal-worker", s.handleProposal); err != nil {
			return err
		}
	}

	return nil
}

// forwardRequest ships one queued request to the agent's NATS subject.
func (s *agentBridgeService) forwardRequest(ctx context.Context, msg *message.Message) {
	var req dto.AgentRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		log.Printf("[ERROR] Failed to unmarshal agent request: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if s.natsPub == nil {
		s.logger.Warn("AgentBridge", "NATS unavailable, dropping agent request", map[string]interface{}{
			"room_id": req.RoomID,
		})
		msg.Ack()
		return
	}

	payload := map[string]interface{}{
		"room_id":         req.RoomID,
		"patientId":       req.PatientID,
		"transcription":   req.Transcription,
		"isPartial":       req.IsPartial,
		"currentSections": req.CurrentSections,
		"activeSection":   req.ActiveSection,
	}
	if err := s.natsPub.Publish(ctx, events.New(events.TypeAgentRequest, payload)); err != nil {
		s.logger.Error("AgentBridge", "Failed to publish agent request", map[string]interface{}{
			"room_id": req.RoomID,
			"error":   err.Error(),
		})
		msg.Nack() // Retriable
		return
	}
	msg.Ack()
}

// handleProposal delivers one agent response into the room as a proposal or
// proposal_error frame.
func (s *agentBridgeService) handleProposal(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return nil
	}
	var prop dto.AgentProposal
	if err := json.Unmarshal(data, &prop); err != nil || prop.RoomID == "" {
		s.logger.Warn("AgentBridge", "Dropping malformed agent response", map[string]interface{}{
			"error": "missing room_id",
		})
		return nil
	}

	var frame []byte
	if prop.Error != "" {
		s.metrics.ProposalErrors.Inc()
		frame, _ = json.Marshal(map[string]interface{}{
			"type":    channel.TypeProposalError,
			"payload": map[string]interface{}{},
		})
	} else {
		s.metrics.ProposalsDelivered.Inc()
		propuestas := make([]channel.Propuesta, 0, len(prop.Propuestas))
		for _, p := range prop.Propuestas {
			propuestas = append(propuestas, channel.Propuesta{Seccion: p.Seccion, Contenido: p.Contenido})
		}
		frame, _ = json.Marshal(map[string]interface{}{
			"type": channel.TypeProposal,
			"payload": channel.ProposalPayload{
				Resumen:    prop.Resumen,
				Propuestas: propuestas,
			},
		})
	}

	s.hub.BroadcastToRoom(prop.RoomID, frame, nil)
	return nil
}
