package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"video-consulta-sync/internal/dto"
	"video-consulta-sync/internal/entity"
	"video-consulta-sync/internal/metrics"
	"video-consulta-sync/internal/pkg/logger"
	"video-consulta-sync/internal/repository/contract"
	"video-consulta-sync/internal/repository/memory"
	"video-consulta-sync/internal/websocket"
	"video-consulta-sync/pkg/audio"
	"video-consulta-sync/pkg/channel"
	"video-consulta-sync/pkg/events"
	pktNats "video-consulta-sync/pkg/nats"
	"video-consulta-sync/pkg/store"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IRoomService routes every inbound websocket frame for a call room:
// transcription fan-out, agent forwarding, audio accounting, section-action
// persistence.
type IRoomService interface {
	websocket.InboundHandler
}

type roomService struct {
	rooms        *memory.RoomRepository
	encounters   contract.EncounterRepository
	hub          *websocket.Hub
	pubSub       *gochannel.GoChannel
	processTopic string
	eventPub     *pktNats.Publisher
	metrics      *metrics.Metrics
	logger       logger.ILogger
}

func NewRoomService(
	rooms *memory.RoomRepository,
	encounters contract.EncounterRepository,
	hub *websocket.Hub,
	pubSub *gochannel.GoChannel,
	processTopic string,
	eventPub *pktNats.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
) IRoomService {
	return &roomService{
		rooms:        rooms,
		encounters:   encounters,
		hub:          hub,
		pubSub:       pubSub,
		processTopic: processTopic,
		eventPub:     eventPub,
		metrics:      m,
		logger:       log,
	}
}

// HandleFrame parses one inbound {type, payload} frame and dispatches it.
// Malformed or unknown frames are dropped; the connection stays up.
func (s *roomService) HandleFrame(c *websocket.Client, data []byte) {
	var msg channel.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.metrics.ParseErrors.Inc()
		s.logger.Debug("RoomService", "Dropping malformed frame", map[string]interface{}{
			"room_id": c.RoomID,
			"error":   err.Error(),
		})
		return
	}
	s.metrics.FramesReceived.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case channel.TypeTranscription:
		s.handleTranscription(c, data, msg.Payload)
	case channel.TypeProcessWithAgent:
		s.handleProcessWithAgent(c, msg.Payload)
	case channel.TypeSectionAction:
		s.handleSectionAction(c, msg.Payload)
	case audio.MsgAudioStreamStart:
		room := s.rooms.GetOrCreate(c.RoomID, c.PatientID)
		room.AudioStreaming[c.Role] = true
		s.rooms.Save(room)
	case audio.MsgAudioChunk:
		s.handleAudioChunk(c, msg.Payload)
	case audio.MsgAudioStreamEnd:
		room := s.rooms.GetOrCreate(c.RoomID, c.PatientID)
		room.AudioStreaming[c.Role] = false
		s.rooms.Save(room)
	default:
		// Unknown types are dropped without raising.
	}
}

// HandleConnect tracks gauges and announces a new call when the first
// client of a room arrives.
func (s *roomService) HandleConnect(c *websocket.Client) {
	s.metrics.ConnectedClients.Inc()
	if s.hub.RoomSize(c.RoomID) == 1 {
		s.metrics.ActiveRooms.Inc()
		s.rooms.GetOrCreate(c.RoomID, c.PatientID)
		s.publishEvent(events.TypeCallStarted, map[string]interface{}{
			"room_id":    c.RoomID,
			"patient_id": c.PatientID,
			"role":       c.Role,
		})
	}
}

// HandleDisconnect fires after the hub removed the client. When the room is
// empty, the in-memory state is released and CALL_ENDED goes on the bus.
func (s *roomService) HandleDisconnect(c *websocket.Client) {
	s.metrics.ConnectedClients.Dec()
	if s.hub.RoomSize(c.RoomID) > 0 {
		return
	}
	s.metrics.ActiveRooms.Dec()
	s.rooms.Delete(c.RoomID)
	s.publishEvent(events.TypeCallEnded, map[string]interface{}{
		"room_id":    c.RoomID,
		"patient_id": c.PatientID,
	})
}

// handleTranscription relays the segment to room peers; the sender keeps its
// local echo and must not receive a duplicate.
func (s *roomService) handleTranscription(c *websocket.Client, raw []byte, payload json.RawMessage) {
	var p channel.TranscriptionPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Text == "" {
		return
	}
	s.metrics.TranscriptionsRelayed.Inc()
	s.hub.BroadcastToRoom(c.RoomID, raw, c)
}

func (s *roomService) handleProcessWithAgent(c *websocket.Client, payload json.RawMessage) {
	var p channel.ProcessWithAgentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.metrics.ParseErrors.Inc()
		return
	}

	room := s.rooms.GetOrCreate(c.RoomID, p.PatientID)
	room.AgentState = store.AgentListening
	room.ActiveSection = p.ActiveSection
	room.LastDispatch = time.Now()
	s.rooms.Save(room)

	req := dto.AgentRequest{
		RoomID:          c.RoomID,
		PatientID:       p.PatientID,
		Transcription:   p.Transcription,
		IsPartial:       p.IsPartial,
		CurrentSections: p.CurrentSections,
		ActiveSection:   p.ActiveSection,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return
	}
	s.metrics.AgentRequests.Inc()
	if err := s.pubSub.Publish(s.processTopic, message.NewMessage(uuid.NewString(), data)); err != nil {
		s.logger.Error("RoomService", "Failed to enqueue agent request", map[string]interface{}{
			"room_id": c.RoomID,
			"error":   err.Error(),
		})
	}
}

// handleSectionAction persists the decided section into the room's
// encounter record and emits a SECTION_ACTION event for downstream
// consumers (audit, EHR export).
func (s *roomService) handleSectionAction(c *websocket.Client, payload json.RawMessage) {
	var p channel.SectionActionPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Seccion == "" {
		s.metrics.ParseErrors.Inc()
		return
	}
	s.metrics.SectionActions.WithLabelValues(p.Accion).Inc()

	if s.encounters != nil {
		if err := s.upsertEncounter(c, p); err != nil {
			s.logger.Error("RoomService", "Failed to persist section action", map[string]interface{}{
				"room_id": c.RoomID,
				"seccion": p.Seccion,
				"error":   err.Error(),
			})
		} else {
			s.metrics.EncounterWrites.Inc()
		}
	}

	s.publishEvent(events.TypeSectionAction, map[string]interface{}{
		"room_id":    c.RoomID,
		"patient_id": c.PatientID,
		"seccion":    p.Seccion,
		"accion":     p.Accion,
		"contenido":  p.Contenido,
	})
}

func (s *roomService) upsertEncounter(c *websocket.Client, p channel.SectionActionPayload) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	enc, err := s.encounters.GetByRoomId(ctx, c.RoomID)
	if err != nil {
		return err
	}
	if enc == nil {
		enc = &entity.Encounter{
			Id:        uuid.New(),
			RoomId:    c.RoomID,
			PatientId: c.PatientID,
			Sections:  make(map[string]entity.EncounterSection),
			CreatedAt: time.Now(),
		}
		enc.Sections[p.Seccion] = entity.EncounterSection{Contenido: p.Contenido, Accion: p.Accion}
		return s.encounters.Create(ctx, enc)
	}
	if enc.Sections == nil {
		enc.Sections = make(map[string]entity.EncounterSection)
	}
	enc.Sections[p.Seccion] = entity.EncounterSection{Contenido: p.Contenido, Accion: p.Accion}
	now := time.Now()
	enc.UpdatedAt = &now
	return s.encounters.Update(ctx, enc)
}

func (s *roomService) handleAudioChunk(c *websocket.Client, payload json.RawMessage) {
	var p struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		s.metrics.ParseErrors.Inc()
		return
	}
	s.metrics.AudioChunksReceived.Inc()
	if decoded, err := base64.StdEncoding.DecodeString(p.Data); err == nil {
		s.metrics.AudioBytesReceived.Add(float64(len(decoded)))
	}
}

func (s *roomService) publishEvent(eventType string, data map[string]interface{}) {
	if s.eventPub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.eventPub.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("RoomService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
