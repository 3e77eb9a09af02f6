package engine

import (
	"context"
	"sync"
	"time"

	"video-consulta-sync/internal/pkg/logger"
	"video-consulta-sync/pkg/audio"
	"video-consulta-sync/pkg/channel"
	"video-consulta-sync/pkg/clock"
	"video-consulta-sync/pkg/historia"
	"video-consulta-sync/pkg/transcript"
)

// Roles of call participants. Only the medico side dispatches to the agent.
const (
	RoleMedico   = "medico"
	RolePaciente = "paciente"
)

// DefaultPatientID is applied when the paciente role connects without an
// explicit patient identifier.
const DefaultPatientID = "695bd5e7e2a3a01d24f01186"

// AgentStatus tracks the agent round-trip: listening after a dispatch,
// connected once a proposal arrives, idle after a proposal_error.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentListening AgentStatus = "listening"
	AgentConnected AgentStatus = "connected"
)

// Config parameterizes one consult session.
type Config struct {
	BaseURL   string
	RoomID    string
	Role      string
	PatientID string

	Debounce      time.Duration
	TranscriptCap int
	Capture       audio.Capture
	Clock         clock.Clock

	MaxRetries   int
	RetryBackoff time.Duration
}

// Engine owns all mutable consult state: the clinical document, the
// transcript aggregator, the audio encoder and the connection channel. All
// cross-component interaction goes through explicit calls; no component
// references another.
type Engine struct {
	cfg Config
	log logger.ILogger
	clk clock.Clock

	ch  *channel.Channel
	agg *transcript.Aggregator
	enc *audio.Encoder

	mu           sync.Mutex
	doc          *historia.Document
	agentStatus  AgentStatus
	agentSummary string
	connected    bool
}

func New(cfg Config, log logger.ILogger) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewReal()
	}
	if cfg.Role == RolePaciente && cfg.PatientID == "" {
		cfg.PatientID = DefaultPatientID
	}

	e := &Engine{
		cfg:         cfg,
		log:         log,
		clk:         cfg.Clock,
		doc:         historia.NewDocument(),
		agentStatus: AgentIdle,
	}

	e.ch = channel.New(channel.Config{
		BaseURL:      cfg.BaseURL,
		RoomID:       cfg.RoomID,
		Role:         cfg.Role,
		PatientID:    cfg.PatientID,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, channel.Events{
		OnOpen:          e.onOpen,
		OnClose:         e.onClose,
		OnTranscription: e.onTranscription,
		OnProposal:      e.onProposal,
		OnProposalError: e.onProposalError,
	}, log)

	e.agg = transcript.NewAggregator(cfg.Clock, cfg.Debounce, cfg.TranscriptCap, e.snapshot, e.dispatch)

	if cfg.Capture != nil {
		e.enc = audio.NewEncoder(cfg.Capture, cfg.Clock, e.ch.Send, cfg.Role)
	}

	return e
}

// Connect establishes the channel for this session.
func (e *Engine) Connect(ctx context.Context) error {
	return e.ch.Connect(ctx)
}

// Close tears the session down: pending debounce canceled, capture
// released, channel closed. Safe to call repeatedly.
func (e *Engine) Close() {
	e.agg.Cancel()
	if e.enc != nil {
		e.enc.Stop()
	}
	e.ch.Close()
}

// StartAudio begins microphone capture and chunked streaming.
func (e *Engine) StartAudio(ctx context.Context) error {
	if e.enc == nil {
		return audio.ErrDeviceUnavailable
	}
	return e.enc.Start(ctx)
}

// StopAudio stops capture. Idempotent.
func (e *Engine) StopAudio() {
	if e.enc != nil {
		e.enc.Stop()
	}
}

// SubmitTranscription is the local entry point for transcript text, whether
// spoken (via the transcriber) or typed by the operator. The segment is
// echoed into the local log immediately and sent as a transcription message
// regardless of partiality; final medico entries additionally take the
// direct dispatch path, bypassing the debounce timer.
func (e *Engine) SubmitTranscription(text string, isPartial bool) {
	if text == "" {
		return
	}
	seg := transcript.Segment{
		Text:        text,
		IsPartial:   isPartial,
		Participant: e.cfg.Role,
		Timestamp:   e.clk.Now(),
	}
	e.agg.Observe(seg)
	e.ch.Send(channel.TypeTranscription, channel.TranscriptionPayload{
		Text:        text,
		IsPartial:   isPartial,
		Participant: e.cfg.Role,
	})
	if !isPartial && e.cfg.Role == RoleMedico {
		e.agg.DispatchNow(text)
	}
}

// Accept promotes the active proposal for sec into its content and emits the
// section_action.
func (e *Engine) Accept(sec historia.Seccion) {
	e.mu.Lock()
	action, ok := e.doc.Accept(sec)
	e.mu.Unlock()
	if ok {
		e.sendAction(action)
	}
}

// Reject discards the pending proposal for sec and cancels any pending
// debounce, so the rejected content is not immediately re-requested.
func (e *Engine) Reject(sec historia.Seccion) {
	e.mu.Lock()
	action, ok := e.doc.Reject(sec)
	e.mu.Unlock()
	if ok {
		e.agg.Cancel()
		e.sendAction(action)
	}
}

// Edit overwrites sec with operator text.
func (e *Engine) Edit(sec historia.Seccion, contenido string) {
	e.mu.Lock()
	action, ok := e.doc.Edit(sec, contenido)
	e.mu.Unlock()
	if ok {
		e.sendAction(action)
	}
}

// AdvanceSection moves the active index forward (saturating) and cancels any
// pending debounce so a dispatch snapshotted against the old section cannot
// leak into the new one.
func (e *Engine) AdvanceSection() {
	e.mu.Lock()
	e.doc.Advance()
	e.mu.Unlock()
	e.agg.Cancel()
}

// RetreatSection moves the active index back (saturating at zero).
func (e *Engine) RetreatSection() {
	e.mu.Lock()
	e.doc.Retreat()
	e.mu.Unlock()
	e.agg.Cancel()
}

// ActiveSection returns the section currently receiving proposals.
func (e *Engine) ActiveSection() historia.Seccion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.ActiveSection()
}

// SectionState returns a copy of the state for sec.
func (e *Engine) SectionState(sec historia.Seccion) (historia.SectionState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.State(sec)
}

// AgentStatus returns the current agent round-trip state.
func (e *Engine) AgentStatus() AgentStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agentStatus
}

// AgentSummary returns the latest running summary from the agent.
func (e *Engine) AgentSummary() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agentSummary
}

// Connected reports channel connectivity.
func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

// Transcript exposes the bounded transcript log.
func (e *Engine) Transcript() *transcript.Log {
	return e.agg.Log()
}

func (e *Engine) sendAction(a historia.Action) {
	e.ch.Send(channel.TypeSectionAction, channel.SectionActionPayload{
		Seccion:   string(a.Seccion),
		Accion:    string(a.Accion),
		Contenido: a.Contenido,
	})
}

// snapshot feeds the aggregator the non-empty section contents and the
// active section id at dispatch time.
func (e *Engine) snapshot() (map[string]string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Snapshot(), string(e.doc.ActiveSection())
}

// dispatch ships one process_with_agent request. Only the medico side talks
// to the agent.
func (e *Engine) dispatch(req transcript.DispatchRequest) {
	if e.cfg.Role != RoleMedico {
		return
	}
	e.mu.Lock()
	e.agentStatus = AgentListening
	e.mu.Unlock()

	e.ch.Send(channel.TypeProcessWithAgent, channel.ProcessWithAgentPayload{
		PatientID:       e.cfg.PatientID,
		Transcription:   req.Transcription,
		IsPartial:       req.IsPartial,
		CurrentSections: req.CurrentSections,
		ActiveSection:   req.ActiveSection,
	})
}

func (e *Engine) onOpen() {
	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()
	e.log.Info("Engine", "Channel open", map[string]interface{}{"room": e.cfg.RoomID, "role": e.cfg.Role})
}

func (e *Engine) onClose() {
	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
	e.agg.Cancel()
	e.log.Info("Engine", "Channel closed", map[string]interface{}{"room": e.cfg.RoomID})
}

// onTranscription appends remote segments to the same bounded log feeding
// the debounce path.
func (e *Engine) onTranscription(p channel.TranscriptionPayload) {
	if p.Text == "" {
		return
	}
	e.agg.Observe(transcript.Segment{
		Text:        p.Text,
		IsPartial:   p.IsPartial,
		Participant: p.Participant,
		Timestamp:   e.clk.Now(),
	})
}

// onProposal applies an inbound batch to the document. Entries not aimed at
// the active section are discarded; the batch is consumed either way.
func (e *Engine) onProposal(p channel.ProposalPayload) {
	batch := make([]historia.Proposal, 0, len(p.Propuestas))
	for _, prop := range p.Propuestas {
		batch = append(batch, historia.Proposal{
			Seccion:   historia.Seccion(prop.Seccion),
			Contenido: prop.Contenido,
		})
	}

	e.mu.Lock()
	applied := e.doc.ApplyProposals(batch)
	if p.Resumen != "" {
		e.agentSummary = p.Resumen
	}
	e.agentStatus = AgentConnected
	e.mu.Unlock()

	e.log.Debug("Engine", "Applied proposal batch", map[string]interface{}{
		"received": len(batch),
		"applied":  applied,
	})
}

func (e *Engine) onProposalError() {
	e.mu.Lock()
	e.agentStatus = AgentIdle
	e.mu.Unlock()
}
