package service

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-consulta-sync/internal/pkg/logger"
	"video-consulta-sync/internal/websocket"
	"video-consulta-sync/pkg/events"
)

func newBridge() *agentBridgeService {
	hub := websocket.NewHub(nil, logger.Nop{})
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	return &agentBridgeService{
		pubSub:          pubSub,
		processTopic:    "agent-process",
		proposalSubject: "AGENT_PROPOSAL",
		hub:             hub,
		metrics:         sharedMetrics(),
		logger:          logger.Nop{},
	}
}

func TestHandleProposalCountsDelivery(t *testing.T) {
	bridge := newBridge()
	before := testutil.ToFloat64(sharedMetrics().ProposalsDelivered)

	err := bridge.handleProposal(context.Background(), events.New("AGENT_PROPOSAL", map[string]interface{}{
		"room_id": "room-x",
		"resumen": "resumen",
		"propuestas": []map[string]interface{}{
			{"seccion": "motivoAtencion", "contenido": "cefalea"},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(sharedMetrics().ProposalsDelivered))
}

func TestHandleProposalErrorPath(t *testing.T) {
	bridge := newBridge()
	before := testutil.ToFloat64(sharedMetrics().ProposalErrors)

	err := bridge.handleProposal(context.Background(), events.New("AGENT_PROPOSAL", map[string]interface{}{
		"room_id": "room-y",
		"error":   "model timeout",
	}))
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(sharedMetrics().ProposalErrors))
}

func TestHandleProposalWithoutRoomDropped(t *testing.T) {
	bridge := newBridge()
	beforeOK := testutil.ToFloat64(sharedMetrics().ProposalsDelivered)
	beforeErr := testutil.ToFloat64(sharedMetrics().ProposalErrors)

	err := bridge.handleProposal(context.Background(), events.New("AGENT_PROPOSAL", map[string]interface{}{
		"resumen": "sin sala",
	}))
	require.NoError(t, err)
	assert.Equal(t, beforeOK, testutil.ToFloat64(sharedMetrics().ProposalsDelivered))
	assert.Equal(t, beforeErr, testutil.ToFloat64(sharedMetrics().ProposalErrors))
}

func TestForwardRequestWithoutNATSAcks(t *testing.T) {
	bridge := newBridge()

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"room_id":"room-z","transcription":"hola"}`))
	bridge.forwardRequest(context.Background(), msg)

	select {
	case <-msg.Acked():
	case <-time.After(time.Second):
		t.Fatal("message was not acked")
	}
}

func TestForwardRequestMalformedAcks(t *testing.T) {
	bridge := newBridge()

	msg := message.NewMessage(watermill.NewUUID(), []byte(`not json`))
	bridge.forwardRequest(context.Background(), msg)

	select {
	case <-msg.Acked():
	case <-time.After(time.Second):
		t.Fatal("malformed message should be acked to avoid redelivery")
	}
}
