package server

import (
	"fmt"
	"time"

	"emobility/internal"
	"emobility/ocpp/remotetrigger"
)

const featureNameTrigger = "Trigger"

// WatchedSession is an active session the trigger polls for meter values.
type WatchedSession struct {
	TenantId      string
	ChargeBoxId   string
	ConnectorId   int
	TransactionId int
}

// Trigger asks stations for MeterValues on a fixed cadence while a session
// is active, so devices that never volunteer periodic samples still produce
// a consumption curve.
type Trigger struct {
	sessions   map[int]*WatchedSession
	Register   chan *WatchedSession
	Unregister chan int
	server     *Server
	logger     internal.LogHandler
}

func NewTrigger(server *Server, logger internal.LogHandler) *Trigger {
	return &Trigger{
		sessions:   make(map[int]*WatchedSession),
		Register:   make(chan *WatchedSession),
		Unregister: make(chan int),
		server:     server,
		logger:     logger,
	}
}

func (t *Trigger) Start() {
	go t.listen()
}

func (t *Trigger) listen() {
	waitStep := 20
	ticker := time.NewTicker(time.Duration(waitStep) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case watched := <-t.Register:
			if _, ok := t.sessions[watched.TransactionId]; ok {
				continue
			}
			t.logger.FeatureEvent(featureNameTrigger, watched.ChargeBoxId, fmt.Sprintf("start watching connector %v transaction %v", watched.ConnectorId, watched.TransactionId))
			t.sessions[watched.TransactionId] = watched
		case transactionId := <-t.Unregister:
			if _, ok := t.sessions[transactionId]; ok {
				t.logger.FeatureEvent(featureNameTrigger, "", fmt.Sprintf("stop watching transaction %v", transactionId))
				delete(t.sessions, transactionId)
			}
		case <-ticker.C:
			for _, watched := range t.sessions {
				request := remotetrigger.NewTriggerMessageRequest("MeterValues", watched.ConnectorId)
				_, err := t.server.SendRequest(watched.TenantId, watched.ChargeBoxId, request)
				if err != nil {
					t.logger.FeatureEvent(featureNameTrigger, watched.ChargeBoxId, fmt.Sprintf("error sending request: %v", err))
				}
			}
		}
	}
}
