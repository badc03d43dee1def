package internal

import "time"

// EventHandler is the notification collaborator: fire and forget, a failing
// listener is logged by its implementation and never propagates.
type EventHandler interface {
	OnStationRegistered(event *EventMessage)
	OnStatusNotification(event *EventMessage)
	OnTransactionStart(event *EventMessage)
	OnTransactionStop(event *EventMessage)
	OnAuthorize(event *EventMessage)
}

// EventRouter fans one event out to every registered listener.
type EventRouter struct {
	listeners []EventHandler
}

func NewEventRouter() *EventRouter {
	return &EventRouter{}
}

func (r *EventRouter) AddListener(listener EventHandler) {
	r.listeners = append(r.listeners, listener)
}

func (r *EventRouter) OnStationRegistered(event *EventMessage) {
	for _, listener := range r.listeners {
		listener.OnStationRegistered(event)
	}
}

func (r *EventRouter) OnStatusNotification(event *EventMessage) {
	for _, listener := range r.listeners {
		listener.OnStatusNotification(event)
	}
}

func (r *EventRouter) OnTransactionStart(event *EventMessage) {
	for _, listener := range r.listeners {
		listener.OnTransactionStart(event)
	}
}

func (r *EventRouter) OnTransactionStop(event *EventMessage) {
	for _, listener := range r.listeners {
		listener.OnTransactionStop(event)
	}
}

func (r *EventRouter) OnAuthorize(event *EventMessage) {
	for _, listener := range r.listeners {
		listener.OnAuthorize(event)
	}
}

type EventMessage struct {
	Type          string      `json:"type" bson:"type"`
	TenantId      string      `json:"tenant_id" bson:"tenant_id"`
	ChargeBoxId   string      `json:"charge_box_id" bson:"charge_box_id"`
	ConnectorId   int         `json:"connector_id" bson:"connector_id"`
	Time          time.Time   `json:"time" bson:"time"`
	Username      string      `json:"username" bson:"username"`
	IdTag         string      `json:"id_tag" bson:"id_tag"`
	TransactionId int         `json:"transaction_id" bson:"transaction_id"`
	Status        string      `json:"status" bson:"status"`
	Info          string      `json:"info" bson:"info"`
	Payload       interface{} `json:"payload" bson:"payload"`
}
