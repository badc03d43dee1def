package server

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"emobility/auth"
	"emobility/billing"
	"emobility/internal"
	"emobility/internal/config"
	"emobility/ocpp"
	"emobility/ocpp/core"
	"emobility/ocpp/firmware"
	"emobility/ocpp/remotetrigger"
	"emobility/pusher"
	"emobility/session"
	"emobility/telegram"
	"emobility/types"
	"emobility/utility"
)

type CentralSystem struct {
	server          *Server
	api             *Api
	logger          internal.LogHandler
	handler         *SystemHandler
	location        *time.Location
	pendingRequests map[string]chan string
	pendingMux      sync.Mutex
}

// CentralSystemCommand is one operator command proxied to a station.
type CentralSystemCommand struct {
	TenantId    string `json:"tenant_id"`
	ChargeBoxId string `json:"charge_box_id"`
	ConnectorId int    `json:"connector_id"`
	FeatureName string `json:"feature_name"`
	Payload     string `json:"payload"`
	IdTag       string `json:"id_tag"`
}

func (cs *CentralSystem) handleIncomingMessage(ws *WebSocket, data []byte) error {
	chargeBoxId := ws.ID()
	message, err := utility.ParseJson(data)
	if err != nil {
		return err
	}
	callType, err := MessageType(message)
	if err != nil {
		return err
	}
	if callType == CallTypeError {
		cs.logger.Warn(fmt.Sprintf("error message received from station %s: %s", chargeBoxId, string(data)))
		return nil
	}
	if callType == CallTypeResult {
		result, err := ParseResult(message)
		if err != nil {
			cs.logger.Warn(fmt.Sprintf("invalid result received from station %s: %s", chargeBoxId, string(data)))
			return nil
		}
		cs.deliverResult(result)
		return nil
	}

	callRequest, err := ParseRequest(message)
	if err != nil {
		if uniqueId, ok := message[1].(string); ok {
			ws.SetUniqueId(uniqueId)
			_ = cs.server.SendError(ws, "FormationViolation", err.Error())
		}
		return err
	}
	ws.SetUniqueId(callRequest.UniqueId)

	request := callRequest.Payload
	action := request.GetFeatureName()
	var confirmation ocpp.Response
	switch action {
	case core.BootNotificationFeatureName:
		confirmation, err = cs.handler.OnBootNotification(ws, request.(*core.BootNotificationRequest))
	case core.AuthorizeFeatureName:
		confirmation, err = cs.handler.OnAuthorize(ws, request.(*core.AuthorizeRequest))
	case core.HeartbeatFeatureName:
		confirmation, err = cs.handler.OnHeartbeat(ws, request.(*core.HeartbeatRequest))
	case core.StartTransactionFeatureName:
		confirmation, err = cs.handler.OnStartTransaction(ws, request.(*core.StartTransactionRequest))
	case core.StopTransactionFeatureName:
		confirmation, err = cs.handler.OnStopTransaction(ws, request.(*core.StopTransactionRequest))
	case core.MeterValuesFeatureName:
		confirmation, err = cs.handler.OnMeterValues(ws, request.(*core.MeterValuesRequest))
	case core.StatusNotificationFeatureName:
		confirmation, err = cs.handler.OnStatusNotification(ws, request.(*core.StatusNotificationRequest))
	case core.DataTransferFeatureName:
		confirmation, err = cs.handler.OnDataTransfer(ws, request.(*core.DataTransferRequest))
	case firmware.DiagnosticsStatusNotificationFeatureName:
		confirmation, err = cs.handler.OnDiagnosticsStatusNotification(ws, request.(*firmware.DiagnosticsStatusNotificationRequest))
	case firmware.StatusNotificationFeatureName:
		confirmation, err = cs.handler.OnFirmwareStatusNotification(ws, request.(*firmware.StatusNotificationRequest))
	default:
		err = fmt.Errorf("feature not supported: %s", action)
	}
	if err != nil {
		_ = cs.server.SendError(ws, "InternalError", err.Error())
		return err
	}

	if ws.IsClosed() {
		cs.logger.FeatureEvent(action, chargeBoxId, "websocket closed, response not sent")
		return nil
	}
	return cs.server.SendResponse(ws, confirmation)
}

func (cs *CentralSystem) deliverResult(result *RawCallResult) {
	cs.pendingMux.Lock()
	responseChan, ok := cs.pendingRequests[result.UniqueId]
	cs.pendingMux.Unlock()
	if ok {
		responseChan <- result.Payload
	}
}

func (cs *CentralSystem) handleApiRequest(w http.ResponseWriter, command CentralSystemCommand) error {
	if command.FeatureName == "" {
		return fmt.Errorf("feature name is empty")
	}
	var request ocpp.Request
	var err error
	switch command.FeatureName {
	case core.RemoteStartTransactionFeatureName:
		request, err = cs.handler.OnRemoteStartTransaction(command.TenantId, command.ChargeBoxId, command.ConnectorId, command.Payload)
	case core.RemoteStopTransactionFeatureName:
		request, err = cs.handler.OnRemoteStopTransaction(command.TenantId, command.ChargeBoxId, command.Payload, command.IdTag)
	case core.ResetFeatureName:
		request, err = cs.handler.OnReset(command.TenantId, command.ChargeBoxId, command.Payload)
	case core.UnlockConnectorFeatureName:
		request, err = cs.handler.OnUnlockConnector(command.TenantId, command.ChargeBoxId, command.ConnectorId)
	case remotetrigger.TriggerMessageFeatureName:
		request, err = cs.handler.OnTriggerMessage(command.TenantId, command.ChargeBoxId, command.ConnectorId, command.Payload)
	default:
		err = fmt.Errorf("feature not supported: %s", command.FeatureName)
	}
	if err != nil {
		return err
	}

	id, err := cs.server.SendRequest(command.TenantId, command.ChargeBoxId, request)
	if err != nil {
		return err
	}
	response := make(chan string, 1)
	cs.pendingMux.Lock()
	cs.pendingRequests[id] = response
	cs.pendingMux.Unlock()

	select {
	case payload := <-response:
		if payload == "" {
			w.WriteHeader(http.StatusNoContent)
		} else {
			w.Header().Add("Content-Type", "application/json; charset=utf-8")
			if _, err := w.Write([]byte(payload)); err != nil {
				cs.logger.Error("cs command send response", err)
			}
		}
	case <-time.After(10 * time.Second):
		cs.logger.Warn(fmt.Sprintf("timeout waiting for response from %s", command.ChargeBoxId))
		w.WriteHeader(http.StatusNoContent)
	}
	cs.pendingMux.Lock()
	delete(cs.pendingRequests, id)
	cs.pendingMux.Unlock()

	return nil
}

func (cs *CentralSystem) Start() {
	go func() {
		if err := cs.server.Start(); err != nil {
			cs.logger.Error("websocket server failed", err)
		}
	}()

	go func() {
		if err := cs.api.Start(); err != nil {
			cs.logger.Error("api server failed", err)
		}
	}()

	select {}
}

func NewCentralSystem(conf *config.Config) (CentralSystem, error) {
	cs := CentralSystem{}
	cs.pendingRequests = make(map[string]chan string)

	log.Println("set time zone to " + conf.TimeZone)
	location, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return cs, fmt.Errorf("time zone initialization failed: %s", err)
	}
	cs.location = location

	var database internal.Database
	if conf.Mongo.Enabled {
		mongo, err := internal.NewMongoClient(conf)
		if err != nil {
			return cs, fmt.Errorf("mongodb setup failed: %s", err)
		}
		if mongo != nil {
			database = mongo
			log.Println("mongodb is configured and enabled")
		}
	} else {
		log.Println("database is disabled")
	}

	var messageService internal.MessageService
	if conf.Pusher.Enabled {
		messageService, err = pusher.NewPusher(conf)
		if err != nil {
			return cs, fmt.Errorf("pusher setup failed: %s", err)
		}
		log.Println("pusher service is configured and enabled")
	} else {
		log.Println("message pushing service is disabled")
	}

	// logger with database and push service for the message handling
	logService := internal.NewLogger(location)
	logService.SetDebugMode(conf.IsDebug)
	logService.SetDatabase(database)
	logService.SetMessageService(messageService)
	cs.logger = logService

	tagService := auth.NewTags(conf, logService)
	tagService.SetDatabase(database)

	sessionService := session.NewService(logService)
	sessionService.SetDatabase(database)
	if conf.Pricing.Enabled {
		sessionService.SetPricingService(billing.NewRates(conf, logService))
		log.Println("flat rate pricing is enabled")
	}

	events := internal.NewEventRouter()

	systemHandler := NewSystemHandler(location)
	systemHandler.SetDatabase(database)
	systemHandler.SetLogger(logService)
	systemHandler.SetTagService(tagService)
	systemHandler.SetSessionService(sessionService)
	systemHandler.SetEventHandler(events)
	systemHandler.SetParameters(conf.IsDebug, conf.AcceptUnknownChp, conf.HeartbeatInterval)
	cs.handler = systemHandler

	if conf.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(conf.Telegram.ApiKey, logService)
		if err != nil {
			return cs, fmt.Errorf("telegram bot setup failed: %s", err)
		}
		telegramBot.SetDatabase(database)
		telegramBot.SetHeartbeatInterval(time.Duration(conf.HeartbeatInterval) * time.Second)
		telegramBot.Start()
		events.AddListener(telegramBot)
		log.Println("telegram bot is configured and enabled")
	}

	// websocket listener
	wsServer := NewServer(conf, logService)
	wsServer.AddSupportedSubProtocol(types.SubProtocol16)
	wsServer.AddSupportedSubProtocol(types.SubProtocol15)
	wsServer.SetMessageHandler(cs.handleIncomingMessage)
	cs.server = wsServer

	trigger := NewTrigger(wsServer, logService)
	trigger.Start()
	systemHandler.SetTrigger(trigger)

	if err = systemHandler.OnStart(); err != nil {
		return cs, err
	}

	// api server
	apiServer := NewServerApi(conf, logService)
	apiServer.SetRequestHandler(cs.handleApiRequest)
	apiServer.SetDatabase(database)
	cs.api = apiServer

	return cs, nil
}
