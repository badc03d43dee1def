package server

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"emobility/entity"
	"emobility/internal"
	"emobility/meter"
	"emobility/ocpp"
	"emobility/ocpp/core"
	"emobility/ocpp/firmware"
	"emobility/ocpp/remotetrigger"
	"emobility/session"
	"emobility/station"
	"emobility/types"
	"emobility/utility"
)

var now = time.Now

// remoteStopWindow is how long a requested remote stop keeps its authority:
// a StopTransaction arriving inside the window is attributed to the remote
// command and skips the badge authority check.
const remoteStopWindow = 60 * time.Second

type stationState struct {
	mux               sync.Mutex
	station           *entity.ChargingStation
	diagnosticsStatus firmware.DiagnosticsStatus
	firmwareStatus    firmware.Status
}

// SystemHandler implements the protocol operations on top of the session
// engine. State is kept per station and every operation for one station runs
// under that station's lock, so concurrent messages from one device are
// applied in arrival order.
type SystemHandler struct {
	stations          map[string]*stationState
	database          internal.Database
	logger            internal.LogHandler
	eventHandler      internal.EventHandler
	tags              internal.TagService
	sessions          *session.Service
	trigger           *Trigger
	location          *time.Location
	debug             bool
	acceptUnknown     bool
	heartbeatInterval int
	mux               sync.Mutex
	nextTransactionId int
	remoteStops       map[int]remoteStop
}

// remoteStop is a pending admin stop command: who asked for it and when.
type remoteStop struct {
	tag    string
	userId string
	at     time.Time
}

func NewSystemHandler(location *time.Location) *SystemHandler {
	return &SystemHandler{
		stations:          make(map[string]*stationState),
		remoteStops:       make(map[int]remoteStop),
		location:          location,
		heartbeatInterval: 600,
		nextTransactionId: 1,
	}
}

func (h *SystemHandler) SetDatabase(database internal.Database) {
	h.database = database
}

func (h *SystemHandler) SetLogger(logger internal.LogHandler) {
	h.logger = logger
}

func (h *SystemHandler) SetEventHandler(eventHandler internal.EventHandler) {
	h.eventHandler = eventHandler
}

func (h *SystemHandler) SetTagService(tags internal.TagService) {
	h.tags = tags
}

func (h *SystemHandler) SetSessionService(sessions *session.Service) {
	h.sessions = sessions
}

func (h *SystemHandler) SetTrigger(trigger *Trigger) {
	h.trigger = trigger
}

// SetParameters applies startup configuration: debug mode, whether unknown
// stations get registered on first contact, and the heartbeat interval
// handed out on boot.
func (h *SystemHandler) SetParameters(debug, acceptUnknown bool, heartbeatInterval int) {
	h.debug = debug
	h.acceptUnknown = acceptUnknown
	if heartbeatInterval > 0 {
		h.heartbeatInterval = heartbeatInterval
	}
}

// OnStart seeds the transaction id counter from storage so restarts never
// reuse an id a station may still hold.
func (h *SystemHandler) OnStart() error {
	if h.database == nil {
		return nil
	}
	transaction, err := h.database.GetLastTransaction()
	if err != nil {
		return fmt.Errorf("loading last transaction: %w", err)
	}
	if transaction != nil {
		h.nextTransactionId = transaction.Id + 1
	}
	h.logger.Debug(fmt.Sprintf("transaction counter starts at %d", h.nextTransactionId))
	return nil
}

func (h *SystemHandler) allocateTransactionId() int {
	h.mux.Lock()
	defer h.mux.Unlock()
	id := h.nextTransactionId
	h.nextTransactionId++
	return id
}

func (h *SystemHandler) registerRemoteStop(transactionId int, tag, userId string) {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.remoteStops[transactionId] = remoteStop{tag: tag, userId: userId, at: now()}
}

// takeRemoteStop consumes a pending remote stop for the transaction and
// reports whether it is still inside the authority window, together with
// the tag the stop command was issued for.
func (h *SystemHandler) takeRemoteStop(transactionId int) (remoteStop, bool) {
	h.mux.Lock()
	defer h.mux.Unlock()
	requested, ok := h.remoteStops[transactionId]
	if !ok {
		return remoteStop{}, false
	}
	delete(h.remoteStops, transactionId)
	if now().Sub(requested.at) >= remoteStopWindow {
		return remoteStop{}, false
	}
	return requested, true
}

// getStation returns the cached station state, loading it from storage on
// first contact. Unknown stations are registered when configured to accept
// them, otherwise the device gets rejected.
func (h *SystemHandler) getStation(tenantId, id string) (*stationState, error) {
	h.mux.Lock()
	key := tenantId + "/" + id
	state, ok := h.stations[key]
	h.mux.Unlock()
	if ok {
		if state.station.IsDeleted {
			return nil, entity.ErrStationDeleted
		}
		return state, nil
	}

	var chargingStation *entity.ChargingStation
	if h.database != nil {
		loaded, err := h.database.GetChargingStation(tenantId, id)
		if err != nil {
			return nil, err
		}
		chargingStation = loaded
	}
	if chargingStation == nil {
		if !h.acceptUnknown && !h.debug {
			h.logger.Warn(fmt.Sprintf("unknown charging station: %s", id))
			return nil, entity.ErrStationNotFound
		}
		chargingStation = &entity.ChargingStation{
			Id:        id,
			TenantId:  tenantId,
			IsEnabled: true,
		}
		if h.database != nil {
			if err := h.database.AddChargingStation(chargingStation); err != nil {
				h.logger.Error("registering new charging station", err)
			}
		}
		h.logger.FeatureEvent("Registration", id, "registered new charging station")
	}
	if chargingStation.IsDeleted {
		return nil, entity.ErrStationDeleted
	}

	state = &stationState{station: chargingStation}
	h.mux.Lock()
	if existing, ok := h.stations[key]; ok {
		state = existing
	} else {
		h.stations[key] = state
	}
	h.mux.Unlock()
	return state, nil
}

func (h *SystemHandler) saveStation(chargingStation *entity.ChargingStation) {
	if h.database == nil {
		return
	}
	if err := h.database.UpdateChargingStation(chargingStation); err != nil {
		h.logger.Error("updating charging station", err)
	}
}

func (h *SystemHandler) OnBootNotification(ws ocpp.WebSocket, request *core.BootNotificationRequest) (*core.BootNotificationResponse, error) {
	regStatus := core.RegistrationStatusAccepted
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err != nil {
		h.logger.FeatureEvent(request.GetFeatureName(), ws.ID(), fmt.Sprintf("rejected: %s", err))
		return core.NewBootNotificationResponse(types.NewDateTime(now()), h.heartbeatInterval, core.RegistrationStatusRejected), nil
	}

	state.mux.Lock()
	defer state.mux.Unlock()
	st := state.station

	if st.Vendor != "" && (st.Vendor != request.ChargePointVendor || st.Model != request.ChargePointModel) {
		h.logger.Error("boot identity check", fmt.Errorf("%w: station %s reports %s/%s, registered as %s/%s",
			entity.ErrVendorMismatch, st.Id, request.ChargePointVendor, request.ChargePointModel, st.Vendor, st.Model))
		return core.NewBootNotificationResponse(types.NewDateTime(now()), h.heartbeatInterval, core.RegistrationStatusRejected), nil
	}

	st.Vendor = request.ChargePointVendor
	st.Model = request.ChargePointModel
	st.SerialNumber = request.ChargePointSerialNumber
	st.FirmwareVersion = request.FirmwareVersion
	st.Transport = "websocket"
	st.LastHeartbeat = now().UTC()
	h.saveStation(st)

	if !st.IsEnabled {
		regStatus = core.RegistrationStatusPending
	}

	if h.eventHandler != nil {
		h.eventHandler.OnStationRegistered(&internal.EventMessage{
			Type:        "BootNotification",
			TenantId:    st.TenantId,
			ChargeBoxId: st.Id,
			Time:        now(),
			Status:      string(regStatus),
			Info:        fmt.Sprintf("%s %s firmware %s", st.Vendor, st.Model, st.FirmwareVersion),
			Payload:     request,
		})
	}

	h.logger.FeatureEvent(request.GetFeatureName(), st.Id, string(regStatus))
	return core.NewBootNotificationResponse(types.NewDateTime(now()), h.heartbeatInterval, regStatus), nil
}

func (h *SystemHandler) OnHeartbeat(ws ocpp.WebSocket, request *core.HeartbeatRequest) (*core.HeartbeatResponse, error) {
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err == nil {
		state.mux.Lock()
		state.station.LastHeartbeat = now().UTC()
		h.saveStation(state.station)
		state.mux.Unlock()
	}
	return core.NewHeartbeatResponse(types.NewDateTime(now())), nil
}

func (h *SystemHandler) OnAuthorize(ws ocpp.WebSocket, request *core.AuthorizeRequest) (*core.AuthorizeResponse, error) {
	authStatus := types.AuthorizationStatusAccepted
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err != nil || !state.station.IsEnabled {
		authStatus = types.AuthorizationStatusBlocked
	}

	username := ""
	if authStatus == types.AuthorizationStatusAccepted {
		if request.IdTag == "" {
			authStatus = types.AuthorizationStatusInvalid
		} else if h.tags != nil {
			userTag, err := h.tags.ResolveTag(ws.TenantID(), ws.ID(), request.IdTag, request.GetFeatureName())
			if err != nil {
				authStatus = types.AuthorizationStatusBlocked
			}
			if userTag != nil {
				username = userTag.Username
			}
		}
	}

	if h.eventHandler != nil {
		h.eventHandler.OnAuthorize(&internal.EventMessage{
			Type:        "Authorize",
			TenantId:    ws.TenantID(),
			ChargeBoxId: ws.ID(),
			Time:        now(),
			Username:    username,
			IdTag:       request.IdTag,
			Status:      string(authStatus),
			Payload:     request,
		})
	}

	h.logger.FeatureEvent(request.GetFeatureName(), ws.ID(), fmt.Sprintf("id tag: %s; authorization status: %s", request.IdTag, authStatus))
	return core.NewAuthorizationResponse(types.NewIdTagInfo(authStatus)), nil
}

func (h *SystemHandler) OnStartTransaction(ws ocpp.WebSocket, request *core.StartTransactionRequest) (*core.StartTransactionResponse, error) {
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err != nil {
		return core.NewStartTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusBlocked), 0), nil
	}

	state.mux.Lock()
	defer state.mux.Unlock()
	st := state.station

	connectorId, rewritten := meter.ResolveConnectorId(st, request.ConnectorId)
	if rewritten {
		h.logger.Warn(fmt.Sprintf("%s: start on connector 0 rewritten to 1", st.Id))
	}
	if connectorId < 1 {
		connectorId = 1
	}
	connector := st.Connector(connectorId)

	// a locked connector means another session holds the whole station
	if connector.Locked {
		busy := st.FindConnector(activeConnectorId(st))
		busyTx := 0
		if busy != nil {
			busyTx = busy.ActiveTransactionId
		}
		h.logger.FeatureEvent(request.GetFeatureName(), st.Id, fmt.Sprintf("connector %d locked by transaction %d", connectorId, busyTx))
		return core.NewStartTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusConcurrentTx), busyTx), nil
	}

	var userTag *entity.UserTag
	if h.tags != nil {
		userTag, err = h.tags.ResolveTag(st.TenantId, st.Id, request.IdTag, request.GetFeatureName())
		if err != nil {
			h.logger.FeatureEvent(request.GetFeatureName(), st.Id, fmt.Sprintf("id tag %s rejected: %s", request.IdTag, err))
			return core.NewStartTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusBlocked), 0), nil
		}
	}

	// a session the device forgot about blocks the connector; close it
	if connector.HasActiveTransaction() {
		h.closePhantom(st, connector.Id, connector.ActiveTransactionId, time.Time{})
	}

	timestamp := now().UTC()
	if request.Timestamp != nil {
		timestamp = request.Timestamp.Time
	}
	transaction := &entity.Transaction{
		Id:          h.allocateTransactionId(),
		TenantId:    st.TenantId,
		ChargeBoxId: st.Id,
		ConnectorId: connectorId,
		TagId:       request.IdTag,
		MeterStart:  float64(request.MeterStart),
		StartTime:   timestamp,
	}
	if userTag != nil {
		transaction.TagId = userTag.IdTag
		transaction.UserId = userTag.UserId
		transaction.Username = userTag.Username
	}

	if h.sessions != nil {
		if err = h.sessions.Begin(transaction); err != nil {
			h.logger.Error("starting transaction", err)
		}
	}
	if err = station.BindTransaction(st, connectorId, transaction.Id); err != nil {
		h.logger.Error("binding transaction", err)
	}
	h.saveStation(st)

	if h.trigger != nil {
		h.trigger.Register <- &WatchedSession{
			TenantId:      st.TenantId,
			ChargeBoxId:   st.Id,
			ConnectorId:   connectorId,
			TransactionId: transaction.Id,
		}
	}
	observeSessionStart(st.TenantId, st.Id)

	if h.eventHandler != nil {
		h.eventHandler.OnTransactionStart(&internal.EventMessage{
			Type:          "StartTransaction",
			TenantId:      st.TenantId,
			ChargeBoxId:   st.Id,
			ConnectorId:   connectorId,
			Time:          transaction.StartTime,
			Username:      transaction.Username,
			IdTag:         transaction.TagId,
			TransactionId: transaction.Id,
			Status:        connector.Status,
			Payload:       request,
		})
	}

	h.logger.FeatureEvent(request.GetFeatureName(), st.Id, fmt.Sprintf("started transaction #%v on connector %v", transaction.Id, connectorId))
	return core.NewStartTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusAccepted), transaction.Id), nil
}

func activeConnectorId(st *entity.ChargingStation) int {
	for i := range st.Connectors {
		if st.Connectors[i].HasActiveTransaction() {
			return st.Connectors[i].Id
		}
	}
	return 0
}

// closePhantom seals a session the station no longer reports and frees its
// connector. Called with the station lock held.
func (h *SystemHandler) closePhantom(st *entity.ChargingStation, connectorId, transactionId int, at time.Time) {
	h.logger.Warn(fmt.Sprintf("%s: closing phantom transaction %d on connector %d", st.Id, transactionId, connectorId))
	if h.database != nil && h.sessions != nil {
		transaction, err := h.database.GetTransaction(st.TenantId, transactionId)
		if err != nil {
			h.logger.Error("loading phantom transaction", err)
		} else if transaction != nil && !transaction.Finished() {
			if err = h.sessions.ForceStop(transaction, string(core.ReasonOther), at); err != nil {
				h.logger.Error("closing phantom transaction", err)
			}
			observeSessionStop(st.TenantId, st.Id, string(core.ReasonOther))
		}
	}
	if h.trigger != nil {
		h.trigger.Unregister <- transactionId
	}
	station.ReleaseTransaction(st, connectorId)
}

func (h *SystemHandler) OnStopTransaction(ws ocpp.WebSocket, request *core.StopTransactionRequest) (*core.StopTransactionResponse, error) {
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err != nil {
		return core.NewStopTransactionResponse(), nil
	}
	if h.database == nil || h.sessions == nil {
		return core.NewStopTransactionResponse(), nil
	}

	state.mux.Lock()
	defer state.mux.Unlock()
	st := state.station

	transaction, err := h.database.GetTransaction(st.TenantId, request.TransactionId)
	if err != nil {
		h.logger.Error("loading transaction", err)
		return core.NewStopTransactionResponse(), nil
	}
	if transaction == nil {
		h.logger.Warn(fmt.Sprintf("transaction #%v not found", request.TransactionId))
		return core.NewStopTransactionResponse(), nil
	}
	if transaction.Finished() {
		h.logger.Warn(fmt.Sprintf("transaction #%v is already finished", request.TransactionId))
		station.ReleaseTransaction(st, transaction.ConnectorId)
		h.saveStation(st)
		return core.NewStopTransactionResponse(), nil
	}

	reason := string(request.Reason)
	stopTag := transaction.TagId
	stopUser := transaction.UserId
	if remote, ok := h.takeRemoteStop(transaction.Id); ok {
		if reason == "" {
			reason = string(core.ReasonRemote)
		}
		if remote.tag != "" {
			stopTag = remote.tag
			stopUser = remote.userId
		}
	} else if h.tags != nil && request.IdTag != "" {
		userTag, _ := h.tags.ResolveTag(st.TenantId, st.Id, request.IdTag, request.GetFeatureName())
		if userTag != nil && userTag.IdTag != transaction.TagId {
			if !h.tags.CanStopSession(userTag, transaction, st) {
				h.logger.Warn(fmt.Sprintf("tag %s has no authority over transaction #%d; stop refused", request.IdTag, transaction.Id))
				response := core.NewStopTransactionResponse()
				response.IdTagInfo = types.NewIdTagInfo(types.AuthorizationStatusInvalid)
				return response, nil
			}
			stopTag = userTag.IdTag
			stopUser = userTag.UserId
		}
	}

	timestamp := now().UTC()
	if request.Timestamp != nil {
		timestamp = request.Timestamp.Time
	}
	err = h.sessions.Stop(transaction, session.StopRequest{
		MeterStop:       float64(request.MeterStop),
		Timestamp:       timestamp,
		TagId:           stopTag,
		UserId:          stopUser,
		Reason:          reason,
		TransactionData: meter.Normalize(st, transaction.ConnectorId, transaction.Id, request.TransactionData),
	})
	if err != nil {
		h.logger.Error("stopping transaction", err)
	}

	station.ReleaseTransaction(st, transaction.ConnectorId)
	if connector := st.FindConnector(transaction.ConnectorId); connector != nil {
		connector.TotalConsumptionWh += transaction.CurrentTotalConsumptionWh
	}
	h.saveStation(st)

	if h.trigger != nil {
		h.trigger.Unregister <- transaction.Id
	}
	observeSessionStop(st.TenantId, st.Id, reason)

	if h.eventHandler != nil {
		info := ""
		if transaction.Stop != nil {
			info = fmt.Sprintf("consumed %0.1f kWh", transaction.Stop.TotalConsumptionWh/1000)
			if transaction.Stop.TotalAmount > 0 {
				info += fmt.Sprintf(", cost %s", utility.CentsAsPrice(transaction.Stop.TotalAmount))
			}
		}
		h.eventHandler.OnTransactionStop(&internal.EventMessage{
			Type:          "StopTransaction",
			TenantId:      st.TenantId,
			ChargeBoxId:   st.Id,
			ConnectorId:   transaction.ConnectorId,
			Time:          timestamp,
			Username:      transaction.Username,
			IdTag:         stopTag,
			TransactionId: transaction.Id,
			Info:          info,
			Payload:       request,
		})
	}

	h.logger.FeatureEvent(request.GetFeatureName(), st.Id, fmt.Sprintf("stopped transaction %v %v", transaction.Id, reason))
	return core.NewStopTransactionResponse(), nil
}

func (h *SystemHandler) OnMeterValues(ws ocpp.WebSocket, request *core.MeterValuesRequest) (*core.MeterValuesResponse, error) {
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err != nil {
		return core.NewMeterValuesResponse(), nil
	}

	state.mux.Lock()
	defer state.mux.Unlock()
	st := state.station

	connectorId, rewritten := meter.ResolveConnectorId(st, request.ConnectorId)
	if rewritten {
		h.logger.Debug(fmt.Sprintf("%s: meter values on connector 0 rewritten to 1", st.Id))
	}

	transactionId := 0
	if request.TransactionId != nil {
		transactionId = *request.TransactionId
	} else if connector := st.FindConnector(connectorId); connector != nil {
		transactionId = connector.ActiveTransactionId
	}

	normalized := meter.Normalize(st, connectorId, transactionId, request.Samples())
	if len(normalized) == 0 {
		return core.NewMeterValuesResponse(), nil
	}

	if transactionId == 0 || h.database == nil || h.sessions == nil {
		// station level samples are kept for reporting only
		if h.database != nil {
			for i := range normalized {
				if err = h.database.AddMeterValue(&normalized[i]); err != nil {
					h.logger.Error("store meter value", err)
				}
			}
		}
		return core.NewMeterValuesResponse(), nil
	}

	transaction, err := h.database.GetTransaction(st.TenantId, transactionId)
	if err != nil {
		h.logger.Error("loading transaction", err)
		return core.NewMeterValuesResponse(), nil
	}
	if transaction == nil || transaction.Finished() {
		h.logger.Warn(fmt.Sprintf("meter values for inactive transaction #%d", transactionId))
		return core.NewMeterValuesResponse(), nil
	}

	beforeWh := transaction.CurrentTotalConsumptionWh
	beforeIdle := transaction.CurrentTotalInactivitySecs
	if err = h.sessions.ApplyMeterValues(transaction, normalized); err != nil {
		h.logger.Error("applying meter values", err)
	}
	observeConsumption(st.TenantId, st.Id, transaction.CurrentTotalConsumptionWh-beforeWh)
	observeInactivity(st.TenantId, st.Id, transaction.CurrentTotalInactivitySecs-beforeIdle)

	if connector := st.FindConnector(transaction.ConnectorId); connector != nil {
		connector.CurrentConsumptionW = transaction.CurrentConsumptionW
		h.saveStation(st)
	}

	h.logger.FeatureEvent(request.GetFeatureName(), st.Id,
		fmt.Sprintf("connector %d transaction #%d: %0.1f Wh total, %0.1f W", connectorId, transactionId,
			transaction.CurrentTotalConsumptionWh, transaction.CurrentConsumptionW))
	return core.NewMeterValuesResponse(), nil
}

func (h *SystemHandler) OnStatusNotification(ws ocpp.WebSocket, request *core.StatusNotificationRequest) (*core.StatusNotificationResponse, error) {
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err != nil {
		return core.NewStatusNotificationResponse(), nil
	}

	state.mux.Lock()
	defer state.mux.Unlock()
	st := state.station

	timestamp := now().UTC()
	if request.Timestamp != nil {
		timestamp = request.Timestamp.Time
	}
	result := station.ApplyStatus(st, station.StatusUpdate{
		ConnectorId:     request.ConnectorId,
		Status:          string(request.Status),
		ErrorCode:       string(request.ErrorCode),
		Info:            request.Info,
		VendorErrorCode: request.VendorErrorCode,
		Timestamp:       timestamp,
	})

	if result.Ignored {
		h.logger.Debug(fmt.Sprintf("%s: ignored connector 0 status %s", st.Id, request.Status))
		return core.NewStatusNotificationResponse(), nil
	}
	if result.Dropped {
		h.logger.Debug(fmt.Sprintf("%s: duplicate status %s on connector %d", st.Id, request.Status, request.ConnectorId))
		return core.NewStatusNotificationResponse(), nil
	}

	for _, phantom := range result.Phantoms {
		h.closePhantom(st, phantom.ConnectorId, phantom.TransactionId, timestamp)
	}

	if request.ErrorCode != core.NoError {
		observeError(st.TenantId, st.Id, string(request.ErrorCode))
	}

	if len(result.Applied) > 0 {
		h.saveStation(st)
		h.logger.FeatureEvent(request.GetFeatureName(), st.Id,
			fmt.Sprintf("connectors %v status %s error %s", result.Applied, request.Status, request.ErrorCode))
	}

	if h.eventHandler != nil {
		for _, connectorId := range result.Applied {
			transactionId := 0
			if connector := st.FindConnector(connectorId); connector != nil {
				transactionId = connector.ActiveTransactionId
			}
			h.eventHandler.OnStatusNotification(&internal.EventMessage{
				Type:          "StatusNotification",
				TenantId:      st.TenantId,
				ChargeBoxId:   st.Id,
				ConnectorId:   connectorId,
				Time:          timestamp,
				Status:        string(request.Status),
				Info:          request.Info,
				TransactionId: transactionId,
				Payload:       request,
			})
		}
	}

	return core.NewStatusNotificationResponse(), nil
}

func (h *SystemHandler) OnDataTransfer(ws ocpp.WebSocket, request *core.DataTransferRequest) (*core.DataTransferResponse, error) {
	_, err := h.getStation(ws.TenantID(), ws.ID())
	if err != nil {
		return core.NewDataTransferResponse(core.DataTransferStatusRejected), nil
	}
	h.logger.FeatureEvent(request.GetFeatureName(), ws.ID(), fmt.Sprintf("vendor %s message %s", request.VendorId, request.MessageId))
	return core.NewDataTransferResponse(core.DataTransferStatusAccepted), nil
}

func (h *SystemHandler) OnDiagnosticsStatusNotification(ws ocpp.WebSocket, request *firmware.DiagnosticsStatusNotificationRequest) (*firmware.DiagnosticsStatusNotificationResponse, error) {
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err == nil {
		state.mux.Lock()
		state.diagnosticsStatus = request.Status
		state.mux.Unlock()
		h.logger.FeatureEvent(request.GetFeatureName(), ws.ID(), fmt.Sprintf("diagnostics status %v", request.Status))
	}
	return firmware.NewDiagnosticsStatusNotificationResponse(), nil
}

func (h *SystemHandler) OnFirmwareStatusNotification(ws ocpp.WebSocket, request *firmware.StatusNotificationRequest) (*firmware.StatusNotificationResponse, error) {
	state, err := h.getStation(ws.TenantID(), ws.ID())
	if err == nil {
		state.mux.Lock()
		state.firmwareStatus = request.Status
		state.mux.Unlock()
		h.logger.FeatureEvent(request.GetFeatureName(), ws.ID(), fmt.Sprintf("firmware status %v", request.Status))
	}
	return firmware.NewStatusNotificationResponse(), nil
}

func (h *SystemHandler) OnRemoteStartTransaction(tenantId, chargeBoxId string, connectorId int, idTag string) (*core.RemoteStartTransactionRequest, error) {
	state, err := h.getStation(tenantId, chargeBoxId)
	if err != nil {
		return nil, err
	}
	if !state.station.IsEnabled {
		return nil, fmt.Errorf("station %s is disabled", chargeBoxId)
	}
	if h.tags != nil {
		if _, err = h.tags.ResolveTag(tenantId, chargeBoxId, idTag, core.RemoteStartTransactionFeatureName); err != nil {
			return nil, err
		}
	}
	request := core.NewRemoteStartTransactionRequest(idTag, connectorId)
	h.logger.FeatureEvent(request.GetFeatureName(), chargeBoxId, fmt.Sprintf("remote start on connector %d for tag %s", connectorId, idTag))
	return request, nil
}

// OnRemoteStopTransaction prepares a RemoteStopTransaction command. When the
// operator supplied a badge the eventual stop is attributed to it.
func (h *SystemHandler) OnRemoteStopTransaction(tenantId, chargeBoxId, payload, idTag string) (*core.RemoteStopTransactionRequest, error) {
	if _, err := h.getStation(tenantId, chargeBoxId); err != nil {
		return nil, err
	}
	transactionId, err := strconv.Atoi(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q", payload)
	}
	if h.database != nil {
		transaction, err := h.database.GetTransaction(tenantId, transactionId)
		if err != nil {
			return nil, err
		}
		if transaction == nil {
			return nil, entity.ErrTransactionNotFound
		}
		if transaction.Finished() {
			return nil, entity.ErrTransactionFinished
		}
	}
	var userId string
	if h.tags != nil && idTag != "" {
		if userTag, err := h.tags.ResolveTag(tenantId, chargeBoxId, idTag, core.RemoteStopTransactionFeatureName); err == nil && userTag != nil {
			idTag = userTag.IdTag
			userId = userTag.UserId
		}
	}
	h.registerRemoteStop(transactionId, idTag, userId)
	request := core.NewRemoteStopTransactionRequest(transactionId)
	h.logger.FeatureEvent(request.GetFeatureName(), chargeBoxId, fmt.Sprintf("remote stop of transaction #%d", transactionId))
	return request, nil
}

func (h *SystemHandler) OnReset(tenantId, chargeBoxId string, payload string) (*core.ResetRequest, error) {
	if _, err := h.getStation(tenantId, chargeBoxId); err != nil {
		return nil, err
	}
	resetType := core.ResetTypeSoft
	if payload == string(core.ResetTypeHard) {
		resetType = core.ResetTypeHard
	}
	request := core.NewResetRequest(resetType)
	h.logger.FeatureEvent(request.GetFeatureName(), chargeBoxId, string(resetType))
	return request, nil
}

func (h *SystemHandler) OnUnlockConnector(tenantId, chargeBoxId string, connectorId int) (*core.UnlockConnectorRequest, error) {
	state, err := h.getStation(tenantId, chargeBoxId)
	if err != nil {
		return nil, err
	}
	state.mux.Lock()
	connector := state.station.FindConnector(connectorId)
	state.mux.Unlock()
	if connector == nil {
		return nil, entity.ErrConnectorNotFound
	}
	request := core.NewUnlockConnectorRequest(connectorId)
	h.logger.FeatureEvent(request.GetFeatureName(), chargeBoxId, fmt.Sprintf("unlock connector %d", connectorId))
	return request, nil
}

func (h *SystemHandler) OnTriggerMessage(tenantId, chargeBoxId string, connectorId int, message string) (*remotetrigger.TriggerMessageRequest, error) {
	if _, err := h.getStation(tenantId, chargeBoxId); err != nil {
		return nil, err
	}
	request := remotetrigger.NewTriggerMessageRequest(remotetrigger.MessageTrigger(message), connectorId)
	h.logger.FeatureEvent(request.GetFeatureName(), chargeBoxId, fmt.Sprintf("message: %v", message))
	return request, nil
}
