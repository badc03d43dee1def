package api

import (
	"encoding/json"
	"fmt"

	"emobility/internal"
	"emobility/utility"
)

type CallType string

const (
	ReadLog            CallType = "ReadLog"
	ListStations       CallType = "ListStations"
	ActiveTransactions CallType = "ActiveTransactions"
	TransactionInfo    CallType = "TransactionInfo"
)

// Call is one read query against the engine's stored state.
// Payload carries the call-specific argument, e.g. a transaction id.
type Call struct {
	CallType    CallType
	TenantId    string
	ChargeBoxId string
	Payload     string
	Remote      string
}

type Handler struct {
	logger   internal.LogHandler
	database internal.Database
}

func (h *Handler) SetLogger(logger internal.LogHandler) {
	h.logger = logger
}

func (h *Handler) SetDatabase(database internal.Database) {
	h.database = database
}

func NewApiHandler() *Handler {
	handler := Handler{}
	return &handler
}

func (h *Handler) HandleApiCall(ac *Call) []byte {
	h.logger.Debug(fmt.Sprintf("api call %s from remote %s", ac.CallType, ac.Remote))
	if h.database == nil {
		return nil
	}

	var data interface{}
	var err error
	switch ac.CallType {
	case ReadLog:
		data, err = h.database.ReadLog(ac.TenantId)
	case ListStations:
		data, err = h.database.GetChargingStations(ac.TenantId)
	case ActiveTransactions:
		data, err = h.database.GetActiveTransactions(ac.TenantId, ac.ChargeBoxId)
	case TransactionInfo:
		data, err = h.database.GetTransaction(ac.TenantId, utility.ToInt(ac.Payload))
	default:
		h.logger.Warn(fmt.Sprintf("unsupported api call %s", ac.CallType))
		return nil
	}
	if err != nil {
		h.logger.Error(fmt.Sprintf("api call %s failed", ac.CallType), err)
		return nil
	}
	byteData, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("encoding api response failed", err)
		return nil
	}
	return byteData
}
