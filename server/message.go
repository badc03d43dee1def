package server

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"emobility/ocpp"
	"emobility/ocpp/core"
	"emobility/ocpp/firmware"
	"emobility/utility"
)

type CallType int

const (
	CallTypeRequest CallType = 2
	CallTypeResult  CallType = 3
	CallTypeError   CallType = 4
)

var validate = validator.New()

// MessageType reads the call type discriminator of a parsed frame.
func MessageType(fields []interface{}) (CallType, error) {
	if len(fields) < 3 {
		return 0, utility.Err("incompatible message structure")
	}
	rawTypeId, ok := fields[0].(float64)
	if !ok {
		return 0, utility.Err("invalid message type discriminator")
	}
	callType := CallType(rawTypeId)
	switch callType {
	case CallTypeRequest, CallTypeResult, CallTypeError:
		return callType, nil
	}
	return 0, fmt.Errorf("unsupported call type: %v", rawTypeId)
}

// CallResult is an OCPP-J CallResult frame carrying a response payload.
type CallResult struct {
	TypeId   CallType
	UniqueId string
	Payload  ocpp.Response
}

func (callResult *CallResult) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 3)
	fields[0] = int(callResult.TypeId)
	fields[1] = callResult.UniqueId
	fields[2] = callResult.Payload
	return json.Marshal(fields)
}

func CreateCallResult(response ocpp.Response, uniqueId string) (*CallResult, error) {
	callResult := CallResult{
		TypeId:   CallTypeResult,
		UniqueId: uniqueId,
		Payload:  response,
	}
	return &callResult, nil
}

// CallError is an OCPP-J CallError frame. Error codes come from the
// protocol's fixed list; the details object is always empty here.
type CallError struct {
	UniqueId    string
	Code        string
	Description string
}

func (callError *CallError) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 5)
	fields[0] = int(CallTypeError)
	fields[1] = callError.UniqueId
	fields[2] = callError.Code
	fields[3] = callError.Description
	fields[4] = struct{}{}
	return json.Marshal(fields)
}

type CallRequest struct {
	TypeId   CallType
	UniqueId string
	feature  string
	Payload  ocpp.Request
}

func (callRequest *CallRequest) GetFeatureName() string {
	return callRequest.feature
}

func (callRequest *CallRequest) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 4)
	fields[0] = int(callRequest.TypeId)
	fields[1] = callRequest.UniqueId
	fields[2] = callRequest.feature
	fields[3] = callRequest.Payload
	return json.Marshal(fields)
}

// RawCallResult is an inbound CallResult whose payload stays unparsed; the
// waiter that issued the request knows what to expect of it.
type RawCallResult struct {
	UniqueId string
	Payload  string
}

func ParseResult(fields []interface{}) (*RawCallResult, error) {
	if len(fields) < 3 {
		return nil, utility.Err("incompatible result structure")
	}
	uniqueId, ok := fields[1].(string)
	if !ok {
		return nil, utility.Err("invalid unique id in result")
	}
	payload := ""
	if fields[2] != nil {
		data, err := json.Marshal(fields[2])
		if err != nil {
			return nil, err
		}
		payload = string(data)
	}
	return &RawCallResult{UniqueId: uniqueId, Payload: payload}, nil
}

func ParseRequest(fields []interface{}) (*CallRequest, error) {
	if len(fields) != 4 {
		return nil, utility.Err("unsupported request format; expected length: 4 elements")
	}
	rawTypeId, ok := fields[0].(float64)
	if !ok {
		return nil, utility.Err("invalid message type in request")
	}
	typeId := CallType(rawTypeId)
	if typeId != CallTypeRequest {
		return nil, fmt.Errorf("invalid request type id: %v", typeId)
	}
	uniqueId, ok := fields[1].(string)
	if !ok {
		return nil, utility.Err("invalid message unique id in request")
	}
	action, ok := fields[2].(string)
	if !ok {
		return nil, utility.Err("invalid action in request")
	}

	requestType, err := getRequestType(action)
	if err != nil {
		return nil, err
	}
	request, err := ocpp.ParseRawJsonRequest(fields[3], requestType)
	if err != nil {
		return nil, err
	}
	if err = validate.Struct(request); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", action, err)
	}
	callRequest := CallRequest{
		TypeId:   typeId,
		UniqueId: uniqueId,
		feature:  action,
		Payload:  request,
	}
	return &callRequest, nil
}

func getRequestType(action string) (requestType reflect.Type, err error) {
	switch action {
	case core.BootNotificationFeatureName:
		requestType = reflect.TypeOf(core.BootNotificationRequest{})
	case core.AuthorizeFeatureName:
		requestType = reflect.TypeOf(core.AuthorizeRequest{})
	case core.HeartbeatFeatureName:
		requestType = reflect.TypeOf(core.HeartbeatRequest{})
	case core.StartTransactionFeatureName:
		requestType = reflect.TypeOf(core.StartTransactionRequest{})
	case core.StopTransactionFeatureName:
		requestType = reflect.TypeOf(core.StopTransactionRequest{})
	case core.MeterValuesFeatureName:
		requestType = reflect.TypeOf(core.MeterValuesRequest{})
	case core.StatusNotificationFeatureName:
		requestType = reflect.TypeOf(core.StatusNotificationRequest{})
	case core.DataTransferFeatureName:
		requestType = reflect.TypeOf(core.DataTransferRequest{})
	case firmware.DiagnosticsStatusNotificationFeatureName:
		requestType = reflect.TypeOf(firmware.DiagnosticsStatusNotificationRequest{})
	case firmware.StatusNotificationFeatureName:
		requestType = reflect.TypeOf(firmware.StatusNotificationRequest{})
	default:
		return nil, fmt.Errorf("unsupported action requested: %s", action)
	}
	return requestType, nil
}
