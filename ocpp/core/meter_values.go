package core

import "emobility/types"

const MeterValuesFeatureName = "MeterValues"

// MeterValuesRequest carries sampled register readings. Newer stations send
// the MeterValue list; ocpp1.5 firmwares send the same data under "values".
type MeterValuesRequest struct {
	ConnectorId   int                `json:"connectorId" validate:"gte=0"`
	TransactionId *int               `json:"transactionId,omitempty"`
	MeterValue    []types.MeterValue `json:"meterValue,omitempty" validate:"omitempty,dive"`
	Values        []types.MeterValue `json:"values,omitempty" validate:"omitempty,dive"`
}

// Samples joins both wire variants in arrival order.
func (r *MeterValuesRequest) Samples() []types.MeterValue {
	if len(r.Values) == 0 {
		return r.MeterValue
	}
	return append(append([]types.MeterValue{}, r.MeterValue...), r.Values...)
}

type MeterValuesResponse struct {
}

func (r MeterValuesRequest) GetFeatureName() string {
	return MeterValuesFeatureName
}

func (c MeterValuesResponse) GetFeatureName() string {
	return MeterValuesFeatureName
}

func NewMeterValuesResponse() *MeterValuesResponse {
	return &MeterValuesResponse{}
}
