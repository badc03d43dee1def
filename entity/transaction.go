package entity

import "time"

// TransactionStop seals a finished session. Present iff the transaction is
// Finished; a transaction is never mutated after its stop record is written.
type TransactionStop struct {
	MeterStop           float64   `json:"meter_stop" bson:"meter_stop"`
	Timestamp           time.Time `json:"timestamp" bson:"timestamp"`
	TagId               string    `json:"tag_id" bson:"tag_id"`
	UserId              string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Reason              string    `json:"reason,omitempty" bson:"reason,omitempty"`
	TotalConsumptionWh  float64   `json:"total_consumption_wh" bson:"total_consumption_wh"`
	TotalInactivitySecs int       `json:"total_inactivity_secs" bson:"total_inactivity_secs"`
	TotalDurationSecs   int       `json:"total_duration_secs" bson:"total_duration_secs"`
	TotalAmount         int       `json:"total_amount" bson:"total_amount"`
	StateOfCharge       int       `json:"state_of_charge,omitempty" bson:"state_of_charge,omitempty"`
}

// Transaction is one charging session, Active until its Stop record is set.
// Runtime totals are only ever increased while the session is Active.
type Transaction struct {
	Id          int       `json:"transaction_id" bson:"transaction_id"`
	TenantId    string    `json:"tenant_id" bson:"tenant_id"`
	ChargeBoxId string    `json:"charge_box_id" bson:"charge_box_id"`
	ConnectorId int       `json:"connector_id" bson:"connector_id"`
	TagId       string    `json:"tag_id" bson:"tag_id"`
	UserId      string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Username    string    `json:"username,omitempty" bson:"username,omitempty"`
	MeterStart  float64   `json:"meter_start" bson:"meter_start"`
	StartTime   time.Time `json:"start_time" bson:"start_time"`

	CurrentConsumptionW        float64 `json:"current_consumption_w" bson:"current_consumption_w"`
	CurrentTotalConsumptionWh  float64 `json:"current_total_consumption_wh" bson:"current_total_consumption_wh"`
	CurrentTotalInactivitySecs int     `json:"current_total_inactivity_secs" bson:"current_total_inactivity_secs"`
	CurrentStateOfCharge       int     `json:"current_state_of_charge" bson:"current_state_of_charge"`
	CurrentAmount              int     `json:"current_amount" bson:"current_amount"`

	LastMeterValue *MeterValue      `json:"last_meter_value,omitempty" bson:"last_meter_value,omitempty"`
	Stop           *TransactionStop `json:"stop,omitempty" bson:"stop,omitempty"`
}

func (t *Transaction) Finished() bool {
	return t.Stop != nil
}

// LastSample returns the most recently applied energy sample, falling back
// to a synthetic sample at meter start for a session with no samples yet.
func (t *Transaction) LastSample() MeterValue {
	if t.LastMeterValue != nil {
		return *t.LastMeterValue
	}
	return MeterValue{
		TenantId:      t.TenantId,
		ChargeBoxId:   t.ChargeBoxId,
		ConnectorId:   t.ConnectorId,
		TransactionId: t.Id,
		Timestamp:     t.StartTime,
		Value:         t.MeterStart,
		Attribute:     DefaultAttribute(),
	}
}
