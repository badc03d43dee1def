package entity

import "time"

// Consumption is one derived billing interval between two consecutive meter
// values, or the synthetic interval at session start and stop. Pricing fields
// are filled by the pricing collaborator. Immutable once stored.
type Consumption struct {
	TenantId               string    `json:"tenant_id" bson:"tenant_id"`
	ChargeBoxId            string    `json:"charge_box_id" bson:"charge_box_id"`
	ConnectorId            int       `json:"connector_id" bson:"connector_id"`
	TransactionId          int       `json:"transaction_id" bson:"transaction_id"`
	StartedAt              time.Time `json:"started_at" bson:"started_at"`
	EndedAt                time.Time `json:"ended_at" bson:"ended_at"`
	InstantPowerW          float64   `json:"instant_power_w" bson:"instant_power_w"`
	ConsumptionWh          float64   `json:"consumption_wh" bson:"consumption_wh"`
	CumulatedConsumptionWh float64   `json:"cumulated_consumption_wh" bson:"cumulated_consumption_wh"`
	InactivitySecs         int       `json:"inactivity_secs" bson:"inactivity_secs"`
	StateOfCharge          *int      `json:"state_of_charge,omitempty" bson:"state_of_charge,omitempty"`
	PricingSource          string    `json:"pricing_source,omitempty" bson:"pricing_source,omitempty"`
	Amount                 int       `json:"amount" bson:"amount"`
	CumulatedAmount        int       `json:"cumulated_amount" bson:"cumulated_amount"`
	Currency               string    `json:"currency,omitempty" bson:"currency,omitempty"`
}
