package entity

import "time"

// Attribute qualifies a meter sample. Stations frequently omit some or all
// of these fields; the normalizer fills the defaults below.
type Attribute struct {
	Context   string `json:"context" bson:"context"`
	Format    string `json:"format" bson:"format"`
	Measurand string `json:"measurand" bson:"measurand"`
	Location  string `json:"location" bson:"location"`
	Unit      string `json:"unit" bson:"unit"`
	Phase     string `json:"phase,omitempty" bson:"phase,omitempty"`
}

func DefaultAttribute() Attribute {
	return Attribute{
		Context:   "Sample.Periodic",
		Format:    "Raw",
		Measurand: "Energy.Active.Import.Register",
		Location:  "Outlet",
		Unit:      "Wh",
	}
}

// MeterValue is one normalized sample: a cumulative register reading in Wh
// (or a state-of-charge percentage) tagged with its owning transaction.
// Immutable once stored.
type MeterValue struct {
	TenantId      string    `json:"tenant_id" bson:"tenant_id"`
	ChargeBoxId   string    `json:"charge_box_id" bson:"charge_box_id"`
	ConnectorId   int       `json:"connector_id" bson:"connector_id"`
	TransactionId int       `json:"transaction_id" bson:"transaction_id"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
	Value         float64   `json:"value" bson:"value"`
	Attribute     Attribute `json:"attribute" bson:"attribute"`
}

func (mv *MeterValue) IsStateOfCharge() bool {
	return mv.Attribute.Measurand == "SoC"
}

func (mv *MeterValue) IsEnergyRegister() bool {
	return mv.Attribute.Measurand == "Energy.Active.Import.Register"
}
