package entity

// Connector is one physical socket on a charging station. Connectors are
// embedded in the station document and numbered from 1; id 0 never exists
// as a real connector and is only a broadcast sentinel on status messages.
type Connector struct {
	Id                  int     `json:"connector_id" bson:"connector_id"`
	Status              string  `json:"status" bson:"status"`
	ErrorCode           string  `json:"error_code" bson:"error_code"`
	Info                string  `json:"info,omitempty" bson:"info,omitempty"`
	VendorErrorCode     string  `json:"vendor_error_code,omitempty" bson:"vendor_error_code,omitempty"`
	CurrentConsumptionW float64 `json:"current_consumption_w" bson:"current_consumption_w"`
	TotalConsumptionWh  float64 `json:"total_consumption_wh" bson:"total_consumption_wh"`
	ActiveTransactionId int     `json:"active_transaction_id" bson:"active_transaction_id"`
	PowerW              int     `json:"power_w,omitempty" bson:"power_w,omitempty"`
	Locked              bool    `json:"locked" bson:"locked"`
}

// HasActiveTransaction reports whether a session is bound to this connector.
// Zero means none; transaction ids are allocated from 1.
func (c *Connector) HasActiveTransaction() bool {
	return c.ActiveTransactionId != 0
}
