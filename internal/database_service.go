package internal

import "emobility/entity"

// Database is the storage collaborator. Everything is keyed by tenant id;
// a nil Database means persistence is disabled and handlers keep working
// on in-memory state only.
type Database interface {
	WriteLogMessage(data Data) error
	ReadLog(tenantId string) (interface{}, error)

	GetChargingStation(tenantId, id string) (*entity.ChargingStation, error)
	GetChargingStations(tenantId string) ([]entity.ChargingStation, error)
	AddChargingStation(station *entity.ChargingStation) error
	UpdateChargingStation(station *entity.ChargingStation) error

	GetTransaction(tenantId string, id int) (*entity.Transaction, error)
	GetLastTransaction() (*entity.Transaction, error)
	GetActiveTransaction(tenantId, chargeBoxId string, connectorId int) (*entity.Transaction, error)
	GetActiveTransactions(tenantId, chargeBoxId string) ([]entity.Transaction, error)
	AddTransaction(transaction *entity.Transaction) error
	UpdateTransaction(transaction *entity.Transaction) error

	AddMeterValue(value *entity.MeterValue) error
	AddConsumption(consumption *entity.Consumption) error

	GetUserTag(tenantId, idTag string) (*entity.UserTag, error)
	AddUserTag(userTag *entity.UserTag) error
	UpdateUserTag(userTag *entity.UserTag) error

	GetSiteArea(tenantId, id string) (*entity.SiteArea, error)

	GetSubscriptions() ([]entity.UserSubscription, error)
	AddSubscription(subscription *entity.UserSubscription) error
	DeleteSubscription(subscription *entity.UserSubscription) error
}

type Data interface {
	DataType() string
}
