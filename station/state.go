package station

import (
	"time"

	"emobility/entity"
)

// StatusUpdate is one status report from a station, already reduced to
// plain values. ConnectorId 0 is the broadcast sentinel unless a vendor
// quirk says otherwise.
type StatusUpdate struct {
	ConnectorId     int
	Status          string
	ErrorCode       string
	Info            string
	VendorErrorCode string
	Timestamp       time.Time
}

// Phantom marks a session still bound to a connector the station just
// reported as free. The caller is expected to force-close it.
type Phantom struct {
	ConnectorId   int
	TransactionId int
}

// StatusResult tells the caller what a status report did to the stored
// connector state.
type StatusResult struct {
	// Applied lists the connector ids whose stored state changed.
	Applied []int
	// Dropped is set when the report repeated the connector's current
	// status and error code and was discarded.
	Dropped bool
	// Ignored is set when a zero-connector report was suppressed by a
	// vendor quirk.
	Ignored bool
	// Phantoms lists sessions left dangling by this report.
	Phantoms []Phantom
}

// ApplyStatus folds one status report into the station's connector list and
// reports what changed. The station is mutated in place; persisting it is
// the caller's job.
func ApplyStatus(station *entity.ChargingStation, update StatusUpdate) StatusResult {
	quirks := entity.QuirksFor(station.Vendor)
	result := StatusResult{}

	if update.ConnectorId == 0 {
		if quirks.IgnoreZeroStatus {
			result.Ignored = true
			return result
		}
		if quirks.ZeroConnectorMeansOne {
			update.ConnectorId = 1
		} else {
			// broadcast: every known connector takes the new state
			for i := range station.Connectors {
				applyOne(&station.Connectors[i], update, &result)
			}
			return result
		}
	}

	connector := station.Connector(update.ConnectorId)
	if connector == nil {
		return result
	}
	if connector.Status == update.Status && connector.ErrorCode == update.ErrorCode {
		result.Dropped = true
		return result
	}
	applyOne(connector, update, &result)
	return result
}

func applyOne(connector *entity.Connector, update StatusUpdate, result *StatusResult) {
	if connector.Status == update.Status && connector.ErrorCode == update.ErrorCode {
		return
	}
	connector.Status = update.Status
	connector.ErrorCode = update.ErrorCode
	connector.Info = update.Info
	connector.VendorErrorCode = update.VendorErrorCode
	result.Applied = append(result.Applied, connector.Id)

	if (update.Status == "Available" || update.Status == "Finishing") && connector.HasActiveTransaction() {
		result.Phantoms = append(result.Phantoms, Phantom{
			ConnectorId:   connector.Id,
			TransactionId: connector.ActiveTransactionId,
		})
	}
}

// BindTransaction attaches a session to a connector. When the station
// cannot charge in parallel, every other idle connector is locked out so
// the next driver gets a clear refusal instead of a stalled session.
func BindTransaction(station *entity.ChargingStation, connectorId, transactionId int) error {
	connector := station.Connector(connectorId)
	if connector == nil {
		return entity.ErrConnectorNotFound
	}
	connector.ActiveTransactionId = transactionId
	connector.Status = "Charging"

	if !exclusive(station) {
		return nil
	}
	for i := range station.Connectors {
		other := &station.Connectors[i]
		if other.Id == connectorId || other.HasActiveTransaction() {
			continue
		}
		if other.Status == "Available" || other.Status == "Preparing" {
			other.Status = "Unavailable"
		}
		other.Locked = true
	}
	return nil
}

// ReleaseTransaction unbinds a finished session and lifts any exclusivity
// locks that were placed for it.
func ReleaseTransaction(station *entity.ChargingStation, connectorId int) {
	connector := station.FindConnector(connectorId)
	if connector != nil {
		connector.ActiveTransactionId = 0
		connector.CurrentConsumptionW = 0
	}
	for i := range station.Connectors {
		other := &station.Connectors[i]
		if !other.Locked || other.HasActiveTransaction() {
			continue
		}
		other.Locked = false
		if other.Status == "Unavailable" {
			other.Status = "Available"
		}
	}
}

func exclusive(station *entity.ChargingStation) bool {
	return station.CannotChargeInParallel || entity.QuirksFor(station.Vendor).SingleSessionOnly
}
