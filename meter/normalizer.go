package meter

import (
	"time"

	"emobility/entity"
	"emobility/types"
	"emobility/utility"
)

// ResolveConnectorId applies the zero-connector vendor quirk to a meter or
// status message: some single-connector devices report connectorId 0 while
// meaning their only connector. Returns the effective id and whether it was
// rewritten; the caller records the warning.
func ResolveConnectorId(station *entity.ChargingStation, connectorId int) (int, bool) {
	if connectorId != 0 {
		return connectorId, false
	}
	quirks := entity.QuirksFor(station.Vendor)
	if quirks.ZeroConnectorMeansOne && len(station.Connectors) <= 1 {
		return 1, true
	}
	return connectorId, false
}

// Normalize converts any supported wire variant of a meter values payload
// into the canonical sample list. Every output record is tagged with the
// owning station, connector and transaction from the message envelope, and
// missing attribute fields are filled with the protocol defaults. Pure
// except for the value arithmetic; no ordering guarantees beyond arrival.
func Normalize(station *entity.ChargingStation, connectorId, transactionId int, values []types.MeterValue) []entity.MeterValue {
	var result []entity.MeterValue
	for _, group := range values {
		timestamp := time.Now().UTC()
		if group.Timestamp != nil {
			timestamp = group.Timestamp.Time
		}
		for _, sample := range group.SampledValue {
			normalized := entity.MeterValue{
				TenantId:      station.TenantId,
				ChargeBoxId:   station.Id,
				ConnectorId:   connectorId,
				TransactionId: transactionId,
				Timestamp:     timestamp,
				Attribute:     normalizeAttribute(sample),
			}
			normalized.Value, normalized.Attribute.Unit = normalizeValue(sample, normalized.Attribute.Unit)
			result = append(result, normalized)
		}
	}
	return result
}

func normalizeAttribute(sample types.SampledValue) entity.Attribute {
	attribute := entity.DefaultAttribute()
	if sample.Context != "" {
		attribute.Context = string(sample.Context)
	}
	if sample.Format != "" {
		attribute.Format = string(sample.Format)
	}
	if sample.Measurand != "" {
		attribute.Measurand = string(sample.Measurand)
	}
	if sample.Location != "" {
		attribute.Location = string(sample.Location)
	}
	if sample.Phase != "" {
		attribute.Phase = string(sample.Phase)
	}
	if sample.Unit != "" {
		attribute.Unit = string(sample.Unit)
	}
	return attribute
}

// normalizeValue parses the reported reading and converts kilo-units to the
// canonical base unit, so energy registers are always Wh and power always W.
func normalizeValue(sample types.SampledValue, unit string) (float64, string) {
	value := utility.ToFloat(sample.Value)
	switch types.UnitOfMeasure(unit) {
	case types.UnitOfMeasureKWh:
		return value * 1000, string(types.UnitOfMeasureWh)
	case types.UnitOfMeasureKW:
		return value * 1000, string(types.UnitOfMeasureW)
	}
	return value, unit
}
