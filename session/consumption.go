package session

import (
	"emobility/entity"
)

// ComputeInterval derives the billing interval between two consecutive
// register readings. The result never carries negative consumption: a
// register that moved backwards, typically after a meter swap or a firmware
// reset mid-session, yields a zero-consumption interval whose whole span
// counts as inactivity.
func ComputeInterval(prev, cur entity.MeterValue) entity.Consumption {
	consumption := entity.Consumption{
		TenantId:      cur.TenantId,
		ChargeBoxId:   cur.ChargeBoxId,
		ConnectorId:   cur.ConnectorId,
		TransactionId: cur.TransactionId,
		StartedAt:     prev.Timestamp,
		EndedAt:       cur.Timestamp,
	}

	elapsed := cur.Timestamp.Sub(prev.Timestamp).Seconds()
	if elapsed <= 0 {
		// out of order or duplicated timestamp; collapse to a zero-duration
		// record instead of producing infinite power
		consumption.StartedAt = cur.Timestamp
		return consumption
	}

	delta := cur.Value - prev.Value
	if delta <= 0 {
		consumption.InactivitySecs = int(elapsed)
		return consumption
	}

	consumption.ConsumptionWh = delta
	consumption.InstantPowerW = delta * 3600 / elapsed
	return consumption
}

// startConsumption is the synthetic zero record that anchors a new session
// at its start time, so pricing has an interval to hang the session fee on.
func startConsumption(transaction *entity.Transaction) entity.Consumption {
	return entity.Consumption{
		TenantId:      transaction.TenantId,
		ChargeBoxId:   transaction.ChargeBoxId,
		ConnectorId:   transaction.ConnectorId,
		TransactionId: transaction.Id,
		StartedAt:     transaction.StartTime,
		EndedAt:       transaction.StartTime,
	}
}
