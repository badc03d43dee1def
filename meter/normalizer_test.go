package meter

import (
	"testing"
	"time"

	"emobility/entity"
	"emobility/types"
)

func singleConnectorStation(vendor string) *entity.ChargingStation {
	return &entity.ChargingStation{
		Id:         "cb-1",
		TenantId:   "t1",
		Vendor:     vendor,
		Connectors: []entity.Connector{{Id: 1, Status: "Available"}},
	}
}

func TestResolveConnectorId(t *testing.T) {
	st := singleConnectorStation("KEBA AG")
	id, rewritten := ResolveConnectorId(st, 0)
	if id != 1 || !rewritten {
		t.Fatalf("expected rewrite to 1, got %d %v", id, rewritten)
	}

	id, rewritten = ResolveConnectorId(st, 2)
	if id != 2 || rewritten {
		t.Fatalf("non-zero id must pass through, got %d %v", id, rewritten)
	}

	plain := singleConnectorStation("generic")
	id, rewritten = ResolveConnectorId(plain, 0)
	if id != 0 || rewritten {
		t.Fatalf("no quirk, no rewrite: got %d %v", id, rewritten)
	}

	multi := singleConnectorStation("KEBA AG")
	multi.Connectors = append(multi.Connectors, entity.Connector{Id: 2})
	id, rewritten = ResolveConnectorId(multi, 0)
	if id != 0 || rewritten {
		t.Fatalf("rewrite applies to single-connector devices only, got %d %v", id, rewritten)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	st := singleConnectorStation("generic")
	at := types.NewDateTime(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	values := []types.MeterValue{{
		Timestamp:    at,
		SampledValue: []types.SampledValue{{Value: "1500"}},
	}}

	result := Normalize(st, 1, 42, values)
	if len(result) != 1 {
		t.Fatalf("expected one sample, got %d", len(result))
	}
	sample := result[0]
	if sample.TenantId != "t1" || sample.ChargeBoxId != "cb-1" || sample.ConnectorId != 1 || sample.TransactionId != 42 {
		t.Fatalf("envelope not applied: %+v", sample)
	}
	if sample.Value != 1500 {
		t.Fatalf("expected value 1500, got %v", sample.Value)
	}
	if sample.Attribute != entity.DefaultAttribute() {
		t.Fatalf("missing attributes must take defaults: %+v", sample.Attribute)
	}
	if !sample.Timestamp.Equal(at.Time) {
		t.Fatalf("timestamp not carried: %v", sample.Timestamp)
	}
}

func TestNormalizeKiloUnits(t *testing.T) {
	st := singleConnectorStation("generic")
	at := types.NewDateTime(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	values := []types.MeterValue{{
		Timestamp: at,
		SampledValue: []types.SampledValue{
			{Value: "1.5", Unit: types.UnitOfMeasureKWh},
			{Value: "7.4", Unit: types.UnitOfMeasureKW, Measurand: types.MeasurandPowerActiveImport},
		},
	}}

	result := Normalize(st, 1, 42, values)
	if len(result) != 2 {
		t.Fatalf("expected two samples, got %d", len(result))
	}
	if result[0].Value != 1500 || result[0].Attribute.Unit != "Wh" {
		t.Fatalf("kWh must convert to Wh: %v %s", result[0].Value, result[0].Attribute.Unit)
	}
	if result[1].Value != 7400 || result[1].Attribute.Unit != "W" {
		t.Fatalf("kW must convert to W: %v %s", result[1].Value, result[1].Attribute.Unit)
	}
}

func TestNormalizeStateOfCharge(t *testing.T) {
	st := singleConnectorStation("generic")
	at := types.NewDateTime(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	values := []types.MeterValue{{
		Timestamp: at,
		SampledValue: []types.SampledValue{
			{Value: "80", Measurand: types.MeasurandSoC, Unit: types.UnitOfMeasurePercent},
		},
	}}

	result := Normalize(st, 1, 42, values)
	if len(result) != 1 || !result[0].IsStateOfCharge() {
		t.Fatalf("expected a state-of-charge sample: %+v", result)
	}
	if result[0].Value != 80 {
		t.Fatalf("expected 80, got %v", result[0].Value)
	}
}

func TestNormalizeMissingTimestamp(t *testing.T) {
	st := singleConnectorStation("generic")
	values := []types.MeterValue{{
		SampledValue: []types.SampledValue{{Value: "100"}},
	}}

	before := time.Now().UTC()
	result := Normalize(st, 1, 0, values)
	after := time.Now().UTC()
	if len(result) != 1 {
		t.Fatalf("expected one sample, got %d", len(result))
	}
	ts := result[0].Timestamp
	if ts.Before(before) || ts.After(after) {
		t.Fatalf("missing timestamp must default to now, got %v", ts)
	}
}
