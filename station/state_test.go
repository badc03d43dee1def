package station

import (
	"testing"
	"time"

	"emobility/entity"
)

func twoConnectorStation(vendor string) *entity.ChargingStation {
	return &entity.ChargingStation{
		Id:       "cb-1",
		TenantId: "t1",
		Vendor:   vendor,
		Connectors: []entity.Connector{
			{Id: 1, Status: "Available"},
			{Id: 2, Status: "Available"},
		},
	}
}

func update(connectorId int, status, errorCode string) StatusUpdate {
	return StatusUpdate{
		ConnectorId: connectorId,
		Status:      status,
		ErrorCode:   errorCode,
		Timestamp:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestApplyStatusSingleConnector(t *testing.T) {
	st := twoConnectorStation("generic")
	result := ApplyStatus(st, update(2, "Preparing", "NoError"))
	if len(result.Applied) != 1 || result.Applied[0] != 2 {
		t.Fatalf("expected connector 2 applied, got %+v", result)
	}
	if st.Connectors[0].Status != "Available" {
		t.Fatalf("connector 1 must be untouched, got %s", st.Connectors[0].Status)
	}
	if st.Connectors[1].Status != "Preparing" {
		t.Fatalf("connector 2 not updated: %s", st.Connectors[1].Status)
	}
}

func TestApplyStatusDropsRepeat(t *testing.T) {
	st := twoConnectorStation("generic")
	ApplyStatus(st, update(1, "Preparing", "NoError"))
	result := ApplyStatus(st, update(1, "Preparing", "NoError"))
	if !result.Dropped {
		t.Fatalf("repeated status must be dropped, got %+v", result)
	}
	// same status with a new error code is a real change
	result = ApplyStatus(st, update(1, "Preparing", "ConnectorLockFailure"))
	if result.Dropped || len(result.Applied) != 1 {
		t.Fatalf("error code change must be applied, got %+v", result)
	}
}

func TestApplyStatusZeroBroadcast(t *testing.T) {
	st := twoConnectorStation("generic")
	result := ApplyStatus(st, update(0, "Unavailable", "NoError"))
	if len(result.Applied) != 2 {
		t.Fatalf("broadcast must hit both connectors, got %+v", result)
	}
	for i := range st.Connectors {
		if st.Connectors[i].Status != "Unavailable" {
			t.Fatalf("connector %d not updated", i+1)
		}
	}
}

func TestApplyStatusZeroIgnoredQuirk(t *testing.T) {
	st := twoConnectorStation("Ebee")
	result := ApplyStatus(st, update(0, "Unavailable", "NoError"))
	if !result.Ignored {
		t.Fatalf("zero-connector report must be ignored for this vendor, got %+v", result)
	}
	if st.Connectors[0].Status != "Available" {
		t.Fatal("ignored report must not touch connector state")
	}
}

func TestApplyStatusZeroMeansOneQuirk(t *testing.T) {
	st := twoConnectorStation("Schneider Electric")
	result := ApplyStatus(st, update(0, "Charging", "NoError"))
	if len(result.Applied) != 1 || result.Applied[0] != 1 {
		t.Fatalf("zero must be rewritten to connector 1, got %+v", result)
	}
	if st.Connectors[1].Status != "Available" {
		t.Fatal("connector 2 must be untouched")
	}
}

func TestApplyStatusGrowsConnectorList(t *testing.T) {
	st := &entity.ChargingStation{Id: "cb-1", TenantId: "t1", Vendor: "generic"}
	result := ApplyStatus(st, update(3, "Available", "NoError"))
	if len(st.Connectors) != 3 {
		t.Fatalf("expected list grown to 3, got %d", len(st.Connectors))
	}
	if len(result.Applied) != 1 || result.Applied[0] != 3 {
		t.Fatalf("expected connector 3 applied, got %+v", result)
	}
	if st.Connectors[0].Status != "Unknown" {
		t.Fatalf("filler connector must be Unknown, got %s", st.Connectors[0].Status)
	}
}

func TestApplyStatusDetectsPhantom(t *testing.T) {
	st := twoConnectorStation("generic")
	if err := BindTransaction(st, 1, 7); err != nil {
		t.Fatalf("bind: %v", err)
	}
	result := ApplyStatus(st, update(1, "Available", "NoError"))
	if len(result.Phantoms) != 1 {
		t.Fatalf("expected one phantom, got %+v", result)
	}
	if result.Phantoms[0].TransactionId != 7 || result.Phantoms[0].ConnectorId != 1 {
		t.Fatalf("wrong phantom: %+v", result.Phantoms[0])
	}
}

func TestApplyStatusDetectsPhantomOnFinishing(t *testing.T) {
	st := twoConnectorStation("generic")
	if err := BindTransaction(st, 2, 11); err != nil {
		t.Fatalf("bind: %v", err)
	}
	result := ApplyStatus(st, update(2, "Finishing", "NoError"))
	if len(result.Phantoms) != 1 || result.Phantoms[0].TransactionId != 11 {
		t.Fatalf("expected phantom on Finishing, got %+v", result)
	}
}

func TestBindTransactionExclusive(t *testing.T) {
	st := twoConnectorStation("generic")
	st.CannotChargeInParallel = true
	if err := BindTransaction(st, 1, 7); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if st.Connectors[0].Status != "Charging" || st.Connectors[0].ActiveTransactionId != 7 {
		t.Fatalf("connector 1 not bound: %+v", st.Connectors[0])
	}
	other := st.Connectors[1]
	if !other.Locked || other.Status != "Unavailable" {
		t.Fatalf("connector 2 must be locked out: %+v", other)
	}

	ReleaseTransaction(st, 1)
	if st.Connectors[0].ActiveTransactionId != 0 {
		t.Fatal("connector 1 must be unbound")
	}
	if st.Connectors[1].Locked || st.Connectors[1].Status != "Available" {
		t.Fatalf("connector 2 must be released: %+v", st.Connectors[1])
	}
}

func TestBindTransactionSingleSessionVendor(t *testing.T) {
	st := twoConnectorStation("Schneider Electric")
	if err := BindTransaction(st, 2, 9); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !st.Connectors[0].Locked {
		t.Fatal("vendor charges one session at a time, connector 1 must be locked")
	}
}

func TestBindTransactionParallelStation(t *testing.T) {
	st := twoConnectorStation("generic")
	if err := BindTransaction(st, 1, 7); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if st.Connectors[1].Locked || st.Connectors[1].Status != "Available" {
		t.Fatalf("parallel station must keep connector 2 free: %+v", st.Connectors[1])
	}
}

func TestBindTransactionUnknownConnector(t *testing.T) {
	st := &entity.ChargingStation{Id: "cb-1", Vendor: "generic"}
	if err := BindTransaction(st, 0, 7); err != entity.ErrConnectorNotFound {
		t.Fatalf("expected ErrConnectorNotFound, got %v", err)
	}
}
