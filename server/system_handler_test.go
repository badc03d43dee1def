package server

import (
	"sync"
	"testing"
	"time"

	"emobility/auth"
	"emobility/entity"
	"emobility/internal"
	"emobility/internal/config"
	"emobility/ocpp/core"
	"emobility/session"
	"emobility/types"
)

type nopLogger struct{}

func (nopLogger) FeatureEvent(feature, id, text string) {}
func (nopLogger) RawDataEvent(direction, data string)   {}
func (nopLogger) Debug(text string)                     {}
func (nopLogger) Warn(text string)                      {}
func (nopLogger) Error(text string, err error)          {}

type fakeSocket struct {
	id       string
	tenant   string
	uniqueId string
}

func (s *fakeSocket) ID() string                  { return s.id }
func (s *fakeSocket) TenantID() string            { return s.tenant }
func (s *fakeSocket) UniqueId() string            { return s.uniqueId }
func (s *fakeSocket) SetUniqueId(uniqueId string) { s.uniqueId = uniqueId }
func (s *fakeSocket) IsClosed() bool              { return false }

type memStore struct {
	mux          sync.Mutex
	stations     map[string]*entity.ChargingStation
	transactions map[int]*entity.Transaction
	tags         map[string]*entity.UserTag
	lastId       int
}

func newMemStore() *memStore {
	return &memStore{
		stations:     make(map[string]*entity.ChargingStation),
		transactions: make(map[int]*entity.Transaction),
		tags:         make(map[string]*entity.UserTag),
	}
}

func (m *memStore) WriteLogMessage(data internal.Data) error     { return nil }
func (m *memStore) ReadLog(tenantId string) (interface{}, error) { return nil, nil }

func (m *memStore) GetChargingStation(tenantId, id string) (*entity.ChargingStation, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.stations[tenantId+"/"+id], nil
}
func (m *memStore) GetChargingStations(tenantId string) ([]entity.ChargingStation, error) {
	return nil, nil
}
func (m *memStore) AddChargingStation(station *entity.ChargingStation) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.stations[station.TenantId+"/"+station.Id] = station
	return nil
}
func (m *memStore) UpdateChargingStation(station *entity.ChargingStation) error {
	return m.AddChargingStation(station)
}

func (m *memStore) GetTransaction(tenantId string, id int) (*entity.Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.transactions[id], nil
}
func (m *memStore) GetLastTransaction() (*entity.Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.transactions[m.lastId], nil
}
func (m *memStore) GetActiveTransaction(tenantId, chargeBoxId string, connectorId int) (*entity.Transaction, error) {
	return nil, nil
}
func (m *memStore) GetActiveTransactions(tenantId, chargeBoxId string) ([]entity.Transaction, error) {
	return nil, nil
}
func (m *memStore) AddTransaction(transaction *entity.Transaction) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.transactions[transaction.Id] = transaction
	if transaction.Id > m.lastId {
		m.lastId = transaction.Id
	}
	return nil
}
func (m *memStore) UpdateTransaction(transaction *entity.Transaction) error {
	return m.AddTransaction(transaction)
}

func (m *memStore) AddMeterValue(value *entity.MeterValue) error         { return nil }
func (m *memStore) AddConsumption(consumption *entity.Consumption) error { return nil }

func (m *memStore) GetUserTag(tenantId, idTag string) (*entity.UserTag, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.tags[tenantId+"/"+idTag], nil
}
func (m *memStore) AddUserTag(userTag *entity.UserTag) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.tags[userTag.TenantId+"/"+userTag.IdTag] = userTag
	return nil
}
func (m *memStore) UpdateUserTag(userTag *entity.UserTag) error {
	return m.AddUserTag(userTag)
}

func (m *memStore) GetSiteArea(tenantId, id string) (*entity.SiteArea, error) { return nil, nil }

func (m *memStore) GetSubscriptions() ([]entity.UserSubscription, error)           { return nil, nil }
func (m *memStore) AddSubscription(subscription *entity.UserSubscription) error    { return nil }
func (m *memStore) DeleteSubscription(subscription *entity.UserSubscription) error { return nil }

// handlerFixture wires a SystemHandler the way the central system does, with
// memory storage and no outward collaborators.
func handlerFixture(t *testing.T, store *memStore) *SystemHandler {
	t.Helper()
	logger := nopLogger{}

	sessions := session.NewService(logger)
	sessions.SetDatabase(store)

	tags := auth.NewTags(&config.Config{AcceptUnknownTag: true}, logger)
	tags.SetDatabase(store)

	handler := NewSystemHandler(time.UTC)
	handler.SetLogger(logger)
	handler.SetDatabase(store)
	handler.SetSessionService(sessions)
	handler.SetTagService(tags)
	handler.SetParameters(false, false, 300)
	if err := handler.OnStart(); err != nil {
		t.Fatalf("handler start: %v", err)
	}
	return handler
}

func seedStation(store *memStore, vendor string, connectors int) *entity.ChargingStation {
	st := &entity.ChargingStation{
		Id:            "cb-1",
		TenantId:      "t1",
		Vendor:        vendor,
		Model:         "Wallbox",
		IsEnabled:     true,
		AccessControl: true,
	}
	for i := 1; i <= connectors; i++ {
		st.Connectors = append(st.Connectors, entity.Connector{Id: i, Status: "Available"})
	}
	_ = store.AddChargingStation(st)
	return st
}

func seedTag(store *memStore, idTag string) {
	_ = store.AddUserTag(&entity.UserTag{IdTag: idTag, TenantId: "t1", IsEnabled: true})
}

func socket() *fakeSocket {
	return &fakeSocket{id: "cb-1", tenant: "t1"}
}

func TestBootNotificationAccepted(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	handler := handlerFixture(t, store)

	response, err := handler.OnBootNotification(socket(), &core.BootNotificationRequest{
		ChargePointVendor: "Vendor",
		ChargePointModel:  "Wallbox",
		FirmwareVersion:   "1.2.3",
	})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if response.Status != core.RegistrationStatusAccepted {
		t.Fatalf("expected Accepted, got %s", response.Status)
	}
	if response.Interval != 300 {
		t.Fatalf("expected configured interval, got %d", response.Interval)
	}

	st, _ := store.GetChargingStation("t1", "cb-1")
	if st.FirmwareVersion != "1.2.3" || st.LastHeartbeat.IsZero() {
		t.Fatalf("identity not recorded: %+v", st)
	}
}

func TestBootNotificationVendorMismatch(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	handler := handlerFixture(t, store)

	response, err := handler.OnBootNotification(socket(), &core.BootNotificationRequest{
		ChargePointVendor: "Impostor",
		ChargePointModel:  "Wallbox",
	})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if response.Status != core.RegistrationStatusRejected {
		t.Fatalf("identity mismatch must reject, got %s", response.Status)
	}
}

func TestBootNotificationDisabledStationPending(t *testing.T) {
	store := newMemStore()
	st := seedStation(store, "Vendor", 1)
	st.IsEnabled = false
	handler := handlerFixture(t, store)

	response, err := handler.OnBootNotification(socket(), &core.BootNotificationRequest{
		ChargePointVendor: "Vendor",
		ChargePointModel:  "Wallbox",
	})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if response.Status != core.RegistrationStatusPending {
		t.Fatalf("disabled station must be Pending, got %s", response.Status)
	}
}

func TestBootNotificationUnknownStationRejected(t *testing.T) {
	store := newMemStore()
	handler := handlerFixture(t, store)

	response, err := handler.OnBootNotification(socket(), &core.BootNotificationRequest{
		ChargePointVendor: "Vendor",
		ChargePointModel:  "Wallbox",
	})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if response.Status != core.RegistrationStatusRejected {
		t.Fatalf("unknown station must be rejected, got %s", response.Status)
	}
}

func TestHeartbeatUpdatesStation(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	handler := handlerFixture(t, store)

	response, err := handler.OnHeartbeat(socket(), &core.HeartbeatRequest{})
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if response.CurrentTime == nil {
		t.Fatal("heartbeat response must carry the current time")
	}
	st, _ := store.GetChargingStation("t1", "cb-1")
	if st.LastHeartbeat.IsZero() {
		t.Fatal("heartbeat not recorded")
	}
}

func TestAuthorize(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	seedTag(store, "TAG-1")
	_ = store.AddUserTag(&entity.UserTag{IdTag: "TAG-OFF", TenantId: "t1", IsEnabled: false})
	handler := handlerFixture(t, store)

	response, err := handler.OnAuthorize(socket(), &core.AuthorizeRequest{IdTag: "TAG-1"})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if response.IdTagInfo.Status != types.AuthorizationStatusAccepted {
		t.Fatalf("expected Accepted, got %s", response.IdTagInfo.Status)
	}

	response, err = handler.OnAuthorize(socket(), &core.AuthorizeRequest{IdTag: "TAG-OFF"})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if response.IdTagInfo.Status != types.AuthorizationStatusBlocked {
		t.Fatalf("disabled tag must be Blocked, got %s", response.IdTagInfo.Status)
	}
}

func TestTransactionCycle(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 2)
	seedTag(store, "TAG-1")
	handler := handlerFixture(t, store)
	ws := socket()

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	startResponse, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  1000,
		Timestamp:   types.NewDateTime(start),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if startResponse.IdTagInfo.Status != types.AuthorizationStatusAccepted {
		t.Fatalf("expected Accepted, got %s", startResponse.IdTagInfo.Status)
	}
	transactionId := startResponse.TransactionId
	if transactionId < 1 {
		t.Fatalf("expected a transaction id, got %d", transactionId)
	}

	st, _ := store.GetChargingStation("t1", "cb-1")
	if st.Connectors[0].ActiveTransactionId != transactionId || st.Connectors[0].Status != "Charging" {
		t.Fatalf("connector not bound: %+v", st.Connectors[0])
	}

	_, err = handler.OnMeterValues(ws, &core.MeterValuesRequest{
		ConnectorId:   1,
		TransactionId: &transactionId,
		MeterValue: []types.MeterValue{{
			Timestamp:    types.NewDateTime(start.Add(time.Hour)),
			SampledValue: []types.SampledValue{{Value: "1500"}},
		}},
	})
	if err != nil {
		t.Fatalf("meter values: %v", err)
	}
	transaction, _ := store.GetTransaction("t1", transactionId)
	if transaction.CurrentTotalConsumptionWh != 500 {
		t.Fatalf("expected 500 Wh, got %v", transaction.CurrentTotalConsumptionWh)
	}

	_, err = handler.OnStopTransaction(ws, &core.StopTransactionRequest{
		TransactionId: transactionId,
		IdTag:         "TAG-1",
		MeterStop:     2000,
		Timestamp:     types.NewDateTime(start.Add(2 * time.Hour)),
		Reason:        core.ReasonLocal,
	})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	transaction, _ = store.GetTransaction("t1", transactionId)
	if !transaction.Finished() {
		t.Fatal("transaction must be finished")
	}
	if transaction.Stop.TotalConsumptionWh != 1000 {
		t.Fatalf("expected 1000 Wh total, got %v", transaction.Stop.TotalConsumptionWh)
	}
	st, _ = store.GetChargingStation("t1", "cb-1")
	if st.Connectors[0].ActiveTransactionId != 0 {
		t.Fatal("connector must be released")
	}
	if st.Connectors[0].TotalConsumptionWh != 1000 {
		t.Fatalf("connector lifetime total not updated: %v", st.Connectors[0].TotalConsumptionWh)
	}
}

func TestStopTransactionForeignTagRefused(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	seedTag(store, "TAG-1")
	seedTag(store, "TAG-2")
	handler := handlerFixture(t, store)
	ws := socket()

	started, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	response, err := handler.OnStopTransaction(ws, &core.StopTransactionRequest{
		TransactionId: started.TransactionId,
		IdTag:         "TAG-2",
		MeterStop:     100,
		Timestamp:     types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if response.IdTagInfo == nil || response.IdTagInfo.Status != types.AuthorizationStatusInvalid {
		t.Fatalf("foreign tag without authority must be refused: %+v", response.IdTagInfo)
	}
	transaction, _ := store.GetTransaction("t1", started.TransactionId)
	if transaction.Finished() {
		t.Fatal("refused stop must leave the session active")
	}

	// the owner can still stop
	_, err = handler.OnStopTransaction(ws, &core.StopTransactionRequest{
		TransactionId: started.TransactionId,
		IdTag:         "TAG-1",
		MeterStop:     100,
		Timestamp:     types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	transaction, _ = store.GetTransaction("t1", started.TransactionId)
	if !transaction.Finished() {
		t.Fatal("owner stop must seal the session")
	}
}

func TestStopTransactionAdminTag(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	seedTag(store, "TAG-1")
	_ = store.AddUserTag(&entity.UserTag{IdTag: "TAG-ADMIN", TenantId: "t1", IsEnabled: true, Role: entity.RoleAdmin})
	handler := handlerFixture(t, store)
	ws := socket()

	started, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = handler.OnStopTransaction(ws, &core.StopTransactionRequest{
		TransactionId: started.TransactionId,
		IdTag:         "TAG-ADMIN",
		MeterStop:     100,
		Timestamp:     types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	transaction, _ := store.GetTransaction("t1", started.TransactionId)
	if !transaction.Finished() {
		t.Fatal("admin stop must seal the session")
	}
	if transaction.Stop.TagId != "TAG-ADMIN" {
		t.Fatalf("stop must be attributed to the admin badge, got %s", transaction.Stop.TagId)
	}
}

func TestStartTransactionConcurrentTx(t *testing.T) {
	store := newMemStore()
	st := seedStation(store, "Vendor", 2)
	st.CannotChargeInParallel = true
	seedTag(store, "TAG-1")
	seedTag(store, "TAG-2")
	handler := handlerFixture(t, store)
	ws := socket()

	first, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	second, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 2,
		IdTag:       "TAG-2",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if second.IdTagInfo.Status != types.AuthorizationStatusConcurrentTx {
		t.Fatalf("locked connector must answer ConcurrentTx, got %s", second.IdTagInfo.Status)
	}
	if second.TransactionId != first.TransactionId {
		t.Fatalf("refusal must name the blocking transaction, got %d", second.TransactionId)
	}
}

func TestStartTransactionClosesPhantom(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	seedTag(store, "TAG-1")
	handler := handlerFixture(t, store)
	ws := socket()

	first, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// the device rebooted and starts a fresh session on the same connector
	second, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if second.IdTagInfo.Status != types.AuthorizationStatusAccepted {
		t.Fatalf("expected Accepted, got %s", second.IdTagInfo.Status)
	}

	old, _ := store.GetTransaction("t1", first.TransactionId)
	if !old.Finished() {
		t.Fatal("abandoned session must be force closed")
	}
	st, _ := store.GetChargingStation("t1", "cb-1")
	if st.Connectors[0].ActiveTransactionId != second.TransactionId {
		t.Fatalf("connector must hold the new session: %+v", st.Connectors[0])
	}
}

func TestStatusNotificationClosesPhantom(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	seedTag(store, "TAG-1")
	handler := handlerFixture(t, store)
	ws := socket()

	started, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = handler.OnStatusNotification(ws, &core.StatusNotificationRequest{
		ConnectorId: 1,
		Status:      core.ChargePointStatusAvailable,
		ErrorCode:   core.NoError,
	})
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	transaction, _ := store.GetTransaction("t1", started.TransactionId)
	if !transaction.Finished() {
		t.Fatal("session must be force closed when its connector reports free")
	}
	st, _ := store.GetChargingStation("t1", "cb-1")
	if st.Connectors[0].ActiveTransactionId != 0 {
		t.Fatal("connector must be released")
	}
}

func TestStatusNotificationIgnoredByQuirk(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Ebee", 1)
	handler := handlerFixture(t, store)

	_, err := handler.OnStatusNotification(socket(), &core.StatusNotificationRequest{
		ConnectorId: 0,
		Status:      core.ChargePointStatusUnavailable,
		ErrorCode:   core.NoError,
	})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	st, _ := store.GetChargingStation("t1", "cb-1")
	if st.Connectors[0].Status != "Available" {
		t.Fatalf("zero-connector status must be ignored for this vendor: %s", st.Connectors[0].Status)
	}
}

func TestRemoteStopAuthority(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	seedTag(store, "TAG-1")
	handler := handlerFixture(t, store)
	ws := socket()

	started, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = handler.OnRemoteStopTransaction("t1", "cb-1", "999", "")
	if err != entity.ErrTransactionNotFound {
		t.Fatalf("unknown transaction must be refused, got %v", err)
	}

	seedTag(store, "TAG-OP")
	request, err := handler.OnRemoteStopTransaction("t1", "cb-1", "1", "TAG-OP")
	if err != nil {
		t.Fatalf("remote stop: %v", err)
	}
	if request.TransactionId != started.TransactionId {
		t.Fatalf("wrong transaction in request: %d", request.TransactionId)
	}

	_, err = handler.OnStopTransaction(ws, &core.StopTransactionRequest{
		TransactionId: started.TransactionId,
		MeterStop:     100,
		Timestamp:     types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	transaction, _ := store.GetTransaction("t1", started.TransactionId)
	if transaction.Stop == nil || transaction.Stop.Reason != string(core.ReasonRemote) {
		t.Fatalf("stop inside the window must be attributed to the remote command: %+v", transaction.Stop)
	}
	if transaction.Stop.TagId != "TAG-OP" {
		t.Fatalf("stop must carry the requesting badge, got %q", transaction.Stop.TagId)
	}
}

func TestRemoteStopWindowExpires(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	seedTag(store, "TAG-1")
	handler := handlerFixture(t, store)
	ws := socket()

	started, err := handler.OnStartTransaction(ws, &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TAG-1",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err = handler.OnRemoteStopTransaction("t1", "cb-1", "1", ""); err != nil {
		t.Fatalf("remote stop: %v", err)
	}

	saved := now
	now = func() time.Time { return saved().Add(2 * time.Minute) }
	defer func() { now = saved }()

	_, err = handler.OnStopTransaction(ws, &core.StopTransactionRequest{
		TransactionId: started.TransactionId,
		MeterStop:     100,
		Timestamp:     types.NewDateTime(saved().Add(2 * time.Minute)),
		Reason:        core.ReasonLocal,
	})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	transaction, _ := store.GetTransaction("t1", started.TransactionId)
	if transaction.Stop == nil || transaction.Stop.Reason != string(core.ReasonLocal) {
		t.Fatalf("expired window must keep the reported reason: %+v", transaction.Stop)
	}
}

func TestMeterValuesWithoutTransaction(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	handler := handlerFixture(t, store)

	_, err := handler.OnMeterValues(socket(), &core.MeterValuesRequest{
		ConnectorId: 0,
		MeterValue: []types.MeterValue{{
			Timestamp:    types.NewDateTime(time.Now()),
			SampledValue: []types.SampledValue{{Value: "100"}},
		}},
	})
	if err != nil {
		t.Fatalf("meter values: %v", err)
	}
}

func TestDataTransfer(t *testing.T) {
	store := newMemStore()
	seedStation(store, "Vendor", 1)
	handler := handlerFixture(t, store)

	response, err := handler.OnDataTransfer(socket(), &core.DataTransferRequest{VendorId: "Vendor"})
	if err != nil {
		t.Fatalf("data transfer: %v", err)
	}
	if response.Status != core.DataTransferStatusAccepted {
		t.Fatalf("expected Accepted, got %s", response.Status)
	}
}
