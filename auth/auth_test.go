package auth

import (
	"testing"

	"emobility/entity"
	"emobility/internal"
	"emobility/internal/config"
)

type nopLogger struct{}

func (nopLogger) FeatureEvent(feature, id, text string) {}
func (nopLogger) RawDataEvent(direction, data string)   {}
func (nopLogger) Debug(text string)                     {}
func (nopLogger) Warn(text string)                      {}
func (nopLogger) Error(text string, err error)          {}

// tagStore implements the storage interface with only the tag and site area
// collections backed by memory.
type tagStore struct {
	tags      map[string]*entity.UserTag
	siteAreas map[string]*entity.SiteArea
	added     []string
}

func newTagStore() *tagStore {
	return &tagStore{
		tags:      make(map[string]*entity.UserTag),
		siteAreas: make(map[string]*entity.SiteArea),
	}
}

func (s *tagStore) WriteLogMessage(data internal.Data) error     { return nil }
func (s *tagStore) ReadLog(tenantId string) (interface{}, error) { return nil, nil }

func (s *tagStore) GetChargingStation(tenantId, id string) (*entity.ChargingStation, error) {
	return nil, nil
}
func (s *tagStore) GetChargingStations(tenantId string) ([]entity.ChargingStation, error) {
	return nil, nil
}
func (s *tagStore) AddChargingStation(station *entity.ChargingStation) error    { return nil }
func (s *tagStore) UpdateChargingStation(station *entity.ChargingStation) error { return nil }

func (s *tagStore) GetTransaction(tenantId string, id int) (*entity.Transaction, error) {
	return nil, nil
}
func (s *tagStore) GetLastTransaction() (*entity.Transaction, error) { return nil, nil }
func (s *tagStore) GetActiveTransaction(tenantId, chargeBoxId string, connectorId int) (*entity.Transaction, error) {
	return nil, nil
}
func (s *tagStore) GetActiveTransactions(tenantId, chargeBoxId string) ([]entity.Transaction, error) {
	return nil, nil
}
func (s *tagStore) AddTransaction(transaction *entity.Transaction) error    { return nil }
func (s *tagStore) UpdateTransaction(transaction *entity.Transaction) error { return nil }

func (s *tagStore) AddMeterValue(value *entity.MeterValue) error           { return nil }
func (s *tagStore) AddConsumption(consumption *entity.Consumption) error   { return nil }

func (s *tagStore) GetUserTag(tenantId, idTag string) (*entity.UserTag, error) {
	return s.tags[tenantId+"/"+idTag], nil
}
func (s *tagStore) AddUserTag(userTag *entity.UserTag) error {
	s.tags[userTag.TenantId+"/"+userTag.IdTag] = userTag
	s.added = append(s.added, userTag.IdTag)
	return nil
}
func (s *tagStore) UpdateUserTag(userTag *entity.UserTag) error {
	s.tags[userTag.TenantId+"/"+userTag.IdTag] = userTag
	return nil
}

func (s *tagStore) GetSiteArea(tenantId, id string) (*entity.SiteArea, error) {
	return s.siteAreas[tenantId+"/"+id], nil
}

func (s *tagStore) GetSubscriptions() ([]entity.UserSubscription, error)           { return nil, nil }
func (s *tagStore) AddSubscription(subscription *entity.UserSubscription) error    { return nil }
func (s *tagStore) DeleteSubscription(subscription *entity.UserSubscription) error { return nil }

func newTags(store *tagStore, acceptUnknown bool) *Tags {
	tags := NewTags(&config.Config{AcceptUnknownTag: acceptUnknown}, nopLogger{})
	tags.SetDatabase(store)
	return tags
}

func TestResolveTagKnownEnabled(t *testing.T) {
	store := newTagStore()
	store.tags["t1/TAG-1"] = &entity.UserTag{IdTag: "TAG-1", TenantId: "t1", IsEnabled: true}

	tags := newTags(store, false)
	userTag, err := tags.ResolveTag("t1", "cb-1", "TAG-1", "Authorize")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userTag == nil || userTag.IdTag != "TAG-1" {
		t.Fatalf("wrong tag: %+v", userTag)
	}
	if userTag.LastSeen.IsZero() {
		t.Fatal("last seen must be stamped")
	}
}

func TestResolveTagDisabled(t *testing.T) {
	store := newTagStore()
	store.tags["t1/TAG-1"] = &entity.UserTag{IdTag: "TAG-1", TenantId: "t1", IsEnabled: false}

	tags := newTags(store, false)
	userTag, err := tags.ResolveTag("t1", "cb-1", "TAG-1", "Authorize")
	if err != entity.ErrNotAuthorized {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if userTag == nil {
		t.Fatal("disabled tag must still be returned for the audit trail")
	}
}

func TestResolveTagRegistersUnknown(t *testing.T) {
	store := newTagStore()

	tags := newTags(store, true)
	userTag, err := tags.ResolveTag("t1", "cb-1", "NEW-TAG", "StartTransaction")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userTag == nil || !userTag.IsEnabled {
		t.Fatalf("unknown tag must be registered enabled when configured so: %+v", userTag)
	}
	if len(store.added) != 1 {
		t.Fatalf("tag must be persisted once, got %v", store.added)
	}
}

func TestResolveTagUnknownRejected(t *testing.T) {
	store := newTagStore()

	tags := newTags(store, false)
	userTag, err := tags.ResolveTag("t1", "cb-1", "NEW-TAG", "StartTransaction")
	if err != entity.ErrNotAuthorized {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if userTag == nil || userTag.IsEnabled {
		t.Fatalf("tag must be registered disabled: %+v", userTag)
	}
}

func TestResolveTagStripsSourcePrefix(t *testing.T) {
	store := newTagStore()
	store.tags["t1/TAG-9"] = &entity.UserTag{IdTag: "TAG-9", TenantId: "t1", IsEnabled: true}

	tags := newTags(store, false)
	userTag, err := tags.ResolveTag("t1", "cb-1", "VID:TAG-9", "Authorize")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userTag.IdTag != "TAG-9" {
		t.Fatalf("prefixed tag must resolve to the bare id, got %s", userTag.IdTag)
	}
}

func TestCanStopSessionPrecedence(t *testing.T) {
	store := newTagStore()
	store.siteAreas["t1/area-1"] = &entity.SiteArea{Id: "area-1", TenantId: "t1", AllowAnyUserStop: true}
	tags := newTags(store, false)

	transaction := &entity.Transaction{TagId: "OWNER", UserId: "user-1"}
	guarded := &entity.ChargingStation{TenantId: "t1", AccessControl: true}
	open := &entity.ChargingStation{TenantId: "t1", AccessControl: false}
	inArea := &entity.ChargingStation{TenantId: "t1", AccessControl: true, SiteAreaId: "area-1"}

	cases := []struct {
		name       string
		requesting *entity.UserTag
		station    *entity.ChargingStation
		want       bool
	}{
		{"nil tag", nil, guarded, false},
		{"same tag", &entity.UserTag{IdTag: "OWNER"}, guarded, true},
		{"admin", &entity.UserTag{IdTag: "OTHER", Role: entity.RoleAdmin}, guarded, true},
		{"open station", &entity.UserTag{IdTag: "OTHER"}, open, true},
		{"site area allows", &entity.UserTag{IdTag: "OTHER"}, inArea, true},
		{"same user other badge", &entity.UserTag{IdTag: "OTHER", UserId: "user-1"}, guarded, true},
		{"stranger", &entity.UserTag{IdTag: "OTHER", UserId: "user-2"}, guarded, false},
	}
	for _, c := range cases {
		if got := tags.CanStopSession(c.requesting, transaction, c.station); got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
