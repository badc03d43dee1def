package entity

import "time"

// ChargingStation is one physical charge point. The connector list is dense
// and 1-indexed: Connectors[i].Id == i+1. Site area and user references are
// plain ids resolved through storage on demand.
type ChargingStation struct {
	Id                     string      `json:"charge_box_id" bson:"charge_box_id"`
	TenantId               string      `json:"tenant_id" bson:"tenant_id"`
	Vendor                 string      `json:"vendor" bson:"vendor"`
	Model                  string      `json:"model" bson:"model"`
	SerialNumber           string      `json:"serial_number" bson:"serial_number"`
	FirmwareVersion        string      `json:"firmware_version" bson:"firmware_version"`
	ProtocolVersion        string      `json:"protocol_version" bson:"protocol_version"`
	Transport              string      `json:"transport" bson:"transport"`
	LastHeartbeat          time.Time   `json:"last_heartbeat" bson:"last_heartbeat"`
	CannotChargeInParallel bool        `json:"cannot_charge_in_parallel" bson:"cannot_charge_in_parallel"`
	AccessControl          bool        `json:"access_control" bson:"access_control"`
	SiteAreaId             string      `json:"site_area_id,omitempty" bson:"site_area_id,omitempty"`
	IsEnabled              bool        `json:"is_enabled" bson:"is_enabled"`
	IsDeleted              bool        `json:"is_deleted" bson:"is_deleted"`
	Connectors             []Connector `json:"connectors" bson:"connectors"`
}

// Connector returns the connector with the given id, growing the dense list
// when a station reports a connector we have not seen yet.
func (s *ChargingStation) Connector(id int) *Connector {
	if id < 1 {
		return nil
	}
	for len(s.Connectors) < id {
		s.Connectors = append(s.Connectors, Connector{
			Id:     len(s.Connectors) + 1,
			Status: "Unknown",
		})
	}
	return &s.Connectors[id-1]
}

// FindConnector is like Connector but never grows the list.
func (s *ChargingStation) FindConnector(id int) *Connector {
	if id < 1 || id > len(s.Connectors) {
		return nil
	}
	return &s.Connectors[id-1]
}

// IsOffline reports station liveness from the stored heartbeat: a station is
// considered gone after five missed heartbeat intervals.
func (s *ChargingStation) IsOffline(heartbeatInterval time.Duration, now time.Time) bool {
	if s.LastHeartbeat.IsZero() {
		return true
	}
	return now.Sub(s.LastHeartbeat) > 5*heartbeatInterval
}
