package entity

// SiteArea groups stations under one grid connection. Stations reference it
// by id only; the record is looked up through storage when a policy decision
// needs it.
type SiteArea struct {
	Id               string `json:"site_area_id" bson:"site_area_id"`
	TenantId         string `json:"tenant_id" bson:"tenant_id"`
	Name             string `json:"name" bson:"name"`
	AllowAnyUserStop bool   `json:"allow_any_user_stop" bson:"allow_any_user_stop"`
	MaximumPowerW    int    `json:"maximum_power_w,omitempty" bson:"maximum_power_w,omitempty"`
}
