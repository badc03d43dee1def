package entity

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserTag is one badge credential. A tag may be registered without a user
// behind it; sessions started with such a tag are anonymous but recorded.
type UserTag struct {
	IdTag          string    `json:"id_tag" bson:"id_tag"`
	TenantId       string    `json:"tenant_id" bson:"tenant_id"`
	UserId         string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Username       string    `json:"username,omitempty" bson:"username,omitempty"`
	Role           string    `json:"role,omitempty" bson:"role,omitempty"`
	Source         string    `json:"source,omitempty" bson:"source,omitempty"`
	IsEnabled      bool      `json:"is_enabled" bson:"is_enabled"`
	Note           string    `json:"note,omitempty" bson:"note,omitempty"`
	DateRegistered time.Time `json:"date_registered" bson:"date_registered"`
	LastSeen       time.Time `json:"last_seen" bson:"last_seen"`
}

func NewUserTag(tenantId, idTag string) *UserTag {
	// charge point can add a prefix to the id tag, separated by a colon
	source, id := SplitIdTag(idTag)
	return &UserTag{
		IdTag:          id,
		TenantId:       tenantId,
		Source:         source,
		IsEnabled:      false,
		DateRegistered: time.Now().UTC(),
	}
}

func (t *UserTag) IsAdmin() bool {
	return t.Role == RoleAdmin
}

func SplitIdTag(idTag string) (string, string) {
	if strings.Contains(idTag, ":") {
		s := strings.Split(idTag, ":")
		return s[0], s[1]
	}
	return "", idTag
}
