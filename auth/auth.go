package auth

import (
	"fmt"
	"time"

	"emobility/entity"
	"emobility/internal"
	"emobility/internal/config"
)

// Tags resolves badge credentials against storage and decides stop
// authority. With acceptUnknown set, a badge never seen before is
// registered on first use, disabled, so an operator can enable it later
// without asking the driver to present it again.
type Tags struct {
	database      internal.Database
	logger        internal.LogHandler
	acceptUnknown bool
}

func NewTags(conf *config.Config, logger internal.LogHandler) *Tags {
	return &Tags{
		logger:        logger,
		acceptUnknown: conf.AcceptUnknownTag,
	}
}

func (t *Tags) SetDatabase(database internal.Database) {
	t.database = database
}

func (t *Tags) ResolveTag(tenantId, chargeBoxId, idTag, action string) (*entity.UserTag, error) {
	if t.database == nil {
		return nil, nil
	}
	_, id := entity.SplitIdTag(idTag)
	userTag, err := t.database.GetUserTag(tenantId, id)
	if err != nil {
		return nil, fmt.Errorf("reading tag %s: %w", id, err)
	}

	if userTag == nil {
		userTag = entity.NewUserTag(tenantId, idTag)
		userTag.Note = fmt.Sprintf("first seen at %s on %s", chargeBoxId, action)
		userTag.IsEnabled = t.acceptUnknown
		if err = t.database.AddUserTag(userTag); err != nil {
			t.logger.Error("registering new tag", err)
		}
		t.logger.FeatureEvent(action, chargeBoxId, fmt.Sprintf("registered new tag %s; enabled=%v", id, userTag.IsEnabled))
	}

	userTag.LastSeen = time.Now().UTC()
	if err = t.database.UpdateUserTag(userTag); err != nil {
		t.logger.Error("updating tag last seen", err)
	}

	if !userTag.IsEnabled {
		return userTag, entity.ErrNotAuthorized
	}
	return userTag, nil
}

// CanStopSession implements stop authority for a tag that is not the one
// the session was started with. In order of precedence: an administrator
// badge may always stop; a station without access control lets anyone stop;
// a site area configured for it lets any registered user stop; finally the
// same user may stop a session started with another of their own badges.
func (t *Tags) CanStopSession(requesting *entity.UserTag, transaction *entity.Transaction, station *entity.ChargingStation) bool {
	if requesting == nil {
		return false
	}
	if requesting.IdTag == transaction.TagId {
		return true
	}
	if requesting.IsAdmin() {
		return true
	}
	if station != nil && !station.AccessControl {
		return true
	}
	if station != nil && station.SiteAreaId != "" && t.database != nil {
		siteArea, err := t.database.GetSiteArea(station.TenantId, station.SiteAreaId)
		if err != nil {
			t.logger.Error("reading site area", err)
		} else if siteArea != nil && siteArea.AllowAnyUserStop {
			return true
		}
	}
	if requesting.UserId != "" && requesting.UserId == transaction.UserId {
		return true
	}
	return false
}
