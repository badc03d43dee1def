package internal

import "emobility/entity"

// TagService is the authorization collaborator. ResolveTag looks up the
// badge presented for an action; a nil result with nil error means the tag
// is unknown but the action may proceed anonymously.
type TagService interface {
	ResolveTag(tenantId, chargeBoxId, idTag, action string) (*entity.UserTag, error)
	// CanStopSession decides whether the requesting tag may stop a session
	// started by another tag on the given station.
	CanStopSession(requesting *entity.UserTag, transaction *entity.Transaction, station *entity.ChargingStation) bool
}
