package entity

import "strings"

// VendorQuirks collects the known per-vendor protocol deviations. Keeping
// them in one table keeps the workaround list auditable; the normalizer and
// the connector state manager consult it instead of comparing vendor strings
// inline.
type VendorQuirks struct {
	// ZeroConnectorMeansOne: the device reports connectorId 0 on meter and
	// status messages while meaning its only connector.
	ZeroConnectorMeansOne bool
	// IgnoreZeroStatus: the device emits StatusNotification with
	// connectorId 0 spuriously; it must not be treated as a broadcast.
	IgnoreZeroStatus bool
	// SingleSessionOnly: the hardware cannot charge on two connectors at
	// once regardless of the station configuration flag.
	SingleSessionOnly bool
}

var vendorQuirks = map[string]VendorQuirks{
	"ebee":               {IgnoreZeroStatus: true},
	"bender gmbh co. kg": {IgnoreZeroStatus: true},
	"schneider electric": {ZeroConnectorMeansOne: true, SingleSessionOnly: true},
	"keba ag":            {ZeroConnectorMeansOne: true},
}

// QuirksFor returns the quirk flags for a station vendor. Matching is by
// normalized prefix because firmwares report the same vendor with varying
// casing and suffixes.
func QuirksFor(vendor string) VendorQuirks {
	v := strings.ToLower(strings.TrimSpace(vendor))
	if q, ok := vendorQuirks[v]; ok {
		return q
	}
	for name, q := range vendorQuirks {
		if strings.HasPrefix(v, name) {
			return q
		}
	}
	return VendorQuirks{}
}
