package domain

import "time"

// DefaultTimezone is the zone whose calendar day a snapshot belongs to.
const DefaultTimezone = "Asia/Tokyo"

// Tokyo is the default snapshot timezone.
var Tokyo = mustLoadDefault()

// LoadLocation resolves a timezone name. Hosts without zoneinfo still get
// Tokyo as a fixed +09:00 zone, since Japan observes no DST.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil && name == DefaultTimezone {
		return time.FixedZone("JST", 9*60*60), nil
	}
	return loc, err
}

func mustLoadDefault() *time.Location {
	loc, _ := LoadLocation(DefaultTimezone)
	return loc
}
