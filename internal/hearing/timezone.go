package hearing

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DefaultTimezone = "Asia/Kolkata"
	DefaultClock    = "10:00"
	DefaultDuration = 60
)

// fixedOffsets are minutes east of UTC. DST is deliberately ignored.
var fixedOffsets = map[string]int{
	"Asia/Kolkata":     330,
	"Asia/Calcutta":    330,
	"UTC":              0,
	"America/New_York": -300,
	"Europe/London":    0,
}

// ZoneResolver converts between a calendar date plus wall-clock time in a named zone
// and an absolute instant.
type ZoneResolver interface {
	ToUTC(date time.Time, clock string, zone string) (time.Time, error)
	ToLocal(instant time.Time, zone string) (date time.Time, clock string)
}

// FixedOffsetResolver uses a small static offset table. Unknown zones are treated as UTC.
type FixedOffsetResolver struct{}

func (FixedOffsetResolver) ToUTC(date time.Time, clock string, zone string) (time.Time, error) {
	h, m, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	d := date.UTC()
	wall := time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, time.UTC)
	return wall.Add(-fixedOffset(zone)), nil
}

func (FixedOffsetResolver) ToLocal(instant time.Time, zone string) (time.Time, string) {
	local := instant.UTC().Add(fixedOffset(zone))
	return calendarDate(local), local.Format("15:04")
}

func fixedOffset(zone string) time.Duration {
	return time.Duration(fixedOffsets[zone]) * time.Minute
}

// IANAResolver uses the embedded tz database and honours daylight saving.
// Zones it cannot load fall back to the fixed table.
type IANAResolver struct{}

func (IANAResolver) ToUTC(date time.Time, clock string, zone string) (time.Time, error) {
	loc, ok := loadZone(zone)
	if !ok {
		return FixedOffsetResolver{}.ToUTC(date, clock, zone)
	}
	h, m, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	d := date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc).UTC(), nil
}

func (IANAResolver) ToLocal(instant time.Time, zone string) (time.Time, string) {
	loc, ok := loadZone(zone)
	if !ok {
		return FixedOffsetResolver{}.ToLocal(instant, zone)
	}
	local := instant.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), local.Format("15:04")
}

func loadZone(zone string) (*time.Location, bool) {
	// "" and "Local" load without error but depend on the host.
	if zone == "" || zone == "Local" {
		return nil, false
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// NewZoneResolver returns the resolver for a SCHEDULER_TIMEZONE_MODE value.
func NewZoneResolver(mode string) ZoneResolver {
	if mode == "iana" {
		return IANAResolver{}
	}
	return FixedOffsetResolver{}
}

// ComputeHearingTimes turns a legacy date and wall-clock time into an absolute interval.
// Blank clock and zone take their defaults and a non-positive duration means one hour.
func ComputeHearingTimes(resolver ZoneResolver, date time.Time, clock, zone string, duration int) (time.Time, time.Time, error) {
	if clock == "" {
		clock = DefaultClock
	}
	if zone == "" {
		zone = DefaultTimezone
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	start, err := resolver.ToUTC(date, clock, zone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(time.Duration(duration) * time.Minute), nil
}

// EffectiveTimes returns the hearing's absolute interval, deriving it from the legacy
// fields when the stored one is incomplete. ok is false when neither is usable.
func EffectiveTimes(resolver ZoneResolver, h *Hearing) (start, end time.Time, ok bool) {
	if h.StartAt != nil && h.EndAt != nil {
		return *h.StartAt, *h.EndAt, true
	}
	if h.HearingDate == nil || h.HearingTime == "" {
		return time.Time{}, time.Time{}, false
	}
	start, end, err := ComputeHearingTimes(resolver, *h.HearingDate, h.HearingTime, h.Timezone, h.Duration)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseHearingDate accepts a plain date or a timestamp and returns the UTC calendar date.
func ParseHearingDate(s string) (time.Time, error) {
	t, err := parseInstant(s)
	if err != nil {
		return time.Time{}, err
	}
	return calendarDate(t), nil
}

func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func calendarDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseClock reads "HH:MM" or "HH:MM:SS", two digits per field. Seconds are
// checked but not used.
func parseClock(clock string) (int, int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("invalid clock %q", clock)
	}
	h, ok := clockField(parts[0], 23)
	if !ok {
		return 0, 0, fmt.Errorf("invalid hour in %q", clock)
	}
	m, ok := clockField(parts[1], 59)
	if !ok {
		return 0, 0, fmt.Errorf("invalid minute in %q", clock)
	}
	if len(parts) == 3 {
		if _, ok := clockField(parts[2], 59); !ok {
			return 0, 0, fmt.Errorf("invalid second in %q", clock)
		}
	}
	return h, m, nil
}

func clockField(s string, maxValue int) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	v := int(s[0]-'0')*10 + int(s[1]-'0')
	return v, v <= maxValue
}

// ValidClock reports whether s is a usable wall-clock time.
func ValidClock(s string) bool {
	_, _, err := parseClock(s)
	return err == nil
}
