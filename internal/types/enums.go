package types

// ObligationType identifies the kind of municipal renewal deadline.
type ObligationType string

const (
	ObligationCitySticker    ObligationType = "city_sticker"
	ObligationLicensePlate   ObligationType = "license_plate"
	ObligationEmissions      ObligationType = "emissions"
	ObligationStreetCleaning ObligationType = "street_cleaning"
	ObligationPermit         ObligationType = "permit"
)

// AllObligationTypes lists every supported obligation type. Used by the
// obligation source query and by composer coverage tests.
var AllObligationTypes = []ObligationType{
	ObligationCitySticker,
	ObligationLicensePlate,
	ObligationEmissions,
	ObligationStreetCleaning,
	ObligationPermit,
}

// Label returns the human-readable name of the obligation type, suitable for
// message bodies ("your city sticker is due ...").
func (t ObligationType) Label() string {
	switch t {
	case ObligationCitySticker:
		return "city sticker"
	case ObligationLicensePlate:
		return "license plate renewal"
	case ObligationEmissions:
		return "emissions test"
	case ObligationStreetCleaning:
		return "street cleaning"
	case ObligationPermit:
		return "parking permit"
	default:
		return string(t)
	}
}

// Valid reports whether the obligation type is one of the supported values.
func (t ObligationType) Valid() bool {
	switch t {
	case ObligationCitySticker, ObligationLicensePlate, ObligationEmissions,
		ObligationStreetCleaning, ObligationPermit:
		return true
	}
	return false
}

// ChannelType identifies a notification delivery channel.
type ChannelType string

const (
	ChannelEmail ChannelType = "email"
	ChannelSMS   ChannelType = "sms"
	ChannelVoice ChannelType = "voice"
)

// AllChannels lists every supported delivery channel in dispatch order.
var AllChannels = []ChannelType{ChannelEmail, ChannelSMS, ChannelVoice}

// UrgencyTier is the coarse severity bucket derived from days-until-due.
// It drives message tone and escalation eligibility.
type UrgencyTier string

const (
	TierReminder  UrgencyTier = "reminder"  // more than 30 days out
	TierImportant UrgencyTier = "important" // 8-30 days out
	TierUrgent    UrgencyTier = "urgent"    // 2-7 days out
	TierCritical  UrgencyTier = "critical"  // due tomorrow, today, or overdue
)

// Severity returns a numeric rank for the tier, higher meaning more severe.
// Used to assert monotonicity and to compare tiers without string ordering.
func (u UrgencyTier) Severity() int {
	switch u {
	case TierReminder:
		return 0
	case TierImportant:
		return 1
	case TierUrgent:
		return 2
	case TierCritical:
		return 3
	default:
		return -1
	}
}

// City identifies the municipality whose deadline rules apply to an obligation.
type City string

const (
	CityChicago      City = "chicago"
	CitySanFrancisco City = "san_francisco"
)

// AllCities lists every supported city. The dispatcher runs one scan pass per
// city so that "today" follows each city's own calendar.
var AllCities = []City{CityChicago, CitySanFrancisco}

// TimezoneName returns the IANA timezone of the city. Unknown cities fall
// back to America/Chicago, the platform's home market.
func (c City) TimezoneName() string {
	switch c {
	case CitySanFrancisco:
		return "America/Los_Angeles"
	default:
		return "America/Chicago"
	}
}

// ClaimOutcome is the result of an idempotency ledger claim.
type ClaimOutcome string

const (
	// ClaimCommitted means this caller won the claim and must perform the send.
	ClaimCommitted ClaimOutcome = "committed"

	// ClaimAlreadyRecorded means the key was previously claimed. Not an error;
	// the caller skips the send.
	ClaimAlreadyRecorded ClaimOutcome = "already_recorded"
)
