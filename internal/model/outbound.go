package model

// OutboundKind discriminates the two marketing API payload shapes.
type OutboundKind string

const (
	KindEvent   OutboundKind = "event"
	KindProfile OutboundKind = "profile"
)

// Metric names the marketing metric an event contributes to.
type Metric struct {
	Name string `json:"name"`
}

// EventAttributes is the body of a metric event sent to the marketing
// platform. UniqueID is reused from the originating domain object so the
// same domain event maps to the same outbound event across redeliveries.
type EventAttributes struct {
	Profile    map[string]any `json:"profile"`
	Metric     Metric         `json:"metric"`
	Value      float64        `json:"value"`
	Properties map[string]any `json:"properties,omitempty"`
	UniqueID   string         `json:"unique_id"`
	Time       string         `json:"time,omitempty"`
}

// ProfileLocation is the postal address block of a marketing profile.
type ProfileLocation struct {
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	Zip      string `json:"zip,omitempty"`
}

// ProfileAttributes is the body of a profile upsert.
type ProfileAttributes struct {
	ExternalID   string           `json:"external_id,omitempty"`
	Email        string           `json:"email,omitempty"`
	FirstName    string           `json:"first_name,omitempty"`
	LastName     string           `json:"last_name,omitempty"`
	Title        string           `json:"title,omitempty"`
	Organization string           `json:"organization,omitempty"`
	PhoneNumber  string           `json:"phone_number,omitempty"`
	Location     *ProfileLocation `json:"location,omitempty"`
}

// OutboundRequest is one payload destined for the marketing platform.
// Exactly one of Event or Profile is set, matching Kind.
type OutboundRequest struct {
	Kind    OutboundKind
	Event   *EventAttributes
	Profile *ProfileAttributes
}

// UniqueID returns the idempotency id of the request for logging and
// dead-letter bookkeeping.
func (r *OutboundRequest) UniqueID() string {
	switch {
	case r == nil:
		return ""
	case r.Event != nil:
		return r.Event.UniqueID
	case r.Profile != nil:
		return r.Profile.ExternalID
	default:
		return ""
	}
}
