package models

// ContentType is the kind of asset delivered by a content step.
type ContentType string

const (
	ContentPDF   ContentType = "pdf"
	ContentVideo ContentType = "video"
)

// Content references an asset sent to the lead.
type Content struct {
	Type  ContentType `json:"type"`
	Title string      `json:"title"`
	URL   string      `json:"url"`
}

// CTAType is the kind of call-to-action attached to a response.
type CTAType string

const (
	CTACall    CTAType = "call"
	CTALink    CTAType = "link"
	CTABuy     CTAType = "buy"
	CTABooking CTAType = "booking"
)

// CTA is a call-to-action rendered as a button by the chat widget.
type CTA struct {
	Type CTAType `json:"type"`
	Text string  `json:"text"`
	URL  string  `json:"url,omitempty"`
}

// Product is a catalog entry that can be recommended.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	URL      string  `json:"url"`
}

// Recommendation is a product ranked for the lead with a match score in [0,1].
type Recommendation struct {
	Product
	MatchScore float64 `json:"matchScore"`
}

// Appointment is a confirmed clinic booking.
type Appointment struct {
	Service      string `json:"service"`
	Doctor       string `json:"doctor"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // HH:MM
	Status       string `json:"status"`
	CalendarLink string `json:"calendarLink"`
}

// IndustryResponse is what an industry flow returns for one step.
type IndustryResponse struct {
	Message         string           `json:"message"`
	NextStep        string           `json:"nextStep"`
	Options         []string         `json:"options,omitempty"`
	Segment         string           `json:"segment,omitempty"`
	Content         *Content         `json:"content,omitempty"`
	CTA             *CTA             `json:"cta,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Appointment     *Appointment     `json:"appointment,omitempty"`
	Context         FlowContext      `json:"context"`
}

// FlowResponse is the combined result of one orchestration turn.
type FlowResponse struct {
	Message         string            `json:"message"`
	NextStep        string            `json:"nextStep"`
	Options         []string          `json:"options,omitempty"`
	Segment         string            `json:"segment,omitempty"`
	Content         *Content          `json:"content,omitempty"`
	CTA             *CTA              `json:"cta,omitempty"`
	Recommendations []Recommendation  `json:"recommendations,omitempty"`
	Appointment     *Appointment      `json:"appointment,omitempty"`
	Context         FlowContext       `json:"context"`
	Automation      *AutomationBundle `json:"automation,omitempty"`
}
