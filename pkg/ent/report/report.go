package report

// NA is the value used for required fields that are blank in the source
// row. The target API rejects documents with empty required strings.
const NA = "N/A"

// Report is a Bad Date report in the shape accepted by the reporting API
// at `/api/reports/new`.
type Report struct {
	// City where the incident took place.
	City string `json:"city"`

	// LocationType is the kind of place or area of the incident
	// (hotel, car, outcall etc.).
	LocationType string `json:"locationType"`

	// Geolocation is the point of the city. It is nil when the city could
	// not be resolved, the API then stores the report without a point.
	Geolocation *Point `json:"geolocation,omitempty"`

	// Gender of the person who submitted the report.
	Gender string `json:"gender"`

	// Date in YYYY-MM-DD format. It comes from the submission timestamp,
	// or from the incident date if the timestamp cannot be parsed. Reports
	// are searched by this date.
	Date string `json:"date"`

	// IncidentDate keeps the incident date exactly as it was typed
	// into the form.
	IncidentDate string `json:"incidentDate,omitempty"`

	// AssaultType lists incident categories selected in the form.
	AssaultType []string `json:"assaultType,omitempty"`

	// AssaultDescription is a free text assembled from several labeled
	// columns of the form.
	AssaultDescription string `json:"assaultDescription"`

	// Perpetrator describes the bad date.
	Perpetrator Perpetrator `json:"perpetrator"`

	// Edited is true for every imported report, imported reports are
	// considered reviewed.
	Edited bool `json:"edited"`

	// EditedReport is the public version of the report.
	EditedReport EditedReport `json:"editedReport"`

	// Support contains the request for support, if any.
	Support *Support `json:"support,omitempty"`

	// SourceRow is the index of the sheet row the report was built from.
	SourceRow int `json:"-"`

	// SourceID is a UUIDv5 computed from the cells of the source row.
	SourceID string `json:"-"`
}

// Perpetrator describes the bad date.
type Perpetrator struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	PerpType      string `json:"perpType"`
	AdServiceUsed string `json:"adServiceUsed,omitempty"`
	Gender        string `json:"gender"`
	Age           string `json:"age"`
	Race          string `json:"race"`
	Height        string `json:"height"`
	Hair          string `json:"hair"`
	Attributes    string `json:"attributes"`
	Vehicle       string `json:"vehicle"`
}

// Support is a request for help from the person who submitted the report.
type Support struct {
	NeedSupport string `json:"needSupport,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Name        string `json:"name,omitempty"`
	CallingFrom string `json:"callingFrom,omitempty"`
}

// EditedReport is a short public version of a report.
type EditedReport struct {
	// Title consists of at most five words.
	Title string `json:"title"`

	// Content is the same as AssaultDescription.
	Content string `json:"content"`
}

// Point is a GeoJSON point. Coordinates are in [longitude, latitude]
// order.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint creates a GeoJSON point from latitude and longitude.
func NewPoint(lat, lng float64) *Point {
	return &Point{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Summary is a report as it is returned by the search and list endpoints
// of the API. Only fields needed for printing are decoded.
type Summary struct {
	ID          string `json:"_id"`
	City        string `json:"city"`
	Date        string `json:"date"`
	Perpetrator struct {
		Name string `json:"name"`
	} `json:"perpetrator"`
}

// SearchKey is a combination of fields used to find out if a report
// already exists in the API. Empty fields are not used in the search.
type SearchKey struct {
	// Date in YYYY-MM-DD format.
	Date string
	City string
	Name string
}

// IsEmpty is true when none of the fields are set.
func (k SearchKey) IsEmpty() bool {
	return k.Date == "" && k.City == "" && k.Name == ""
}
