package report

import (
	"strings"

	"github.com/gnames/gnuuid"
	"github.com/sji-bdl/bdlimport/internal/str"
)

// TitleWordsNum is the maximal number of words in a title of an edited
// report.
const TitleWordsNum = 5

// labeled is a column that contributes a "<label>: <value>" line to a
// free text field.
type labeled struct {
	label string
	col   int
}

// descriptionCols is the order of columns in AssaultDescription.
var descriptionCols = []labeled{
	{"Details", ColDetails},
	{"What happened", ColWhatHappened},
	{"Bad date was", ColBadDateWas},
	{"First contact", ColFirstContact},
	{"Ad site", ColAdSite},
	{"Additional Comments", ColAdditionalComments},
	{"Notes", ColNotes},
	{"Comments", ColComments},
}

var attributesCols = []labeled{
	{"Physical attributes", ColPerpAttributes},
	{"Body type", ColPerpBodyType},
}

var titleCols = []int{ColCity, ColArea, ColCategory, ColDetails}

// MapRow converts a row of the responses sheet to a Report. The idx is
// the index of the row in the sheet. MapRow does not do any I/O, the same
// row always produces the same report. Geolocation is left empty.
func MapRow(row RawRow, idx int) Report {
	desc := labeledText(row, descriptionCols)
	if desc == "" {
		desc = NA
	}

	res := Report{
		City:               row.CellNA(ColCity),
		LocationType:       row.CellNA(ColArea),
		Gender:             row.CellNA(ColGender),
		Date:               reportDate(row),
		IncidentDate:       row.Cell(ColIncidentDate),
		AssaultType:        str.SplitList(row.Cell(ColCategory)),
		AssaultDescription: desc,
		Perpetrator:        mapPerpetrator(row),
		Edited:             true,
		EditedReport: EditedReport{
			Title:   title(row),
			Content: desc,
		},
		Support:   mapSupport(row),
		SourceRow: idx,
		SourceID:  RowID(row),
	}
	return res
}

// Key returns fields of a row used to search for an existing report.
// Blank fields stay empty.
func Key(row RawRow) SearchKey {
	return SearchKey{
		Date: searchDate(row),
		City: row.Cell(ColCity),
		Name: row.Cell(ColPerpName),
	}
}

// RowID creates a UUIDv5 from the cells of a row.
func RowID(row RawRow) string {
	return gnuuid.New(strings.Join(row, "\x1f")).String()
}

// searchDate uses the submission timestamp, falling back to the incident
// date if the timestamp cannot be parsed.
func searchDate(row RawRow) string {
	if d, ok := ParseDate(row.Cell(ColTimestamp)); ok {
		return d
	}
	d, _ := ParseDate(row.Cell(ColIncidentDate))
	return d
}

// reportDate is the date saved with the report, the same date Key uses
// for the search. The incident date text goes to IncidentDate as is.
func reportDate(row RawRow) string {
	if d := searchDate(row); d != "" {
		return d
	}
	return NA
}

func mapPerpetrator(row RawRow) Perpetrator {
	attr := labeledText(row, attributesCols)
	if attr == "" {
		attr = NA
	}
	return Perpetrator{
		Name:          row.CellNA(ColPerpName),
		Phone:         row.CellNA(ColPerpPhone),
		Email:         row.Cell(ColPerpEmail),
		PerpType:      NA,
		AdServiceUsed: row.Cell(ColAdSite),
		Gender:        row.CellNA(ColPerpGender),
		Age:           row.CellNA(ColPerpAge),
		Race:          row.CellNA(ColPerpRace),
		Height:        row.CellNA(ColPerpHeight),
		Hair:          row.CellNA(ColPerpAttributes),
		Attributes:    attr,
		Vehicle:       row.CellNA(ColPerpVehicle),
	}
}

func mapSupport(row RawRow) *Support {
	res := Support{
		NeedSupport: str.JoinNonEmpty(" - ",
			row.Cell(ColNeedSupport), row.Cell(ColSupportKind)),
		Contact:     row.Cell(ColSupportContact),
		Name:        row.Cell(ColSupportName),
		CallingFrom: row.Cell(ColSupportCallingFrom),
	}
	if res == (Support{}) {
		return nil
	}
	return &res
}

func title(row RawRow) string {
	parts := make([]string, len(titleCols))
	for i, col := range titleCols {
		parts[i] = row.Cell(col)
	}
	res := str.FirstWords(str.JoinNonEmpty(" ", parts...), TitleWordsNum)
	if res == "" {
		return NA
	}
	return res
}

// labeledText creates "<label>: <value>\n" line for every non-empty cell.
// Empty cells do not leave a trace in the result.
func labeledText(row RawRow, cols []labeled) string {
	var sb strings.Builder
	for _, v := range cols {
		val := row.Cell(v.col)
		if val == "" {
			continue
		}
		sb.WriteString(v.label)
		sb.WriteString(": ")
		sb.WriteString(val)
		sb.WriteString("\n")
	}
	return sb.String()
}
