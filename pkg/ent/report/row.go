package report

import "strings"

// Columns of the "Bad Date List" Google Form responses sheet.
const (
	ColTimestamp          = iota // A 'Timestamp'
	ColIncidentDate              // B 'When did the incident happen?'
	ColCity                      // C 'What city did the incident ... take place?'
	ColArea                      // D 'In what area did the incident ... take place?'
	ColCategory                  // E 'What happened?'
	ColDetails                   // F 'Please provide details about what happened'
	ColGender                    // G 'Your Gender'
	ColWorkType                  // H 'Your Type of Work'
	ColBadDateWas                // I 'Bad Date was:'
	ColFirstContact              // J 'Where did the Bad Date make first contact?'
	ColAdSite                    // K 'advertising website and their handle'
	ColPerpName                  // L "Bad Date's Name"
	ColPerpAge                   // M "Bad Date's Age"
	ColPerpPhone                 // N "Bad Date's Phone Number"
	ColPerpEmail                 // O "Bad Date's E-mail"
	ColPerpGender                // P "Bad Date's Gender"
	ColPerpRace                  // Q "Bad Date's race/ethnicity"
	ColPerpHeight                // R "Bad Date's Height"
	ColPerpBodyType              // S "Bad Date's Body type"
	ColPerpAttributes            // T 'unique identifiable physical attributes'
	ColPerpVehicle               // U "Bad Date's Vehicle Info"
	ColNeedSupport               // V 'Do you need support?'
	ColSupportKind               // W 'what kind of support do you need?'
	ColSupportContact            // X 'best way to reach you'
	ColSupportName               // Y 'what name should we call you'
	ColSupportCallingFrom        // Z 'can we say we are calling from St.James?'
	ColAdditionalComments        // AA 'Additional Comments:'
	ColWhatHappened              // AB 'What happened?'
	ColNotes                     // AC no header
	ColComments                  // AD 'Comments:'

	// ColumnsNum is the number of columns in the sheet (A:AD).
	ColumnsNum
)

// RawRow is one row of the responses sheet. Trailing blank cells are
// usually missing, so the row can be shorter than ColumnsNum.
type RawRow []string

// Cell returns a trimmed value of a cell, or an empty string if the cell
// does not exist.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// CellNA returns a trimmed value of a cell, or NA if the cell is blank.
func (r RawRow) CellNA(i int) string {
	if res := r.Cell(i); res != "" {
		return res
	}
	return NA
}

// IsBlank is true if all the cells of the row are empty.
func (r RawRow) IsBlank() bool {
	for i := range r {
		if r.Cell(i) != "" {
			return false
		}
	}
	return true
}
