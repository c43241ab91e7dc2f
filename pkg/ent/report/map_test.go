package report_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/sji-bdl/bdlimport/pkg/ent/report"
)

func fullRow() report.RawRow {
	row := make(report.RawRow, report.ColumnsNum)
	row[report.ColTimestamp] = "5/1/2020 13:45:12"
	row[report.ColIncidentDate] = "4/30/2020"
	row[report.ColCity] = "Oakland"
	row[report.ColArea] = "Hotel/Motel"
	row[report.ColCategory] = "Robbery, Client drunk/high"
	row[report.ColDetails] = "Took the money and left"
	row[report.ColGender] = "female"
	row[report.ColPerpName] = "Bobby"
	row[report.ColPerpAge] = "32"
	row[report.ColPerpPhone] = "5555555555"
	row[report.ColPerpEmail] = "test@test.com"
	row[report.ColPerpGender] = "male"
	row[report.ColPerpRace] = "white"
	row[report.ColPerpHeight] = "5'10"
	row[report.ColPerpBodyType] = "slim"
	row[report.ColPerpAttributes] = "tattoo on right arm"
	row[report.ColPerpVehicle] = "red sedan"
	row[report.ColWhatHappened] = "He did not pay"
	row[report.ColComments] = "Be careful"
	return row
}

var _ = Describe("MapRow", func() {
	It("maps a complete row", func() {
		r := report.MapRow(fullRow(), 3)
		Expect(r.City).To(Equal("Oakland"))
		Expect(r.LocationType).To(Equal("Hotel/Motel"))
		Expect(r.Gender).To(Equal("female"))
		Expect(r.Date).To(Equal("2020-05-01"))
		Expect(r.IncidentDate).To(Equal("4/30/2020"))
		Expect(r.AssaultType).To(Equal([]string{"Robbery", "Client drunk/high"}))
		Expect(r.Perpetrator.Name).To(Equal("Bobby"))
		Expect(r.Perpetrator.Email).To(Equal("test@test.com"))
		Expect(r.Perpetrator.PerpType).To(Equal(report.NA))
		Expect(r.Perpetrator.Vehicle).To(Equal("red sedan"))
		Expect(r.Perpetrator.Hair).To(Equal("tattoo on right arm"))
		Expect(r.Perpetrator.Attributes).To(Equal(
			"Physical attributes: tattoo on right arm\nBody type: slim\n"))
		Expect(r.Edited).To(BeTrue())
		Expect(r.EditedReport.Content).To(Equal(r.AssaultDescription))
		Expect(r.Geolocation).To(BeNil())
		Expect(r.Support).To(BeNil())
		Expect(r.SourceRow).To(Equal(3))
		Expect(r.SourceID).To(HaveLen(36))
	})

	It("is deterministic", func() {
		r1, err := json.Marshal(report.MapRow(fullRow(), 1))
		Expect(err).ToNot(HaveOccurred())
		r2, err := json.Marshal(report.MapRow(fullRow(), 1))
		Expect(err).ToNot(HaveOccurred())
		Expect(r1).To(Equal(r2))
		Expect(report.RowID(fullRow())).To(Equal(report.RowID(fullRow())))
	})

	It("uses timestamp when incident date is blank", func() {
		row := report.RawRow{"2020-05-01", "", "Oakland"}
		r := report.MapRow(row, 1)
		Expect(r.Date).To(Equal("2020-05-01"))
		Expect(r.IncidentDate).To(Equal(""))
	})

	It("saves the same date the search uses", func() {
		rows := []report.RawRow{
			fullRow(),
			{"5/1/2020 13:45:12", "4/28/2020", "Oakland"},
			{"garbage", "4/28/2020", "Oakland"},
			{"", "2019-12-31"},
			{"2020-05-01"},
		}
		for _, row := range rows {
			k := report.Key(row)
			Expect(k.Date).ToNot(BeEmpty())
			Expect(report.MapRow(row, 1).Date).To(Equal(k.Date), row.Cell(0))
		}
		r := report.MapRow(report.RawRow{"5/1/2020 13:45:12", "4/28/2020"}, 1)
		Expect(r.Date).To(Equal("2020-05-01"))
		Expect(r.IncidentDate).To(Equal("4/28/2020"))
	})

	It("uses N/A when no date can be parsed", func() {
		row := report.RawRow{"yesterday", "last week", "Oakland"}
		Expect(report.Key(row).Date).To(Equal(""))
		Expect(report.MapRow(row, 1).Date).To(Equal(report.NA))
	})

	It("fills required fields of an empty row with N/A", func() {
		r := report.MapRow(report.RawRow{}, 1)
		Expect(r.City).To(Equal(report.NA))
		Expect(r.LocationType).To(Equal(report.NA))
		Expect(r.Gender).To(Equal(report.NA))
		Expect(r.Date).To(Equal(report.NA))
		Expect(r.AssaultDescription).To(Equal(report.NA))
		Expect(r.EditedReport.Title).To(Equal(report.NA))
		Expect(r.EditedReport.Content).To(Equal(report.NA))
		p := r.Perpetrator
		for _, v := range []string{
			p.Name, p.Phone, p.Gender, p.Age, p.Race,
			p.Height, p.Vehicle, p.Attributes, p.Hair, p.PerpType,
		} {
			Expect(v).To(Equal(report.NA))
		}
		Expect(p.Email).To(Equal(""))
	})

	It("treats whitespace-only cells as blank", func() {
		row := report.RawRow{"", "", "  ", "", "", "", "", "", "", "", "", " \t"}
		r := report.MapRow(row, 1)
		Expect(r.City).To(Equal(report.NA))
		Expect(r.Perpetrator.Name).To(Equal(report.NA))
	})

	Describe("AssaultDescription", func() {
		It("keeps label order", func() {
			r := report.MapRow(fullRow(), 1)
			Expect(r.AssaultDescription).To(Equal(
				"Details: Took the money and left\n" +
					"What happened: He did not pay\n" +
					"Comments: Be careful\n"))
		})

		It("keeps the order for any subset of columns", func() {
			row := make(report.RawRow, report.ColumnsNum)
			row[report.ColComments] = "c"
			row[report.ColAdSite] = "site"
			row[report.ColWhatHappened] = "w"
			r := report.MapRow(row, 1)
			Expect(r.AssaultDescription).To(Equal(
				"What happened: w\nAd site: site\nComments: c\n"))
			Expect(r.AssaultDescription).ToNot(ContainSubstring("\n\n"))
			Expect(r.AssaultDescription).ToNot(ContainSubstring("Details"))
		})
	})

	Describe("Title", func() {
		It("keeps at most five words", func() {
			r := report.MapRow(fullRow(), 1)
			Expect(r.EditedReport.Title).To(Equal("Oakland Hotel/Motel Robbery, Client drunk/high"))
			Expect(len(strings.Split(r.EditedReport.Title, " "))).To(BeNumerically("<=", 5))
		})

		It("uses available fields", func() {
			row := make(report.RawRow, report.ColumnsNum)
			row[report.ColDetails] = "short"
			r := report.MapRow(row, 1)
			Expect(r.EditedReport.Title).To(Equal("short"))
		})
	})

	Describe("Support", func() {
		It("joins need of support and its kind", func() {
			row := make(report.RawRow, report.ColumnsNum)
			row[report.ColNeedSupport] = "Yes"
			row[report.ColSupportKind] = "Legal"
			row[report.ColSupportContact] = "555"
			r := report.MapRow(row, 1)
			Expect(r.Support).ToNot(BeNil())
			Expect(r.Support.NeedSupport).To(Equal("Yes - Legal"))
			Expect(r.Support.Contact).To(Equal("555"))
		})
	})

	Describe("JSON", func() {
		It("omits geolocation and source fields", func() {
			res, err := json.Marshal(report.MapRow(fullRow(), 1))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(res)).ToNot(ContainSubstring("geolocation"))
			Expect(string(res)).ToNot(ContainSubstring("SourceID"))
			Expect(string(res)).To(ContainSubstring(`"edited":true`))
		})

		It("serializes a point as longitude, latitude", func() {
			res, err := json.Marshal(report.NewPoint(37.8, -122.27))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(res)).To(Equal(`{"type":"Point","coordinates":[-122.27,37.8]}`))
		})
	})
})

var _ = Describe("Key", func() {
	It("uses date, city and name", func() {
		k := report.Key(fullRow())
		Expect(k).To(Equal(report.SearchKey{
			Date: "2020-05-01", City: "Oakland", Name: "Bobby",
		}))
	})

	It("leaves blank fields empty", func() {
		k := report.Key(report.RawRow{"2020-05-01", "", "Oakland"})
		Expect(k.Name).To(Equal(""))
		Expect(k.IsEmpty()).To(BeFalse())
		Expect(report.Key(report.RawRow{}).IsEmpty()).To(BeTrue())
	})

	It("falls back to incident date", func() {
		k := report.Key(report.RawRow{"garbage", "2019-12-31"})
		Expect(k.Date).To(Equal("2019-12-31"))
	})
})

var _ = Describe("ParseDate", func() {
	It("parses formats used in the sheet", func() {
		for in, out := range map[string]string{
			"2020-05-01":           "2020-05-01",
			"5/1/2020 13:45:12":    "2020-05-01",
			"5/1/2020":             "2020-05-01",
			"2020-05-01T10:00:00Z": "2020-05-01",
			"May 1, 2020":          "2020-05-01",
		} {
			res, ok := report.ParseDate(in)
			Expect(ok).To(BeTrue(), in)
			Expect(res).To(Equal(out), in)
		}
	})

	It("rejects non-dates", func() {
		_, ok := report.ParseDate("last week")
		Expect(ok).To(BeFalse())
		_, ok = report.ParseDate("")
		Expect(ok).To(BeFalse())
	})
})
