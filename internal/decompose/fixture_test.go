package decompose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chidata/internal/records"
	"chidata/internal/storage"
	_ "chidata/internal/storage/sqlite"
)

func openStore(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

func testOptions() Options {
	return Options{Job: "test", Applications: true, Vacuum: true, Filters: DefaultFilters()}
}

// licenseRow builds a raw export row; overrides replace or, with nil,
// blank out a header.
func licenseRow(overrides map[string]any) records.Record {
	r := records.Record{
		"ID":                                "1001-20200115",
		"LICENSE ID":                        "1001",
		"ACCOUNT NUMBER":                    "1",
		"SITE NUMBER":                       "1",
		"LEGAL NAME":                        "ACME  FOODS LLC",
		"DOING BUSINESS AS NAME":            "ACME DINER",
		"ADDRESS":                           "100 N STATE ST",
		"CITY":                              "CHICAGO",
		"STATE":                             "IL",
		"ZIP CODE":                          "60602",
		"WARD":                              "42",
		"LICENSE CODE":                      "1006",
		"LICENSE DESCRIPTION":               "RETAIL FOOD ESTABLISHMENT",
		"LICENSE NUMBER":                    "5001",
		"APPLICATION TYPE":                  "ISSUE",
		"APPLICATION CREATED DATE":          "01/05/2020",
		"APPLICATION REQUIREMENTS COMPLETE": "01/08/2020",
		"PAYMENT DATE":                      "01/10/2020",
		"CONDITIONAL APPROVAL":              "N",
		"LICENSE TERM START DATE":           "01/15/2020",
		"LICENSE TERM EXPIRATION DATE":      "01/15/2022",
		"LICENSE APPROVED FOR ISSUANCE":     "01/12/2020",
		"DATE ISSUED":                       "01/12/2020",
		"LICENSE STATUS":                    "AAI",
		"LATITUDE":                          "41.8837",
		"LONGITUDE":                         "-87.6278",
		"LOCATION":                          "(41.8837, -87.6278)",
	}
	for k, v := range overrides {
		r[k] = v
	}
	return r
}

func inspectionRow(overrides map[string]any) records.Record {
	r := records.Record{
		"Inspection ID":   "9001",
		"DBA Name":        "ACME DINER",
		"AKA Name":        "ACME",
		"License #":       "5001",
		"Facility Type":   "Restaurant",
		"Risk":            "Risk 1 (High)",
		"Address":         "100 N STATE ST ",
		"City":            "CHICAGO",
		"State":           "IL",
		"Zip":             "60602",
		"Inspection Date": "03/01/2021",
		"Inspection Type": "Canvass",
		"Results":         "Pass",
		"Violations":      "1. Toxic Substances - Comments: Stored improperly | 3. FOOD CONTAMINATION",
		"Latitude":        "41.8837",
		"Longitude":       "-87.6278",
		"Location":        "(41.8837, -87.6278)",
	}
	for k, v := range overrides {
		r[k] = v
	}
	return r
}

// fixture returns fresh raw rows; the prepare chains modify their input.
//
// Licenses: 5001 has two terms at the same street, the renewal without a
// location. 5002 is never inspected and is pruned with its business and
// address. Three rows are filtered out.
//
// Inspections: 9003 is misspelled "CCHICAGO" and inspects an unlicensed
// business, 9004 repeats 9001, two rows are filtered out.
func fixture() Input {
	return Input{
		Licenses: []records.Record{
			licenseRow(nil),
			licenseRow(map[string]any{
				"ID":                           "1002-20220115",
				"LICENSE ID":                   "1002",
				"APPLICATION TYPE":             "RENEW",
				"PAYMENT DATE":                 "01/02/2022",
				"LICENSE TERM START DATE":      "01/15/2022",
				"LICENSE TERM EXPIRATION DATE": "01/15/2024",
				"LATITUDE":                     nil,
				"LONGITUDE":                    nil,
				"LOCATION":                     nil,
			}),
			licenseRow(map[string]any{
				"LICENSE ID":     "1003",
				"ACCOUNT NUMBER": "2",
				"ADDRESS":        "200 W MADISON ST",
				"LICENSE NUMBER": "5002",
				"LICENSE STATUS": "AAC",
				"PAYMENT DATE":   "02/03/2020",
			}),
			licenseRow(map[string]any{"LICENSE ID": "1004", "LICENSE NUMBER": "5004", "WARD": nil}),
			licenseRow(map[string]any{"LICENSE ID": "1005", "LICENSE NUMBER": "5005", "STATE": "WI"}),
			licenseRow(map[string]any{"LICENSE ID": "1006", "LICENSE NUMBER": "5006", "CITY": "SCHILLER PARK"}),
		},
		Inspections: []records.Record{
			inspectionRow(nil),
			inspectionRow(map[string]any{
				"Inspection ID":   "9002",
				"Inspection Date": "04/01/2021",
				"Inspection Type": "Canvass Re-Inspection",
				"Results":         "Pass w/ Conditions",
				"Violations":      "7. RODENT INFESTATION - Comments: droppings near dock",
			}),
			inspectionRow(map[string]any{
				"Inspection ID": "9003",
				"License #":     "5003",
				"DBA Name":      "KIDS PLACE",
				"Facility Type": "CHILDRENS SERVICES FACILITY",
				"Address":       "300 S WACKER DR",
				"City":          "CCHICAGO",
				"Violations":    "7. rodent infestation",
			}),
			inspectionRow(map[string]any{"Inspection ID": "9004", "Violations": "1. Toxic Substances"}),
			inspectionRow(map[string]any{"Inspection ID": "9005", "Facility Type": "SCHOOL"}),
			inspectionRow(map[string]any{"Inspection ID": "9006", "City": "EVANSTON"}),
		},
	}
}

// accountChangeFixture has license 5001 renewed in 2022 under a new account
// number, and one inspection of it.
func accountChangeFixture() Input {
	return Input{
		Licenses: []records.Record{
			licenseRow(nil),
			licenseRow(map[string]any{
				"ID":                           "1002-20220115",
				"LICENSE ID":                   "1002",
				"ACCOUNT NUMBER":               "2",
				"APPLICATION TYPE":             "RENEW",
				"PAYMENT DATE":                 "01/02/2022",
				"LICENSE TERM START DATE":      "01/15/2022",
				"LICENSE TERM EXPIRATION DATE": "01/15/2024",
			}),
		},
		Inspections: []records.Record{inspectionRow(nil)},
	}
}

// readTable reads every column of table ordered by cols.
func readTable(t *testing.T, repo storage.Repository, table string, cols ...string) []records.Record {
	t.Helper()
	rows, err := repo.ReadRows(context.Background(), table, cols)
	require.NoError(t, err)
	records.SortStable(rows, records.Asc(cols...))
	return rows
}
