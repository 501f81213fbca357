package decompose

import (
	"context"

	"chidata/internal/records"
	"chidata/internal/schema"
	"chidata/internal/transformer"
	"chidata/internal/transformer/builtin"
)

// LicenseHeaders maps business-license export headers to canonical names.
var LicenseHeaders = map[string]string{
	"ID":                                "id",
	"LICENSE ID":                        "application_id",
	"ACCOUNT NUMBER":                    "account_number",
	"SITE NUMBER":                       "site_number",
	"LEGAL NAME":                        "legal_name",
	"DOING BUSINESS AS NAME":            "dba",
	"ADDRESS":                           "street",
	"CITY":                              "city",
	"STATE":                             "state",
	"ZIP CODE":                          "zip",
	"WARD":                              "ward",
	"PRECINCT":                          "precinct",
	"WARD PRECINCT":                     "ward_precinct",
	"POLICE DISTRICT":                   "police_district",
	"LICENSE CODE":                      "license_code",
	"LICENSE DESCRIPTION":               "license_description",
	"BUSINESS ACTIVITY ID":              "business_activity_id",
	"BUSINESS ACTIVITY":                 "business_activity",
	"LICENSE NUMBER":                    "license_number",
	"APPLICATION TYPE":                  "application_type",
	"APPLICATION CREATED DATE":          "application_created_date",
	"APPLICATION REQUIREMENTS COMPLETE": "application_requirements_complete_date",
	"PAYMENT DATE":                      "payment_date",
	"CONDITIONAL APPROVAL":              "conditional_approval",
	"LICENSE TERM START DATE":           "license_term_start_date",
	"LICENSE TERM EXPIRATION DATE":      "license_term_expiration_date",
	"LICENSE APPROVED FOR ISSUANCE":     "license_approved_for_issuance_date",
	"DATE ISSUED":                       "issue_date",
	"LICENSE STATUS":                    "license_status",
	"LICENSE STATUS CHANGE DATE":        "license_status_change_date",
	"SSA":                               "ssa",
	"LATITUDE":                          "latitude",
	"LONGITUDE":                         "longitude",
	"LOCATION":                          "location",
}

var licenseTypes = map[string]string{
	"account_number": "int",
	"site_number":    "int",
	"ward":           "int",
	"license_code":   "int",
	"license_number": "int",
	"application_id": "int",
	"latitude":       "float",
	"longitude":      "float",
}

// LicensesSource builds the business-license pipeline.
func LicensesSource(opts Options) Source {
	f := opts.Filters
	prepare := transformer.Chain{
		builtin.Rename{Columns: LicenseHeaders},
		builtin.Require{Fields: []string{"ward"}},
		builtin.Match{Column: "state", Values: []string{f.TargetState}},
		builtin.Exclude{Column: "city", Values: f.ExcludedLicenseCities},
		builtin.Normalize{Capitalize: true, Exempt: []string{"license_status"}},
		builtin.ConvertDates{},
		builtin.Coerce{Types: licenseTypes},
	}
	steps := []Step{
		{Name: schema.BusinessAddresses, Run: businessAddresses},
		{Name: schema.Businesses, Run: businesses},
		{Name: schema.LicenseCodes, Run: licenseCodes},
		{Name: schema.LicenseStatuses, Run: licenseStatuses},
		{Name: schema.Licenses, Run: licenses},
	}
	if opts.Applications {
		steps = append(steps,
			dimension(schema.ApplicationTypes, "application_type", "type"),
			Step{Name: schema.LicenseApplications, Run: licenseApplications},
		)
	}
	return Source{Name: "licenses", Prepare: prepare, Steps: steps}
}

// AddressExtraction yields one business address per street, preferring a
// row that carries a location, ordered by ward then street.
var AddressExtraction = Extraction{
	Key:  []string{"street"},
	Sort: records.Asc("ward", "street"),
	ID:   "id",
}

func businessAddresses(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(LocatedFirst(rows, "location"), AddressExtraction)
	if err != nil {
		return err
	}
	cols := schema.MustTable(schema.BusinessAddresses).ColumnNames()
	return w.WriteAs(ctx, schema.BusinessAddresses, ext, cols, cols)
}

func businesses(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(requirePresent(rows, "account_number"), Extraction{Key: []string{"account_number"}})
	if err != nil {
		return err
	}
	if err := w.rewriteAll(ctx, ext,
		rewrite{src: "street", dst: "address_id", table: schema.BusinessAddresses, key: "street", id: "id"},
	); err != nil {
		return err
	}
	cols := schema.MustTable(schema.Businesses).ColumnNames()
	return w.WriteAs(ctx, schema.Businesses, ext, cols, cols)
}

func licenseCodes(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(requirePresent(rows, "license_code"), Extraction{Key: []string{"license_code"}})
	if err != nil {
		return err
	}
	return w.WriteAs(ctx, schema.LicenseCodes, ext,
		[]string{"code", "description"},
		[]string{"license_code", "license_description"})
}

func licenseStatuses(ctx context.Context, w *Writer, _ []records.Record) error {
	cols := schema.MustTable(schema.LicenseStatuses).ColumnNames()
	return w.Write(ctx, schema.LicenseStatuses, cols, schema.LicenseStatusSeed)
}

// LicenseExtraction keeps the newest term of each license.
var LicenseExtraction = Extraction{
	Key:    []string{"license_number"},
	Prefer: []records.SortKey{{Column: "license_term_start_date", Desc: true}},
	Sort:   records.Asc("license_number"),
}

func licenses(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(requirePresent(rows, "license_number"), LicenseExtraction)
	if err != nil {
		return err
	}
	if err := w.rewriteAll(ctx, ext,
		rewrite{src: "license_status", dst: "status_id", table: schema.LicenseStatuses, key: "status", id: "id"},
	); err != nil {
		return err
	}
	return w.WriteAs(ctx, schema.Licenses, ext,
		schema.MustTable(schema.Licenses).ColumnNames(),
		[]string{
			"license_number", "account_number", "license_term_start_date",
			"license_term_expiration_date", "issue_date", "status_id",
			"license_status_change_date", "license_code",
		})
}

var (
	applicationColumns = map[string]string{
		"id":                   "application_id",
		"license_number":       "license_number",
		"license_code":         "license_code",
		"account_number":       "account_number",
		"application_type_id":  "application_type_id",
		"created_date":         "application_created_date",
		"completed_date":       "application_requirements_complete_date",
		"approval_date":        "license_approved_for_issuance_date",
		"conditional_approval": "conditional_approval",
		"site_number":          "site_number",
	}
	paymentColumns = map[string]string{"date": "payment_date"}
)

// licenseApplications writes license_applications and application_payments
// from the same rows, with payment ids assigned in lockstep.
func licenseApplications(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(requirePresent(rows, "application_id"), Extraction{Key: []string{"application_id"}})
	if err != nil {
		return err
	}
	if err := w.rewriteAll(ctx, ext,
		rewrite{src: "application_type", dst: "application_type_id", table: schema.ApplicationTypes, key: "type", id: "id"},
	); err != nil {
		return err
	}
	apps, pays := Split(ext, applicationColumns, paymentColumns)
	if err := Synchronize(apps, pays, "payment_id", "id"); err != nil {
		return err
	}
	payCols := schema.MustTable(schema.ApplicationPayments).ColumnNames()
	if err := w.WriteAs(ctx, schema.ApplicationPayments, pays, payCols, payCols); err != nil {
		return err
	}
	appCols := schema.MustTable(schema.LicenseApplications).ColumnNames()
	return w.WriteAs(ctx, schema.LicenseApplications, apps, appCols, appCols)
}
