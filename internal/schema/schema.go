// Package schema declares the normalized target schema: every table the
// decomposition engine writes, in creation order, with foreign keys carried
// as metadata only.
package schema

import (
	"fmt"

	"chidata/internal/ddl"
)

// Table names.
const (
	BusinessAddresses   = "business_addresses"
	Businesses          = "businesses"
	LicenseCodes        = "license_codes"
	LicenseStatuses     = "license_statuses"
	Licenses            = "licenses"
	ApplicationTypes    = "application_types"
	ApplicationPayments = "application_payments"
	LicenseApplications = "license_applications"

	FacilityTypes       = "facility_types"
	RiskLevels          = "risk_levels"
	FacilityAddresses   = "facility_addresses"
	InspectedBusinesses = "inspected_businesses"
	InspectionTypes     = "inspection_types"
	ResultTypes         = "result_types"
	Inspections         = "inspections"
	ViolationTypes      = "violation_types"
	Violations          = "violations"
)

func pk(name string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Type: ddl.Int, PrimaryKey: true}
}

func col(name, kind string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Type: kind, Nullable: true}
}

func ref(name, target string) ddl.ColumnDef {
	return ddl.ColumnDef{Name: name, Type: ddl.Int, Nullable: true, References: target}
}

var tables = []ddl.TableDef{
	{FQN: BusinessAddresses, Columns: []ddl.ColumnDef{
		pk("id"),
		col("street", ddl.Text),
		col("zip", ddl.Text),
		col("ward", ddl.Int),
		col("latitude", ddl.Float),
		col("longitude", ddl.Float),
	}},
	{FQN: Businesses, Columns: []ddl.ColumnDef{
		pk("account_number"),
		col("legal_name", ddl.Text),
		col("dba", ddl.Text),
		ref("address_id", "business_addresses.id"),
	}},
	{FQN: LicenseCodes, Columns: []ddl.ColumnDef{
		pk("code"),
		col("description", ddl.Text),
	}},
	{FQN: LicenseStatuses, Columns: []ddl.ColumnDef{
		pk("id"),
		col("status", ddl.Text),
		col("description", ddl.Text),
	}},
	{FQN: Licenses, Columns: []ddl.ColumnDef{
		pk("license_number"),
		ref("account_number", "businesses.account_number"),
		col("start_date", ddl.Date),
		col("expiration_date", ddl.Date),
		col("issue_date", ddl.Date),
		ref("status_id", "license_statuses.id"),
		col("status_change_date", ddl.Date),
		ref("license_code", "license_codes.code"),
	}},
	{FQN: ApplicationTypes, Columns: []ddl.ColumnDef{
		pk("id"),
		col("type", ddl.Text),
	}},
	{FQN: ApplicationPayments, Columns: []ddl.ColumnDef{
		pk("id"),
		col("date", ddl.Date),
	}},
	{FQN: LicenseApplications, Columns: []ddl.ColumnDef{
		pk("id"),
		ref("license_number", "licenses.license_number"),
		ref("license_code", "license_codes.code"),
		ref("account_number", "businesses.account_number"),
		ref("application_type_id", "application_types.id"),
		col("created_date", ddl.Date),
		col("completed_date", ddl.Date),
		col("approval_date", ddl.Date),
		col("conditional_approval", ddl.Text),
		col("site_number", ddl.Int),
		ref("payment_id", "application_payments.id"),
	}},
	{FQN: FacilityTypes, Columns: []ddl.ColumnDef{
		pk("id"),
		col("name", ddl.Text),
	}},
	{FQN: RiskLevels, Columns: []ddl.ColumnDef{
		pk("id"),
		col("name", ddl.Text),
	}},
	{FQN: FacilityAddresses, Columns: []ddl.ColumnDef{
		pk("id"),
		col("street", ddl.Text),
		col("zip", ddl.Text),
		col("latitude", ddl.Float),
		col("longitude", ddl.Float),
		ref("facility_type_id", "facility_types.id"),
		ref("risk_id", "risk_levels.id"),
	}},
	{FQN: InspectedBusinesses, Columns: []ddl.ColumnDef{
		pk("license_number"),
		col("dba", ddl.Text),
		col("aka", ddl.Text),
	}},
	{FQN: InspectionTypes, Columns: []ddl.ColumnDef{
		pk("id"),
		col("name", ddl.Text),
	}},
	{FQN: ResultTypes, Columns: []ddl.ColumnDef{
		pk("id"),
		col("description", ddl.Text),
	}},
	{FQN: Inspections, Columns: []ddl.ColumnDef{
		pk("id"),
		ref("license_number", "inspected_businesses.license_number"),
		ref("facility_address_id", "facility_addresses.id"),
		ref("inspection_type_id", "inspection_types.id"),
		ref("result_type_id", "result_types.id"),
		col("date", ddl.Date),
	}},
	{FQN: ViolationTypes, Columns: []ddl.ColumnDef{
		pk("id"),
		col("name", ddl.Text),
	}},
	{FQN: Violations, Columns: []ddl.ColumnDef{
		ref("inspection_id", "inspections.id"),
		ref("violation_type_id", "violation_types.id"),
		col("comment", ddl.Text),
	}},
}

// LicenseStatusSeed is the fixed content of license_statuses.
var LicenseStatusSeed = [][]any{
	{int64(1), "AAI", "License Issued"},
	{int64(2), "AAC", "Cancelled During Term"},
	{int64(3), "REV", "Revoked"},
	{int64(4), "REA", "Revocation Appealed"},
	{int64(5), "INQ", "???"},
}

// Tables returns every table definition in creation order. The slice is a
// copy; the column slices are shared and must not be modified.
func Tables() []ddl.TableDef {
	out := make([]ddl.TableDef, len(tables))
	copy(out, tables)
	return out
}

// Names returns the table names in creation order.
func Names() []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.FQN
	}
	return out
}

// Table returns the definition of name.
func Table(name string) (ddl.TableDef, error) {
	for _, t := range tables {
		if t.FQN == name {
			return t, nil
		}
	}
	return ddl.TableDef{}, fmt.Errorf("schema: unknown table %q", name)
}

// MustTable is Table for names known at compile time.
func MustTable(name string) ddl.TableDef {
	t, err := Table(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Reference is one declared foreign key.
type Reference struct {
	Table, Column       string
	RefTable, RefColumn string
}

// References lists every foreign key declared in the schema, in table and
// column order.
func References() []Reference {
	var out []Reference
	for _, t := range tables {
		for _, c := range t.Columns {
			if c.References == "" {
				continue
			}
			rt, rc := splitRef(c.References)
			out = append(out, Reference{Table: t.FQN, Column: c.Name, RefTable: rt, RefColumn: rc})
		}
	}
	return out
}

func splitRef(s string) (string, string) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
