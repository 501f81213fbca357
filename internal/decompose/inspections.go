package decompose

import (
	"context"
	"fmt"

	"chidata/internal/records"
	"chidata/internal/schema"
	"chidata/internal/transformer"
	"chidata/internal/transformer/builtin"
)

// InspectionHeaders maps food-inspection export headers to canonical names.
var InspectionHeaders = map[string]string{
	"Inspection ID":   "inspection_id",
	"DBA Name":        "dba",
	"AKA Name":        "aka",
	"License #":       "license_number",
	"Facility Type":   "facility_type",
	"Risk":            "risk",
	"Address":         "street",
	"City":            "city",
	"State":           "state",
	"Zip":             "zip",
	"Inspection Date": "inspection_date",
	"Inspection Type": "inspection_type",
	"Results":         "results",
	"Violations":      "violations",
	"Latitude":        "latitude",
	"Longitude":       "longitude",
	"Location":        "location",
}

var inspectionTypes = map[string]string{
	"inspection_id":  "int",
	"license_number": "int",
	"latitude":       "float",
	"longitude":      "float",
}

// InspectionsSource builds the food-inspection pipeline.
func InspectionsSource(opts Options) Source {
	f := opts.Filters
	prepare := transformer.Chain{
		builtin.Rename{Columns: InspectionHeaders},
		builtin.Normalize{Capitalize: true, Exempt: []string{"violations"}},
		builtin.Replace{Column: "city", From: f.CityMisspellings, To: f.TargetCity},
		builtin.Match{Column: "city", Values: []string{f.TargetCity}},
		builtin.ExcludeContains{Column: "facility_type", Keywords: f.ExcludedFacilityKeywords},
		builtin.ConvertDates{},
		builtin.Coerce{Types: inspectionTypes},
	}
	return Source{Name: "inspections", Prepare: prepare, Steps: []Step{
		dimension(schema.FacilityTypes, "facility_type", "name"),
		dimension(schema.RiskLevels, "risk", "name"),
		{Name: schema.FacilityAddresses, Run: facilityAddresses},
		{Name: schema.InspectedBusinesses, Run: inspectedBusinesses},
		dimension(schema.InspectionTypes, "inspection_type", "name"),
		dimension(schema.ResultTypes, "results", "description"),
		{Name: schema.Inspections, Run: inspections},
		{Name: schema.Violations, Run: violations},
	}}
}

func facilityAddresses(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(rows, Extraction{Key: []string{"street"}, ID: "id"})
	if err != nil {
		return err
	}
	if err := w.rewriteAll(ctx, ext,
		rewrite{src: "facility_type", dst: "facility_type_id", table: schema.FacilityTypes, key: "name", id: "id"},
		rewrite{src: "risk", dst: "risk_id", table: schema.RiskLevels, key: "name", id: "id"},
	); err != nil {
		return err
	}
	cols := schema.MustTable(schema.FacilityAddresses).ColumnNames()
	return w.WriteAs(ctx, schema.FacilityAddresses, ext, cols, cols)
}

func inspectedBusinesses(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(requirePresent(rows, "license_number"), Extraction{Key: []string{"license_number"}})
	if err != nil {
		return err
	}
	cols := schema.MustTable(schema.InspectedBusinesses).ColumnNames()
	return w.WriteAs(ctx, schema.InspectedBusinesses, ext, cols, cols)
}

// InspectionExtraction drops repeated inspections of one business with the
// same type, result and date, keeping the lowest inspection id.
var InspectionExtraction = Extraction{
	Key:    []string{"license_number", "inspection_type", "results", "inspection_date"},
	Prefer: records.Asc("inspection_id"),
	Sort:   records.Asc("inspection_id"),
}

func inspections(ctx context.Context, w *Writer, rows []records.Record) error {
	ext, err := Extract(requirePresent(rows, "inspection_id", "license_number"), InspectionExtraction)
	if err != nil {
		return err
	}
	if ext, err = (builtin.DeDup{Keys: []string{"inspection_id"}}).Apply(ext); err != nil {
		return err
	}
	if err := w.rewriteAll(ctx, ext,
		rewrite{src: "street", dst: "facility_address_id", table: schema.FacilityAddresses, key: "street", id: "id"},
		rewrite{src: "inspection_type", dst: "inspection_type_id", table: schema.InspectionTypes, key: "name", id: "id"},
		rewrite{src: "results", dst: "result_type_id", table: schema.ResultTypes, key: "description", id: "id"},
	); err != nil {
		return err
	}
	return w.WriteAs(ctx, schema.Inspections, ext,
		schema.MustTable(schema.Inspections).ColumnNames(),
		[]string{"inspection_id", "license_number", "facility_address_id", "inspection_type_id", "result_type_id", "inspection_date"})
}

// violations parses every inspection's violations text into
// violation_types and the violations links of persisted inspections.
func violations(ctx context.Context, w *Writer, rows []records.Record) error {
	ids, err := w.Repo.ReadRows(ctx, schema.Inspections, []string{"id"})
	if err != nil {
		return fmt.Errorf("read inspection ids: %w", err)
	}
	persisted := make(map[int64]struct{}, len(ids))
	for _, r := range ids {
		if id, ok := toInt64(r["id"]); ok {
			persisted[id] = struct{}{}
		}
	}

	cat, links, err := ExtractViolations("inspections", rows, "violations", "inspection_id", persisted)
	if err != nil {
		return err
	}
	if err := w.Write(ctx, schema.ViolationTypes, schema.MustTable(schema.ViolationTypes).ColumnNames(), cat.Rows()); err != nil {
		return err
	}
	return w.Write(ctx, schema.Violations, schema.MustTable(schema.Violations).ColumnNames(), links)
}
