package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// generateDDL creates a CREATE TABLE statement from struct tags.
func generateDDL(model any, tableName string, pk ...string) string {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var columns []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			columns = append(columns, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}
	if len(pk) > 0 {
		columns = append(columns,
			fmt.Sprintf("    PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))

	return ddl
}

// Columns returns column names of a model in field order.
func Columns(model any) []string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var res []string
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("db"); tag != "" {
			res = append(res, tag)
		}
	}
	return res
}

func (d Dataset) TableDDL() string {
	return generateDDL(d, d.TableName(), "id", "version")
}

func (d Dataset) IndexDDL() []string {
	return []string{}
}

func (d Dataset) TableName() string {
	return "datasets"
}

func (t Taxon) TableDDL() string {
	return generateDDL(t, t.TableName(), "dataset_id", "version", "position")
}

func (t Taxon) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_taxa_name ON taxa(dataset_id, version, name);",
		"CREATE INDEX IF NOT EXISTS idx_taxa_taxon_id ON taxa(dataset_id, version, taxon_id);",
	}
}

func (t Taxon) TableName() string {
	return "taxa"
}

// AllDDL returns statements that create every table and index.
func AllDDL() []string {
	var res []string
	for _, m := range []DDLGenerator{Dataset{}, Taxon{}} {
		res = append(res, m.TableDDL())
		res = append(res, m.IndexDDL()...)
	}
	return res
}
