package migrations

import (
	_ "embed"
)

//go:embed 2026101801_create_assessments.sql
var createAssessmentsSQL string

func init() {
	Migrations.MustRegister(exec(createAssessmentsSQL), exec(`DROP TABLE IF EXISTS assessments`))
}
