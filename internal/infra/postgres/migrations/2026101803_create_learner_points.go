package migrations

import (
	_ "embed"
)

//go:embed 2026101803_create_learner_points.sql
var createLearnerPointsSQL string

func init() {
	Migrations.MustRegister(exec(createLearnerPointsSQL), exec(`DROP TABLE IF EXISTS learner_points`))
}
