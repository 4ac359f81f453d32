package migrations

import (
	_ "embed"
)

//go:embed 2026101802_create_certificates.sql
var createCertificatesSQL string

func init() {
	Migrations.MustRegister(exec(createCertificatesSQL), exec(`DROP TABLE IF EXISTS certificates`))
}
