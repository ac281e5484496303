package data

import (
	_ "embed"
)

//go:embed fixtures/catalogue.json
var CatalogueJSON []byte

//go:embed fixtures/audit_logs.json
var AuditLogsJSON []byte

//go:embed fixtures/base_types.json
var BaseTypesJSON []byte

//go:embed fixtures/form_metadata.json
var FormMetadataJSON []byte
