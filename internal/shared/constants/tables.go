package constants

// Database table names.
const (
	TableClients      = "clients"
	TableSerials      = "serials"
	TableUsages       = "serial_usages"
	TableAuditRecords = "audit_records"
)
