package constants

// Audit log actions.
const (
	Create = "create"
	Update = "update"
	Delete = "delete"
)
