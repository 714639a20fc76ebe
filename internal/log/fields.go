package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldExpenseID   = "expense_id"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldFilter      = "filter"
	FieldMatched     = "matched"
	FieldTotal       = "total"
	FieldPath        = "path"
	FieldBackend     = "backend"
	FieldSnapshot    = "snapshot"
	FieldChannelID   = "channel_id"
	FieldAuthor      = "author"
	FieldHealthAddr  = "health_addr"
	FieldChangedKeys = "changed"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentWallet  = "wallet"
	ComponentDiscord = "discord"
)

// Operations defines standard operation names
const (
	OpAdd     = "add"
	OpList    = "list"
	OpDelete  = "delete"
	OpEdit    = "edit"
	OpSummary = "summary"
	OpUndo    = "undo"
	OpLoad    = "load"
	OpSave    = "save"
	OpAppend  = "append"
)
