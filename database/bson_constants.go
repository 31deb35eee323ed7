package database

// Opérateurs et champs MongoDB (évite les littéraux dupliqués)
const (
	BSONSet         = "$set"
	BSONSetOnInsert = "$setOnInsert"
	BSONLt          = "$lt"

	FieldID             = "_id"
	FieldEndpoint       = "endpoint"
	FieldExpirationTime = "expiration_time"
	FieldKeys           = "keys"
	FieldCreatedAt      = "created_at"
)
