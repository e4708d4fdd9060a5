package models

// Item is the normalized record returned to callers of the gateway.
// ID and Name are passed through from the source document untouched, so
// a document without a name produces an Item whose itemName key is omitted.
type Item struct {
	ID   any `json:"itemId" bson:"_id"`
	Name any `json:"itemName,omitempty" bson:"name,omitempty"`
}
