package models

// Setting is an arbitrary key/value pair with upsert semantics.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"size:1024" json:"value"`
}
