package entities

import "time"

// AdminAction is the kind of change recorded in the admin log.
type AdminAction string

const (
	AdminActionAddition AdminAction = "addition"
	AdminActionChange   AdminAction = "change"
	AdminActionDeletion AdminAction = "deletion"
)

// Object types recorded in the admin log.
const (
	ObjectTypeCountry = "country"
	ObjectTypeAddress = "address"
	ObjectTypeAuthor  = "author"
	ObjectTypeBook    = "book"
)

// AdminLogEntry records one add/change/delete made through the admin site.
type AdminLogEntry struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"index" json:"user_id"`
	Username      string      `gorm:"size:64" json:"username"`
	Action        AdminAction `gorm:"index;size:20" json:"action"`
	ObjectType    string      `gorm:"index:idx_admin_log_object;size:20" json:"object_type"`
	ObjectID      uint        `gorm:"index:idx_admin_log_object" json:"object_id"`
	ObjectRepr    string      `gorm:"size:200" json:"object_repr"`
	ChangeMessage string      `gorm:"type:text" json:"change_message,omitempty"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
}

func (AdminLogEntry) TableName() string {
	return "admin_log_entries"
}

// IsAddition and friends keep templates free of string comparisons.
func (e AdminLogEntry) IsAddition() bool { return e.Action == AdminActionAddition }
func (e AdminLogEntry) IsChange() bool   { return e.Action == AdminActionChange }
func (e AdminLogEntry) IsDeletion() bool { return e.Action == AdminActionDeletion }
