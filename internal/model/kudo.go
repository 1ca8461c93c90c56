package model

import "time"

// Category tags what kind of impact a kudo recognises.
// The set is fixed; anything else is rejected at validation time.
type Category string

const (
	CategoryTeamwork   Category = "Teamwork"
	CategoryInnovation Category = "Innovation"
	CategoryHelpful    Category = "Helpful"
	CategoryOther      Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryTeamwork,
	CategoryInnovation,
	CategoryHelpful,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
// The comparison is exact: "teamwork" is not "Teamwork".
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Kudo is a single recognition message from one user to another.
//
// LIFECYCLE:
// A kudo is created visible (Hidden=false). The only mutation is the one-way
// hide transition; hidden kudos stay in storage but never reach the feed.
type Kudo struct {
	ID         int64     `json:"id"         db:"id"           gorm:"primaryKey;autoIncrement"`
	FromUserID string    `json:"fromUserId" db:"from_user_id" gorm:"not null"`
	ToUserID   string    `json:"toUserId"   db:"to_user_id"   gorm:"not null"`
	Message    string    `json:"message"    db:"message"      gorm:"not null"`
	Category   Category  `json:"category"   db:"category"     gorm:"not null"`
	Hidden     bool      `json:"hidden"     db:"hidden"       gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"   gorm:"autoCreateTime"`
}

// TableName pins the gorm table name (also promoted to KudoWithUser).
func (Kudo) TableName() string { return "kudos" }

// KudoWithUser is a Kudo expanded with its sender's and recipient's records.
// This is the shape the feed returns.
//
// The embedded Kudo flattens into the JSON object, so clients see
// {"id":1,"fromUserId":"...",...,"fromUser":{...},"toUser":{...}}.
type KudoWithUser struct {
	Kudo
	FromUser User `json:"fromUser" gorm:"foreignKey:FromUserID;references:ID"`
	ToUser   User `json:"toUser"   gorm:"foreignKey:ToUserID;references:ID"`
}

// NewKudo is the client-controlled part of a kudo.
//
// Note what is missing: there is no sender field. The sender is always the
// authenticated caller and travels as a separate argument all the way down
// to storage, so no caller can forget to overwrite it.
type NewKudo struct {
	ToUserID string
	Message  string
	Category Category
}
