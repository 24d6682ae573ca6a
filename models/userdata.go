package models

import "time"

// UserData хранит токены Swit и Asana одного пользователя Swit.
// A row with only the Swit columns filled is the normal state between the two
// OAuth callbacks.
type UserData struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SwitID            string    `gorm:"size:255;uniqueIndex;not null" json:"swit_id"` // Swit user id
	AsanaID           string    `gorm:"size:255" json:"asana_id"`                     // Asana user gid
	AsanaToken        string    `gorm:"type:text" json:"-"`
	AsanaRefreshToken string    `gorm:"type:text" json:"-"`
	SwitToken         string    `gorm:"type:text" json:"-"`
	SwitRefreshToken  string    `gorm:"type:text" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName keeps the table name of the original deployment.
func (UserData) TableName() string {
	return "userdata"
}

// HasSwitToken reports whether the user finished the Swit OAuth flow.
func (u *UserData) HasSwitToken() bool {
	return u != nil && u.SwitToken != ""
}

// HasAsanaToken reports whether the user finished the Asana OAuth flow.
func (u *UserData) HasAsanaToken() bool {
	return u != nil && u.AsanaToken != ""
}
