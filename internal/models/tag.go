package models

type Tag struct {
	ID      uint64 `gorm:"primarykey" json:"id"`
	Name    string `gorm:"type:varchar(180);uniqueIndex;not null" json:"name"`
	Color   string `gorm:"type:varchar(7)" json:"color"`
	Visible bool   `gorm:"not null;default:true" json:"visible"`
}
