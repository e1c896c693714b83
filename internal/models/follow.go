package models

// Follow subscribes User to the posts of Author. A pair exists at most once.
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;index;uniqueIndex:unique_follow" json:"user_id"`
	User     User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	AuthorID uint `gorm:"not null;index;uniqueIndex:unique_follow" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
