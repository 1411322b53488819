package user

import "time"

type User struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Email          string    `gorm:"column:email;uniqueIndex;not null"`
	HashedPassword string    `gorm:"column:hashed_password;not null"`
	FullName       *string   `gorm:"column:full_name"`
	Role           string    `gorm:"column:role;not null;default:staff"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
