package models

import (
	"time"

	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
)

// UserModel is the GORM persistence model for User
type UserModel struct {
	AggregateModel
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string     `gorm:"type:varchar(100);not null"`
	PasswordHash string     `gorm:"type:varchar(200);not null"`
	Image        string     `gorm:"type:varchar(500);not null;default:''"`
	Role         string     `gorm:"type:varchar(20);not null;default:'member';index"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active';index"`
	AuthMode     string     `gorm:"type:varchar(20);not null;default:'local'"`
	XP           int64      `gorm:"column:xp;not null;default:0"`
	Level        int        `gorm:"not null;default:1"`
	LastLoginAt  *time.Time `gorm:""`
}

// TableName specifies the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User entity
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Image:        m.Image,
		Role:         identity.UserRole(m.Role),
		Status:       identity.UserStatus(m.Status),
		AuthMode:     identity.AuthMode(m.AuthMode),
		XP:           m.XP,
		Level:        m.Level,
		LastLoginAt:  m.LastLoginAt,
	}
	return user
}

// UserModelFromDomain converts domain User entity to UserModel
func UserModelFromDomain(user *identity.User) *UserModel {
	model := &UserModel{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Image:        user.Image,
		Role:         string(user.Role),
		Status:       string(user.Status),
		AuthMode:     string(user.AuthMode),
		XP:           user.XP,
		Level:        user.Level,
		LastLoginAt:  user.LastLoginAt,
	}
	model.FromDomainAggregateRoot(user.BaseAggregateRoot)
	return model
}
