package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

// MaxSliderImages caps the number of gallery images stored per book.
const MaxSliderImages = 5

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"size:256" json:"fullName"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Role         UserRole       `gorm:"size:20;default:'USER'" json:"role"`
	Avatar       string         `gorm:"size:512" json:"avatar,omitempty"`
	PasswordHash string         `gorm:"size:128" json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type Book struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	MainText  string         `gorm:"index;size:512" json:"mainText"` // book title
	Author    string         `gorm:"index;size:256" json:"author"`
	Price     int            `json:"price"` // smallest currency unit
	Category  string         `gorm:"index;size:100" json:"category"`
	Quantity  int            `json:"quantity"`
	Thumbnail string         `gorm:"size:512" json:"thumbnail"`
	Slider    []string       `gorm:"serializer:json" json:"slider,omitempty"`
	Sold      int            `json:"sold"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Category is a server-provided enumeration of book categories.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (Category) TableName() string {
	return "categories"
}
