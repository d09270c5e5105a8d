package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookstore/internal/entities"
)

var defaultCategories = []entities.Category{
	{Name: "Arts"},
	{Name: "Business"},
	{Name: "Comics"},
	{Name: "Cooking"},
	{Name: "Entertainment"},
	{Name: "Fiction"},
	{Name: "History"},
	{Name: "Music"},
	{Name: "Sports"},
	{Name: "Teen"},
	{Name: "Travel"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Category{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	log.Printf("Database initialized at %s", dbPath)

	return database, nil
}

// seedCategories inserts the default category enumeration, skipping
// names that already exist.
func (d *Database) seedCategories() error {
	for _, category := range defaultCategories {
		var existing entities.Category
		err := d.DB.Where("name = ?", category.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := d.DB.Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
