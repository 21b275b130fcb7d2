package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Link":
		return db.AutoMigrate(Link{})
	}
	return nil
}
