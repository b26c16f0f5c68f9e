package models

import "gorm.io/gorm"

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Team{},
		&TeamMember{},
		&Equipment{},
		&MaintenanceRequest{},
		&RequestEvent{},
		&PasswordResetCode{},
	}
}

// SeedManager inserts the default manager account unless the email is taken.
func SeedManager(db *gorm.DB, name, email, passwordHash string) (created bool, err error) {
	var existing int64
	if err := db.Model(&User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}
	manager := User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleManager,
	}
	if err := db.Create(&manager).Error; err != nil {
		return false, err
	}
	return true, nil
}
