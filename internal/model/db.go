package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Document{},
		&DocumentVersion{},
		&AccessGrant{},
		&RecoveryAgent{},
		&RecoverySettings{},
		&RecoveryRequest{},
		&RecoveryApproval{},
		&RecoveryEvent{},
		&BackupLocation{},
		&BackupPolicy{},
		&DocumentBackup{},
		&BackupVerification{},
	)
}
