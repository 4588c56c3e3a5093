package database

import (
	"ecoscope/internal/models"
	"log"
)

func MigrateDatabase() error {
	log.Println("Running database migrations...")

	err := DB.AutoMigrate(
		&models.Prediction{},
		&models.AnalysisRecord{},
	)

	if err != nil {
		log.Printf("Error during migration: %v", err)
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}
