package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type receiptSequenceRepository struct{}

func NewReceiptSequenceRepository() domainRepo.ReceiptSequenceRepository {
	return &receiptSequenceRepository{}
}

// Next increments the counter for year and returns the new value.
// Must run inside the transaction that consumes the number.
func (r *receiptSequenceRepository) Next(db *gorm.DB, year int) (int, error) {
	seq := entity.ReceiptSequence{Year: year, LastValue: 1}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("receipt_sequences.last_value + 1"),
		}),
	}).Create(&seq).Error
	if err != nil {
		return 0, err
	}

	var current entity.ReceiptSequence
	if err := db.Where("year = ?", year).First(&current).Error; err != nil {
		return 0, err
	}
	return current.LastValue, nil
}
