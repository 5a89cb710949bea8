package contract

import (
	"errors"
	"fmt"

	"github.com/jinzhu/gorm"
)

// Sequence serializes contract number generation. One row per scope
// (one scope per year), consumed with an optimistic compare-and-set so
// concurrent creations cannot hand out the same number.
type Sequence struct {
	Scope     string `json:"scope" gorm:"primary_key" sql:"type:VARCHAR(32) NOT NULL"`
	NextValue int    `json:"nextValue" sql:"type:INT NOT NULL"`
}

func (s *Sequence) TableName() string {
	return "sequences"
}

func nextContractNumber(year int, tx *gorm.DB) (string, error) {
	scope := fmt.Sprintf("contract-%d", year)

	seq := Sequence{}
	err := tx.Where(&Sequence{Scope: scope}).First(&seq).Error
	if err == gorm.ErrRecordNotFound {
		// first number of the year; the primary key makes a concurrent
		// bootstrap fail with a duplicate key instead of a duplicate number
		if err := tx.Create(&Sequence{Scope: scope, NextValue: 2}).Error; err != nil {
			return "", err
		}
		return formatContractNumber(year, 1), nil
	}
	if err != nil {
		return "", err
	}

	number := formatContractNumber(year, seq.NextValue)
	db := tx.Model(&Sequence{}).Where("scope = ? AND next_value = ?", scope, seq.NextValue).
		Update("next_value", seq.NextValue+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", errors.New("concurrent modification")
	}
	return number, nil
}

func formatContractNumber(year, seq int) string {
	return fmt.Sprintf("ARC-%d-%04d", year, seq)
}
