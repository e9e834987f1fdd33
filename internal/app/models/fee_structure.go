package models

import "time"

// FeeFrequency is how often a fee structure is charged
type FeeFrequency string

const (
	FeeMonthly FeeFrequency = "MONTHLY"
	FeeTerm    FeeFrequency = "TERM"
	FeeYearly  FeeFrequency = "YEARLY"
	FeeOneTime FeeFrequency = "ONE_TIME"
)

// PeriodsPerYear returns how many times a year the fee is charged, 0 for unknown frequencies
func (f FeeFrequency) PeriodsPerYear() int {
	switch f {
	case FeeMonthly:
		return 12
	case FeeTerm:
		return 3
	case FeeYearly, FeeOneTime:
		return 1
	}
	return 0
}

// FeeStructure groups fee items for a class and academic year ('fee_structures')
type FeeStructure struct {
	ID           int64        `json:"id" db:"id"`
	ClassID      int64        `json:"classId" db:"class_id"`
	AcademicYear string       `json:"academicYear" db:"academic_year" example:"2025-26"`
	Name         string       `json:"name" db:"name" example:"Tuition"`
	Frequency    FeeFrequency `json:"frequency" db:"frequency" example:"MONTHLY"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
	SoftDelete

	Items []FeeStructureItem `json:"items"`
}

// FeeStructureItem is a single charge line ('fee_structure_items')
type FeeStructureItem struct {
	ID             int64  `json:"id" db:"id"`
	FeeStructureID int64  `json:"feeStructureId" db:"fee_structure_id"`
	Name           string `json:"name" db:"name" example:"Library fee"`
	Amount         int64  `json:"amount" db:"amount" example:"150000"` // minor units
	IsOptional     bool   `json:"isOptional" db:"is_optional"`
}
