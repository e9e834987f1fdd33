package dto

import "github.com/yigit/schooldesk/internal/app/models"

// FeeItemRequest is one charge line of a fee structure
type FeeItemRequest struct {
	Name       string `json:"name" binding:"required,max=100" example:"Tuition"`
	Amount     int64  `json:"amount" binding:"min=0" example:"350000"`
	IsOptional bool   `json:"isOptional" example:"false"`
}

// CreateFeeStructureRequest creates a fee structure with its items
type CreateFeeStructureRequest struct {
	ClassID      int64            `json:"classId" binding:"required,min=1" example:"3"`
	AcademicYear string           `json:"academicYear" binding:"required,academicyear" example:"2025-26"`
	Name         string           `json:"name" binding:"required,max=100" example:"Regular fees"`
	Frequency    string           `json:"frequency" binding:"required,oneof=MONTHLY TERM YEARLY ONE_TIME" example:"MONTHLY"`
	Items        []FeeItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// UpdateFeeStructureRequest updates a fee structure. A non-nil Items replaces every item.
type UpdateFeeStructureRequest struct {
	Name      *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Frequency *string          `json:"frequency" binding:"omitempty,oneof=MONTHLY TERM YEARLY ONE_TIME"`
	Items     []FeeItemRequest `json:"items" binding:"omitempty,min=1,max=50,dive"`
}

// FeeStructureFilterRequest represents fee structure list filters
type FeeStructureFilterRequest struct {
	ClassID      *int64 `form:"classId" binding:"omitempty,min=1"`
	AcademicYear string `form:"academicYear" binding:"omitempty,academicyear"`
	PageQuery
}

// FeeStructureSummary is the computed total of one fee structure
type FeeStructureSummary struct {
	Structure       models.FeeStructure `json:"structure"`
	MandatoryTotal  int64               `json:"mandatoryTotal" example:"400000"`
	OptionalTotal   int64               `json:"optionalTotal" example:"50000"`
	PeriodsPerYear  int                 `json:"periodsPerYear" example:"12"`
	AnnualMandatory int64               `json:"annualMandatory" example:"4800000"`
	AnnualOptional  int64               `json:"annualOptional" example:"600000"`
}

// StudentFeeSummary is the fee computation for one student and academic year
type StudentFeeSummary struct {
	StudentID       int64                 `json:"studentId" example:"4"`
	ClassID         *int64                `json:"classId,omitempty" example:"3"`
	AcademicYear    string                `json:"academicYear" example:"2025-26"`
	Structures      []FeeStructureSummary `json:"structures"`
	AnnualMandatory int64                 `json:"annualMandatory" example:"4800000"`
	AnnualOptional  int64                 `json:"annualOptional" example:"600000"`
}
