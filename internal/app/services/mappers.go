package services

import (
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

func staffResponse(s *models.Staff, avatarURL dto.AvatarURLFunc) dto.StaffResponse {
	return dto.StaffResponse{
		ID:           s.ID,
		EmployeeCode: s.EmployeeCode,
		Designation:  s.Designation,
		Department:   s.Department,
		JoinDate:     helpers.FormatDate(s.JoinDate),
		Salary:       s.Salary,
		User:         dto.NewUserResponse(s.User, avatarURL),
	}
}

func salaryHistoryResponse(h *models.StaffSalaryHistory) dto.SalaryHistoryResponse {
	return dto.SalaryHistoryResponse{
		ID:             h.ID,
		PreviousSalary: h.PreviousSalary,
		NewSalary:      h.NewSalary,
		EffectiveFrom:  helpers.FormatDate(h.EffectiveFrom),
		Reason:         h.Reason,
		ChangedByID:    h.ChangedByID,
		CreatedAt:      h.CreatedAt,
	}
}

func parentResponse(p *models.Parent, avatarURL dto.AvatarURLFunc) dto.ParentResponse {
	return dto.ParentResponse{
		ID:         p.ID,
		Occupation: p.Occupation,
		Address:    p.Address,
		User:       dto.NewUserResponse(p.User, avatarURL),
	}
}

func studentResponse(s *models.Student, avatarURL dto.AvatarURLFunc) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:          s.ID,
		AdmissionNo: s.AdmissionNo,
		ClassID:     s.ClassID,
		RollNumber:  s.RollNumber,
		Gender:      s.Gender,
		User:        dto.NewUserResponse(s.User, avatarURL),
	}
	if s.DateOfBirth != nil {
		dob := helpers.FormatDate(*s.DateOfBirth)
		resp.DateOfBirth = &dob
	}
	return resp
}
