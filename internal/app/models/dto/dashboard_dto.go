package dto

import "time"

// DashboardStats are the admin dashboard counters
type DashboardStats struct {
	Students       int64     `json:"students" example:"420"`
	Teachers       int64     `json:"teachers" example:"28"`
	Staff          int64     `json:"staff" example:"12"`
	Parents        int64     `json:"parents" example:"390"`
	Rooms          int64     `json:"rooms" example:"35"`
	Classes        int64     `json:"classes" example:"24"`
	LeaveTypes     int64     `json:"leaveTypes" example:"5"`
	MonthlyPayroll int64     `json:"monthlyPayroll" example:"180000000"`
	GeneratedAt    time.Time `json:"generatedAt"`
}
