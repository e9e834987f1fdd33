package dto

// CreateNoticeRequest publishes a notice
type CreateNoticeRequest struct {
	Title     string `json:"title" binding:"required,max=200" example:"Parent-teacher meeting"`
	Body      string `json:"body" binding:"required,max=5000" example:"The meeting is on Friday at 10:00 in the main hall."`
	Audience  string `json:"audience" binding:"required,oneof=ALL STAFF PARENTS STUDENTS" example:"PARENTS"`
	SendEmail bool   `json:"sendEmail" example:"true"`
	SendSMS   bool   `json:"sendSms" example:"false"`
}

// NoticeFilterRequest represents notice list filters
type NoticeFilterRequest struct {
	PageQuery
}
