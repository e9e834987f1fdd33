package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/controllers"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/websocket"
)

// Controllers groups every HTTP controller mounted under /api/v1
type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Staff     *controllers.StaffController
	Parent    *controllers.ParentController
	Student   *controllers.StudentController
	Room      *controllers.RoomController
	Class     *controllers.ClassController
	LeaveType *controllers.LeaveTypeController
	Fee       *controllers.FeeController
	Timetable *controllers.TimetableController
	Notice    *controllers.NoticeController
	Admin     *controllers.AdminController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c *Controllers,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.IPRateLimiter,
	wsHandler *websocket.Handler,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/forgot-password", loginLimiter.Middleware(), c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	session := authenticated.Group("/auth")
	{
		session.POST("/logout", c.Auth.Logout)
		session.POST("/logout-all", c.Auth.LogoutAll)
		session.GET("/me", c.Auth.Me)
		session.POST("/change-password", c.Auth.ChangePassword)
	}

	users := authenticated.Group("/users")
	{
		users.POST("/me/avatar", c.User.UploadAvatar)
		users.DELETE("/me/avatar", c.User.DeleteAvatar)

		users.GET("", adminOnly, c.User.ListUsers)
		users.GET("/:id", adminOnly, c.User.GetUser)
		users.PATCH("/:id", adminOnly, c.User.UpdateUser)
		users.DELETE("/:id", adminOnly, c.User.DeleteUser)
	}

	// Reads on a single staff member, parent or student are checked per record in the service
	staff := authenticated.Group("/staff")
	{
		staff.GET("/:id", c.Staff.GetStaff)
		staff.GET("/:id/salary", c.Staff.EffectiveSalary)
		staff.GET("/:id/salary-history", c.Staff.SalaryHistory)

		staff.POST("", adminOnly, c.Staff.CreateStaff)
		staff.GET("", adminOnly, c.Staff.ListStaff)
		staff.PATCH("/:id", adminOnly, c.Staff.UpdateStaff)
		staff.DELETE("/:id", adminOnly, c.Staff.DeleteStaff)
		staff.PATCH("/:id/salary", adminOnly, c.Staff.UpdateSalary)
	}

	parents := authenticated.Group("/parents")
	{
		parents.GET("/:id", c.Parent.GetParent)
		parents.GET("/:id/students", c.Parent.ListStudents)

		parents.POST("", adminOnly, c.Parent.CreateParent)
		parents.GET("", adminOnly, c.Parent.ListParents)
		parents.PATCH("/:id", adminOnly, c.Parent.UpdateParent)
		parents.DELETE("/:id", adminOnly, c.Parent.DeleteParent)
		parents.POST("/:id/students", adminOnly, c.Parent.LinkStudent)
		parents.DELETE("/:id/students/:studentId", adminOnly, c.Parent.UnlinkStudent)
	}

	students := authenticated.Group("/students")
	{
		students.GET("/:id", c.Student.GetStudent)
		students.GET("/:id/parents", c.Student.ListParents)
		students.GET("/:id/fees", c.Student.Fees)

		students.GET("", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleTeacher), c.Student.ListStudents)
		students.POST("", adminOnly, c.Student.CreateStudent)
		students.PATCH("/:id", adminOnly, c.Student.UpdateStudent)
		students.DELETE("/:id", adminOnly, c.Student.DeleteStudent)
	}

	rooms := authenticated.Group("/rooms")
	{
		rooms.GET("", c.Room.ListRooms)
		rooms.GET("/:id", c.Room.GetRoom)

		rooms.POST("", adminOnly, c.Room.CreateRoom)
		rooms.PATCH("/:id", adminOnly, c.Room.UpdateRoom)
		rooms.DELETE("/:id", adminOnly, c.Room.DeleteRoom)

		rooms.GET("/:id/assets", adminOnly, c.Room.ListAssets)
		rooms.POST("/:id/assets", adminOnly, c.Room.CreateAsset)
		rooms.PATCH("/:id/assets/:assetId", adminOnly, c.Room.UpdateAsset)
		rooms.DELETE("/:id/assets/:assetId", adminOnly, c.Room.DeleteAsset)
	}

	classes := authenticated.Group("/classes")
	{
		classes.GET("", c.Class.ListClasses)
		classes.GET("/:id", c.Class.GetClass)
		classes.GET("/:id/students", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleTeacher), c.Class.ListStudents)

		classes.POST("", adminOnly, c.Class.CreateClass)
		classes.PATCH("/:id", adminOnly, c.Class.UpdateClass)
		classes.DELETE("/:id", adminOnly, c.Class.DeleteClass)
	}

	leaveTypes := authenticated.Group("/leave-types")
	{
		leaveTypes.GET("", c.LeaveType.ListLeaveTypes)
		leaveTypes.GET("/:id", c.LeaveType.GetLeaveType)

		leaveTypes.POST("", adminOnly, c.LeaveType.CreateLeaveType)
		leaveTypes.PATCH("/:id", adminOnly, c.LeaveType.UpdateLeaveType)
		leaveTypes.DELETE("/:id", adminOnly, c.LeaveType.DeleteLeaveType)
	}

	fees := authenticated.Group("/fee-structures", adminOnly)
	{
		fees.GET("", c.Fee.ListFeeStructures)
		fees.GET("/:id", c.Fee.GetFeeStructure)
		fees.POST("", c.Fee.CreateFeeStructure)
		fees.PATCH("/:id", c.Fee.UpdateFeeStructure)
		fees.DELETE("/:id", c.Fee.DeleteFeeStructure)
	}

	timetable := authenticated.Group("/timetable")
	{
		timetable.GET("/classes/:id", c.Timetable.ClassTimetable)
		timetable.GET("/teachers/:id", c.Timetable.TeacherTimetable)
		timetable.GET("/rooms/:id", c.Timetable.RoomTimetable)

		timetable.POST("", adminOnly, c.Timetable.CreateEntry)
		timetable.PATCH("/:id", adminOnly, c.Timetable.UpdateEntry)
		timetable.DELETE("/:id", adminOnly, c.Timetable.DeleteEntry)
	}

	notices := authenticated.Group("/notices")
	{
		notices.GET("", c.Notice.ListNotices)
		notices.GET("/ws", wsHandler.HandleConnection)

		notices.POST("", adminOnly, c.Notice.PublishNotice)
		notices.DELETE("/:id", adminOnly, c.Notice.DeleteNotice)
	}

	authenticated.GET("/audit-logs", adminOnly, c.Admin.ListAuditLogs)
	authenticated.GET("/dashboard/stats", adminOnly, c.Admin.DashboardStats)
}
