package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGinValidators(); err != nil {
		panic(err)
	}
}

// withActor stands in for JWTAuth
func withActor(userID int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyRoleType, string(role))
		c.Next()
	}
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

type fakeRoomService struct {
	services.RoomService

	created   *dto.CreateRoomRequest
	createdBy services.Actor
	deleteErr error
	deleted   []int64
}

func (f *fakeRoomService) Create(_ context.Context, actor services.Actor, req *dto.CreateRoomRequest) (*models.Room, error) {
	f.created, f.createdBy = req, actor
	return &models.Room{ID: 11, RoomNumber: strings.ToUpper(req.RoomNumber), Name: req.Name, RoomType: req.RoomType}, nil
}

func (f *fakeRoomService) Get(_ context.Context, id int64) (*models.Room, error) {
	if id != 11 {
		return nil, apperrors.ErrRoomNotFound
	}
	return &models.Room{ID: 11, RoomNumber: "B-204"}, nil
}

func (f *fakeRoomService) Delete(_ context.Context, _ services.Actor, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newRoomRouter(svc services.RoomService) *gin.Engine {
	c := NewRoomController(svc)
	r := gin.New()
	rooms := r.Group("/rooms", withActor(1, models.RoleAdmin))
	rooms.POST("", c.CreateRoom)
	rooms.GET("/:id", c.GetRoom)
	rooms.DELETE("/:id", c.DeleteRoom)
	return r
}

func TestRoomController_Create(t *testing.T) {
	svc := &fakeRoomService{}
	r := newRoomRouter(svc)

	w, env := do(t, r, http.MethodPost, "/rooms", `{"roomNumber":"b-204","name":"Physics Lab","roomType":"LAB","capacity":40}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Room created", env.Message)

	var room models.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.Equal(t, "B-204", room.RoomNumber)

	require.NotNil(t, svc.created)
	assert.Equal(t, int64(1), svc.createdBy.UserID)
	assert.Equal(t, models.RoleAdmin, svc.createdBy.Role)
}

func TestRoomController_CreateValidation(t *testing.T) {
	svc := &fakeRoomService{}
	r := newRoomRouter(svc)

	w, env := do(t, r, http.MethodPost, "/rooms", `{"roomNumber":"B 204","name":"Lab","roomType":"GARAGE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
	assert.Nil(t, svc.created)
}

func TestRoomController_Get(t *testing.T) {
	r := newRoomRouter(&fakeRoomService{})

	w, _ := do(t, r, http.MethodGet, "/rooms/11", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodGet, "/rooms/12", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, env.Error.Code)

	for _, bad := range []string{"abc", "0", "-3"} {
		w, env = do(t, r, http.MethodGet, "/rooms/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "id", env.Error.Field)
	}
}

func TestRoomController_DeleteConflict(t *testing.T) {
	svc := &fakeRoomService{deleteErr: apperrors.ErrRoomHasActiveClasses}
	r := newRoomRouter(svc)

	w, env := do(t, r, http.MethodDelete, "/rooms/11", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeConflict, env.Error.Code)

	svc.deleteErr = nil
	w, env = do(t, r, http.MethodDelete, "/rooms/11", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Room deleted", env.Message)
	assert.Equal(t, []int64{11}, svc.deleted)
}

type fakeSalaryService struct {
	services.StaffSalaryService

	date  string
	actor services.Actor
}

func (f *fakeSalaryService) EffectiveSalary(_ context.Context, actor services.Actor, staffID int64, date string) (*dto.EffectiveSalaryResponse, error) {
	f.date, f.actor = date, actor
	if date == "2020-01-01" {
		return nil, apperrors.ErrSalaryNotEffective
	}
	return &dto.EffectiveSalaryResponse{StaffID: staffID, Date: date, Salary: 5000000, Formatted: "50,000.00", Source: dto.SalarySourceHistory}, nil
}

func TestStaffController_EffectiveSalary(t *testing.T) {
	salary := &fakeSalaryService{}
	c := NewStaffController(nil, salary)
	r := gin.New()
	r.GET("/staff/:id/salary", withActor(40, models.RoleTeacher), c.EffectiveSalary)

	w, env := do(t, r, http.MethodGet, "/staff/7/salary?date=2025-08-01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-08-01", salary.date)
	assert.Equal(t, int64(40), salary.actor.UserID)

	var resp dto.EffectiveSalaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, int64(7), resp.StaffID)
	assert.Equal(t, "50,000.00", resp.Formatted)

	w, env = do(t, r, http.MethodGet, "/staff/7/salary?date=2020-01-01", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, env.Error.Code)
}
