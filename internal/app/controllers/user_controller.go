package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// avatarFormField is the multipart field carrying the avatar image
const avatarFormField = "avatar"

// UserController handles account administration and avatars
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers lists accounts
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter" Enums(ADMIN,TEACHER,STAFF,PARENT,STUDENT)
// @Param search query string false "Name or email search"
// @Param isActive query bool false "Active filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}} "Users retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid filters"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	var req dto.UserFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.userService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Users retrieved")
}

// GetUser returns one account
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.UserResponse} "User retrieved"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	user, err := c.userService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user, "User retrieved")
}

// UpdateUser changes names, phone or the active flag of an account
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=dto.UserResponse} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [patch]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user, "User updated")
}

// DeleteUser soft deletes an account and revokes its sessions
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.StructuredResponse "User deleted"
// @Failure 400 {object} dto.ErrorResponse "Cannot delete yourself"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.userService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "User deleted")
}

// UploadAvatar replaces the caller's avatar
// @Summary Upload avatar
// @Description Accepts jpeg, png or webp up to 5MB. The image is cropped to a square and stored as WebP.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} dto.StructuredResponse{data=dto.AvatarResponse} "Avatar updated"
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported image"
// @Failure 413 {object} dto.ErrorResponse "Image too large"
// @Router /users/me/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile(avatarFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.HandleAPIError(ctx, apperrors.ErrFileTooLarge)
			return
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Avatar file is required").WithField(avatarFormField)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if fileHeader.Size > services.MaxAvatarBytes {
		middleware.HandleAPIError(ctx, apperrors.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarBytes+1))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.userService.UploadAvatar(ctx.Request.Context(), middleware.GetActor(ctx), data)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp, "Avatar updated")
}

// DeleteAvatar removes the caller's avatar
// @Summary Delete avatar
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse "Avatar removed"
// @Router /users/me/avatar [delete]
func (c *UserController) DeleteAvatar(ctx *gin.Context) {
	if err := c.userService.DeleteAvatar(ctx.Request.Context(), middleware.GetActor(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Avatar removed")
}
