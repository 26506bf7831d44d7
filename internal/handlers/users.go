package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/routegenius/logistics-backend/internal/middleware"
	"github.com/routegenius/logistics-backend/internal/models"
	"github.com/routegenius/logistics-backend/internal/services"
)

type AdminCreateUserInput struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
}

type UpdateUserInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  string  `json:"password"`
	Role      *string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
}

func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid id parameter"})
		return 0, false
	}
	return uint(id), true
}

// GetAllUsers lists every account. Admin only.
func GetAllUsers(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := users.GetAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		responses := make([]gin.H, 0, len(all))
		for i := range all {
			responses = append(responses, userResponse(&all[i]))
		}
		c.JSON(200, responses)
	}
}

// CreateUserByAdmin creates an account with a caller-chosen role.
func CreateUserByAdmin(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AdminCreateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		role := models.RoleUser
		if input.Role != "" {
			role = models.Role(input.Role)
		}

		user := models.User{
			Username:  input.Username,
			Email:     input.Email,
			Password:  input.Password,
			FirstName: input.FirstName,
			LastName:  input.LastName,
		}

		created, err := users.CreateByAdmin(c.Request.Context(), &user, role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, userResponse(created))
	}
}

// GetUser returns one account. Self or admin.
func GetUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if id != c.GetUint("userId") && !middleware.IsAdmin(c) {
			c.JSON(403, gin.H{"error": "You do not have permission to view this user"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, userResponse(user))
	}
}

// UpdateUser mutates an account. Self or admin; role changes are admin only.
func UpdateUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if id != c.GetUint("userId") && !middleware.IsAdmin(c) {
			c.JSON(403, gin.H{"error": "You do not have permission to update this user"})
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		patch := services.UserUpdate{
			Username:  input.Username,
			Email:     input.Email,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Password:  input.Password,
		}

		if input.Role != nil {
			if !middleware.IsAdmin(c) {
				c.JSON(403, gin.H{"error": "Only admin can change user roles."})
				return
			}
			role := models.Role(*input.Role)
			patch.Role = &role
		}

		updated, err := users.Update(c.Request.Context(), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, userResponse(updated))
	}
}

// DeleteUser removes an account. Admin only.
func DeleteUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := users.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(204)
	}
}
