package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/routegenius/logistics-backend/internal/models"
	"github.com/routegenius/logistics-backend/internal/services"
	"github.com/routegenius/logistics-backend/pkg/utils"
)

type RegisterInput struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // username or email
	Password   string `json:"password" binding:"required"`
}

func Register(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user := models.User{
			Username:  input.Username,
			Email:     input.Email,
			Password:  input.Password,
			FirstName: input.FirstName,
			LastName:  input.LastName,
		}

		created, err := users.Register(c.Request.Context(), &user)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, gin.H{
			"message": "User registered successfully!",
			"user": gin.H{
				"id":        created.ID,
				"username":  created.Username,
				"email":     created.Email,
				"firstName": created.FirstName,
				"lastName":  created.LastName,
				"role":      created.Role,
			},
		})
	}
}

func Login(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user, err := users.FindByIdentifier(c.Request.Context(), input.Identifier)
		if err != nil {
			c.JSON(401, gin.H{"error": "Incorrect username/email or password"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Incorrect username/email or password"})
			return
		}

		token, err := utils.GenerateToken(user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token":    token,
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		})
	}
}
