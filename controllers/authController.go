package controllers

import (
	"errors"
	"strings"

	"mandi-backend/middlewares"
	"mandi-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	var user models.User
	err := h.DB.WithContext(c.UserContext()).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid credentials"})
		}
		return err
	}
	if err := user.ComparePassword(req.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid credentials"})
	}

	token, err := middlewares.GenerateJWT(user.Username, user.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.Id,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin operator"`
}

// CreateUser is admin only.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = models.RoleOperator
	}

	user := models.User{Username: strings.TrimSpace(req.Username), Role: req.Role}
	if err := user.SetPassword(req.Password); err != nil {
		return err
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "username already exists")
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
