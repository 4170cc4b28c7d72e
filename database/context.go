package database

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetDB returns the request's transaction (middlewares.RequestTx) when one is
// open, else the shared handle bound to the request context.
func GetDB(c *fiber.Ctx) *gorm.DB {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx
		}
	}
	return DB.WithContext(c.UserContext())
}
