package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RequestTx opens a per-request DB transaction for master-data handlers and
// commits it when the handler succeeds. Handlers reach it through
// database.GetDB(c). Engine-backed routes must not use it: the engine runs
// its own locked transactions.
// Order: run AFTER IsAuthenticatedHeader() and Idempotency().
func RequestTx(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		tx := db.WithContext(c.UserContext()).Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so Fiber's handler can catch
			}
			if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				ErrorLogger.WithFields(logrus.Fields{"path": c.Path()}).WithError(e).Error("tx commit failed")
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
			}
		}()

		c.Locals("tx", tx)
		err = c.Next()
		return err
	}
}
