package controllers

import (
	"strings"
	"time"

	"mandi-backend/config"
	"mandi-backend/middlewares"
	"mandi-backend/notify"
	"mandi-backend/services"
	"mandi-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler carries what the engine-backed endpoints need.
type Handler struct {
	DB     *gorm.DB
	Engine *services.Engine
	Hub    *notify.Hub
	Log    *logrus.Logger
	Cfg    config.Config
}

const dateLayout = "2006-01-02"

// actorOr returns the body-supplied actor, falling back to the token subject.
func actorOr(c *fiber.Ctx, fromBody string) string {
	if s := strings.TrimSpace(fromBody); s != "" {
		return s
	}
	return middlewares.Actor(c)
}

func queryLimit(c *fiber.Ctx, def int) int {
	n := utils.ParseIntDefault(c.Query("limit"), def)
	if n > 1000 {
		n = 1000
	}
	return n
}

// queryDate parses a YYYY-MM-DD query parameter in the server's zone.
func queryDate(c *fiber.Ctx, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+", expected YYYY-MM-DD")
	}
	return t, nil
}

func queryBool(c *fiber.Ctx, name string) *bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "true", "1", "yes":
		b := true
		return &b
	case "false", "0", "no":
		b := false
		return &b
	}
	return nil
}

func (h *Handler) now() time.Time {
	return time.Now()
}
