package health

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers reports process liveness and dependency readiness.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
	Env string
}

func (h *Handlers) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "environment": h.Env})
}

func (h *Handlers) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "up"
	}

	if h.Rdb != nil {
		if err := h.Rdb.Ping(c.UserContext()).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"status": checks, "environment": h.Env})
}
