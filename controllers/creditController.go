package controllers

import (
	"mandi-backend/middlewares"
	"mandi-backend/services"
	"mandi-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type creditInput struct {
	CreditID     string `json:"creditId" validate:"max=200"`
	CustomerName string `json:"customerName" validate:"required"`
	CreditAmount int64  `json:"creditAmount" validate:"gte=0"`
	Less         int64  `json:"less" validate:"gte=0"`
	CreatedBy    string `json:"createdBy"`
}

func (h *Handler) CreateCredit(c *fiber.Ctx) error {
	var in creditInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	credit, err := h.Engine.CreateCredit(c.UserContext(), services.NewCredit{
		CreditID:     in.CreditID,
		CustomerName: in.CustomerName,
		CreditAmount: in.CreditAmount,
		Less:         in.Less,
		CreatedBy:    actorOr(c, in.CreatedBy),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(credit)
}

func (h *Handler) GetCredits(c *fiber.Ctx) error {
	credits, err := h.Engine.ListCredits(c.UserContext(), c.Query("customerName"), queryLimit(c, 0))
	if err != nil {
		return err
	}
	return c.JSON(credits)
}

func (h *Handler) GetCredit(c *fiber.Ctx) error {
	credit, err := h.Engine.GetCredit(c.UserContext(), c.Params("creditId"))
	if err != nil {
		return err
	}
	return c.JSON(credit)
}

// UpdateCredit requires modifiedBy in the body.
func (h *Handler) UpdateCredit(c *fiber.Ctx) error {
	var in services.CreditUpdate
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	credit, err := h.Engine.UpdateCredit(c.UserContext(), c.Params("creditId"), in)
	if err != nil {
		return err
	}
	return c.JSON(credit)
}

func (h *Handler) DeleteCredit(c *fiber.Ctx) error {
	credit, err := h.Engine.DeleteCredit(c.UserContext(), c.Params("creditId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "credit deleted", "credit": credit})
}
