package controllers

import (
	"mandi-backend/middlewares"
	"mandi-backend/models"
	"mandi-backend/services"
	"mandi-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type stockInput struct {
	LotName       string               `json:"lotName" validate:"max=160"`
	FarmerName    string               `json:"farmerName" validate:"required,max=120"`
	VegetableName string               `json:"vegetableName" validate:"required,max=120"`
	NumberOfBags  int                  `json:"numberOfBags" validate:"required,gt=0"`
	Amount        int64                `json:"amount" validate:"gte=0"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=due complete"`
	CreatedBy     string               `json:"createdBy"`
}

func (h *Handler) CreateStock(c *fiber.Ctx) error {
	var in stockInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	lot, err := h.Engine.CreateStock(c.UserContext(), services.NewStock{
		LotName:       in.LotName,
		FarmerName:    in.FarmerName,
		VegetableName: in.VegetableName,
		NumberOfBags:  in.NumberOfBags,
		Amount:        in.Amount,
		PaymentStatus: in.PaymentStatus,
		CreatedBy:     actorOr(c, in.CreatedBy),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(lot)
}

func (h *Handler) GetStocks(c *fiber.Ctx) error {
	f := services.StockFilter{
		FarmerName:    c.Query("farmerName"),
		VegetableName: c.Query("vegetableName"),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
	}
	if b := queryBool(c, "available"); b != nil {
		f.AvailableOnly = *b
	}
	lots, err := h.Engine.ListStocks(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(lots)
}

func (h *Handler) GetStock(c *fiber.Ctx) error {
	lot, err := h.Engine.GetStock(c.UserContext(), c.Params("lotName"))
	if err != nil {
		return err
	}
	return c.JSON(lot)
}

// UpdateStock moves remainingBags along with numberOfBags.
func (h *Handler) UpdateStock(c *fiber.Ctx) error {
	var in services.StockUpdate
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)
	in.ModifiedBy = actorOr(c, in.ModifiedBy)

	lot, err := h.Engine.UpdateStock(c.UserContext(), c.Params("lotName"), in)
	if err != nil {
		return err
	}
	return c.JSON(lot)
}

func (h *Handler) DeleteStock(c *fiber.Ctx) error {
	if err := h.Engine.DeleteStock(c.UserContext(), c.Params("lotName")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "stock deleted"})
}
