package controllers

import (
	"mandi-backend/middlewares"
	"mandi-backend/services"
	"mandi-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type saleInput struct {
	SalesID      string          `json:"salesId" validate:"max=200"`
	CustomerName string          `json:"customerName" validate:"required"`
	LotName      string          `json:"lotName" validate:"required"`
	NumberOfKgs  decimal.Decimal `json:"numberOfKgs"`
	PricePerKg   int64           `json:"pricePerKg" validate:"gte=0"`
	PaymentType  string          `json:"paymentType" validate:"required"`
	TotalAmount  int64           `json:"totalAmount" validate:"gte=0"`
	Kuli         bool            `json:"kuli"`
	CreatedBy    string          `json:"createdBy"`
}

type actorInput struct {
	DeletedBy  string `json:"deletedBy"`
	RestoredBy string `json:"restoredBy"`
}

func (h *Handler) CreateSale(c *fiber.Ctx) error {
	var in saleInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	sale, err := h.Engine.CreateSale(c.UserContext(), services.NewSale{
		SalesID:      in.SalesID,
		CustomerName: in.CustomerName,
		LotName:      in.LotName,
		NumberOfKgs:  in.NumberOfKgs,
		PricePerKg:   in.PricePerKg,
		PaymentType:  in.PaymentType,
		TotalAmount:  in.TotalAmount,
		Kuli:         in.Kuli,
		CreatedBy:    actorOr(c, in.CreatedBy),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

func (h *Handler) GetSales(c *fiber.Ctx) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1) // inclusive day
	}
	sales, err := h.Engine.ListSales(c.UserContext(), services.SaleFilter{
		CustomerName: c.Query("customerName"),
		LotName:      c.Query("lotName"),
		PaymentType:  c.Query("paymentType"),
		Kuli:         queryBool(c, "kuli"),
		From:         from,
		To:           to,
		Limit:        queryLimit(c, 0),
	})
	if err != nil {
		return err
	}
	return c.JSON(sales)
}

func (h *Handler) GetSale(c *fiber.Ctx) error {
	sale, err := h.Engine.GetSale(c.UserContext(), c.Params("salesId"))
	if err != nil {
		return err
	}
	return c.JSON(sale)
}

// UpdateSale requires modifiedBy in the body; the token subject is not
// substituted.
func (h *Handler) UpdateSale(c *fiber.Ctx) error {
	var in services.SaleUpdate
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	sale, err := h.Engine.UpdateSale(c.UserContext(), c.Params("salesId"), in)
	if err != nil {
		return err
	}
	return c.JSON(sale)
}

// DeleteSale requires deletedBy in the body.
func (h *Handler) DeleteSale(c *fiber.Ctx) error {
	var in actorInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	archived, err := h.Engine.DeleteSale(c.UserContext(), c.Params("salesId"), in.DeletedBy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "sale deleted", "deletedSale": archived})
}

func (h *Handler) GetDeletedSales(c *fiber.Ctx) error {
	out, err := h.Engine.ListDeletedSales(c.UserContext(), queryLimit(c, 200))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RestoreSale is admin only.
func (h *Handler) RestoreSale(c *fiber.Ctx) error {
	var in actorInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	sale, err := h.Engine.RestoreSale(c.UserContext(), c.Params("salesId"), actorOr(c, in.RestoredBy))
	if err != nil {
		return err
	}
	return c.JSON(sale)
}
