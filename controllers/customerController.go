package controllers

import (
	"mandi-backend/middlewares"
	"mandi-backend/reports"
	"mandi-backend/services"
	"mandi-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type customerInput struct {
	CustomerName string `json:"customerName" validate:"required,max=120"`
	PhoneNumber  string `json:"phoneNumber" validate:"max=32"`
	VillageName  string `json:"villageName" validate:"max=120"`
	GroupName    string `json:"groupName" validate:"max=120"`
	CreatedBy    string `json:"createdBy"`
}

func (h *Handler) CreateCustomer(c *fiber.Ctx) error {
	var in customerInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	phone, err := utils.NormalizePhone(in.PhoneNumber, h.Cfg.WhatsAppRegion)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid phoneNumber")
	}

	customer, err := h.Engine.CreateCustomer(c.UserContext(), services.NewCustomer{
		CustomerName: in.CustomerName,
		PhoneNumber:  phone,
		VillageName:  in.VillageName,
		GroupName:    in.GroupName,
		CreatedBy:    actorOr(c, in.CreatedBy),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func (h *Handler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.Engine.ListCustomers(c.UserContext(), c.Query("groupName"))
	if err != nil {
		return err
	}
	return c.JSON(customers)
}

// GetCustomer returns the customer together with its ledger.
func (h *Handler) GetCustomer(c *fiber.Ctx) error {
	st, err := h.Engine.CustomerStatement(c.UserContext(), c.Params("customerName"))
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (h *Handler) GetCustomerLedger(c *fiber.Ctx) error {
	st, err := h.Engine.CustomerStatement(c.UserContext(), c.Params("customerName"))
	if err != nil {
		return err
	}
	return c.JSON(st.Ledger)
}

func (h *Handler) UpdateCustomer(c *fiber.Ctx) error {
	var in services.CustomerUpdate
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)
	in.ModifiedBy = actorOr(c, in.ModifiedBy)

	if in.PhoneNumber != nil {
		phone, err := utils.NormalizePhone(*in.PhoneNumber, h.Cfg.WhatsAppRegion)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid phoneNumber")
		}
		in.PhoneNumber = &phone
	}

	customer, err := h.Engine.UpdateCustomer(c.UserContext(), c.Params("customerName"), in)
	if err != nil {
		return err
	}
	return c.JSON(customer)
}

// DeleteCustomer is admin only.
func (h *Handler) DeleteCustomer(c *fiber.Ctx) error {
	if err := h.Engine.DeleteCustomer(c.UserContext(), c.Params("customerName")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "customer deleted"})
}

// GetCustomerWhatsApp builds the balance reminder and its wa.me link.
func (h *Handler) GetCustomerWhatsApp(c *fiber.Ctx) error {
	customer, err := h.Engine.GetCustomer(c.UserContext(), c.Params("customerName"))
	if err != nil {
		return err
	}
	msg := reports.BalanceMessage(h.Cfg.BusinessName, *customer, h.now())
	link, err := reports.WhatsAppLink(customer.PhoneNumber, h.Cfg.WhatsAppRegion, msg)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "customer has no valid phone number")
	}
	return c.JSON(fiber.Map{
		"customerName": customer.CustomerName,
		"balance":      customer.Balance,
		"message":      msg,
		"link":         link,
	})
}
