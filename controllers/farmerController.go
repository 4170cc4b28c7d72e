package controllers

import (
	"errors"

	"mandi-backend/database"
	"mandi-backend/middlewares"
	"mandi-backend/models"
	"mandi-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type farmerInput struct {
	FarmerName  string `json:"farmerName" validate:"required,max=120"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
	VillageName string `json:"villageName" validate:"max=120"`
	CreatedBy   string `json:"createdBy"`
}

type farmerUpdate struct {
	PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	VillageName *string `json:"villageName,omitempty" validate:"omitempty,max=120"`
	ModifiedBy  string  `json:"modifiedBy"`
}

var farmerColumns = map[string]string{
	"phoneNumber": "phone_number",
	"villageName": "village_name",
}

func CreateFarmer(c *fiber.Ctx) error {
	var in farmerInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	farmer := models.Farmer{
		FarmerName:  in.FarmerName,
		PhoneNumber: in.PhoneNumber,
		VillageName: in.VillageName,
		CreatedBy:   actorOr(c, in.CreatedBy),
	}
	farmer.ModifiedBy = farmer.CreatedBy
	if err := database.GetDB(c).Create(&farmer).Error; err != nil {
		return masterDataError(err, "farmer")
	}
	return c.Status(fiber.StatusCreated).JSON(farmer)
}

func GetFarmers(c *fiber.Ctx) error {
	var farmers []models.Farmer
	q := database.GetDB(c).Order("farmer_name asc")
	if v := c.Query("villageName"); v != "" {
		q = q.Where("village_name = ?", v)
	}
	if err := q.Find(&farmers).Error; err != nil {
		return err
	}
	return c.JSON(farmers)
}

func GetFarmer(c *fiber.Ctx) error {
	var farmer models.Farmer
	if err := database.GetDB(c).Where("farmer_name = ?", c.Params("farmerName")).First(&farmer).Error; err != nil {
		return masterDataError(err, "farmer")
	}
	return c.JSON(farmer)
}

func UpdateFarmer(c *fiber.Ctx) error {
	var in farmerUpdate
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db := database.GetDB(c)
	var farmer models.Farmer
	if err := db.Where("farmer_name = ?", c.Params("farmerName")).First(&farmer).Error; err != nil {
		return masterDataError(err, "farmer")
	}
	cols := utils.PatchColumns(&in, farmerColumns)
	cols["modified_by"] = actorOr(c, in.ModifiedBy)
	if err := db.Model(&farmer).Updates(cols).Error; err != nil {
		return err
	}
	if err := db.First(&farmer, farmer.ID).Error; err != nil {
		return err
	}
	return c.JSON(farmer)
}

func DeleteFarmer(c *fiber.Ctx) error {
	res := database.GetDB(c).Where("farmer_name = ?", c.Params("farmerName")).Delete(&models.Farmer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "farmer not found")
	}
	return c.JSON(fiber.Map{"message": "farmer deleted"})
}

type vegetableInput struct {
	VegetableName string `json:"vegetableName" validate:"required,max=120"`
	CreatedBy     string `json:"createdBy"`
}

func CreateVegetable(c *fiber.Ctx) error {
	var in vegetableInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	veg := models.Vegetable{VegetableName: in.VegetableName, CreatedBy: actorOr(c, in.CreatedBy)}
	if err := database.GetDB(c).Create(&veg).Error; err != nil {
		return masterDataError(err, "vegetable")
	}
	return c.Status(fiber.StatusCreated).JSON(veg)
}

func GetVegetables(c *fiber.Ctx) error {
	var vegs []models.Vegetable
	if err := database.GetDB(c).Order("vegetable_name asc").Find(&vegs).Error; err != nil {
		return err
	}
	return c.JSON(vegs)
}

func DeleteVegetable(c *fiber.Ctx) error {
	res := database.GetDB(c).Where("vegetable_name = ?", c.Params("vegetableName")).Delete(&models.Vegetable{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "vegetable not found")
	}
	return c.JSON(fiber.Map{"message": "vegetable deleted"})
}

type groupInput struct {
	GroupName string `json:"groupName" validate:"required,max=120"`
	CreatedBy string `json:"createdBy"`
}

func CreateGroup(c *fiber.Ctx) error {
	var in groupInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	group := models.Group{GroupName: in.GroupName, CreatedBy: actorOr(c, in.CreatedBy)}
	if err := database.GetDB(c).Create(&group).Error; err != nil {
		return masterDataError(err, "group")
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func GetGroups(c *fiber.Ctx) error {
	var groups []models.Group
	if err := database.GetDB(c).Order("group_name asc").Find(&groups).Error; err != nil {
		return err
	}
	return c.JSON(groups)
}

func DeleteGroup(c *fiber.Ctx) error {
	res := database.GetDB(c).Where("group_name = ?", c.Params("groupName")).Delete(&models.Group{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "group not found")
	}
	return c.JSON(fiber.Map{"message": "group deleted"})
}

func masterDataError(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.NewError(fiber.StatusConflict, what+" already exists")
	}
	return err
}
