package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/email"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/subscription"
)

type CreateInquiryInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// CreateInquiry is the public contact form on a listing page. The form is
// a plan feature, so the listing owner's plan is checked before anything
// is stored.
func CreateInquiry(c *fiber.Ctx) error {
	slugParam := c.Params("slug")

	var listing model.Listing
	if err := database.GetDB().
		Where("slug = ? AND status = ?", slugParam, model.ListingStatusApproved).
		Preload("Owner").
		First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	if !subscription.CanUseFeature(plan.Key(listing.Owner.CurrentPlan), subscription.InquiryForm) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "This listing does not accept inquiries",
		})
	}

	input := new(CreateInquiryInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Name == "" || input.Email == "" || input.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, email and message are required",
		})
	}

	inquiry := model.Inquiry{
		ListingID: listing.ID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Message:   input.Message,
		Status:    string(model.InquiryStatusNew),
	}

	if err := database.GetDB().Create(&inquiry).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create inquiry",
		})
	}

	if email.GlobalEmailService != nil {
		var user model.User
		if err := database.GetDB().First(&user, listing.Owner.UserID).Error; err == nil {
			if err := email.GlobalEmailService.SendInquiryNotificationEmail(email.InquiryNotificationData{
				OwnerEmail:   user.Email,
				OwnerName:    listing.Owner.BusinessName,
				ListingTitle: listing.Title,
				SenderName:   input.Name,
				SenderEmail:  input.Email,
				SenderPhone:  input.Phone,
				Message:      input.Message,
			}); err != nil {
				log.Printf("Could not send inquiry notification email: %v", err)
			}
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Inquiry sent successfully",
	})
}

// GetMyInquiries lists inquiries across all of the owner's listings.
func GetMyInquiries(c *fiber.Ctx) error {
	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required",
		})
	}

	query := database.GetDB().
		Joins("JOIN listings ON listings.id = inquiries.listing_id").
		Where("listings.owner_id = ?", owner.ID).
		Preload("Listing")

	if status := c.Query("status"); status != "" {
		query = query.Where("inquiries.status = ?", status)
	}

	var inquiries []model.Inquiry
	if err := query.Order("inquiries.created_at desc").Find(&inquiries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch inquiries",
		})
	}

	return c.JSON(inquiries)
}

// ownedInquiry loads an inquiry and verifies the caller owns its listing.
func ownedInquiry(c *fiber.Ctx) (*model.Inquiry, error) {
	owner, err := currentOwner(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "Owner profile required")
	}

	var inquiry model.Inquiry
	if err := database.GetDB().
		Joins("JOIN listings ON listings.id = inquiries.listing_id").
		Where("inquiries.id = ? AND listings.owner_id = ?", c.Params("id"), owner.ID).
		First(&inquiry).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Inquiry not found")
	}

	return &inquiry, nil
}

type UpdateInquiryStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func UpdateInquiryStatus(c *fiber.Ctx) error {
	inquiry, err := ownedInquiry(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	input := new(UpdateInquiryStatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	switch model.InquiryStatus(input.Status) {
	case model.InquiryStatusNew, model.InquiryStatusRead, model.InquiryStatusContacted,
		model.InquiryStatusNoResponse, model.InquiryStatusCompleted:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown inquiry status",
		})
	}

	updates := map[string]interface{}{
		"status": input.Status,
	}
	if model.InquiryStatus(input.Status) == model.InquiryStatusContacted && inquiry.ContactedAt == nil {
		now := time.Now()
		updates["contacted_at"] = &now
	}

	if err := database.GetDB().Model(inquiry).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update inquiry",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Inquiry updated",
	})
}

func MarkInquiryAsRead(c *fiber.Ctx) error {
	inquiry, err := ownedInquiry(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	if err := database.GetDB().Model(inquiry).Update("read_status", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update inquiry",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
