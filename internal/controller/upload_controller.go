package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/utils/storage"
	"orangerides_backend/pkg/utils/validation"
)

// UploadListingImage stores a photo for a listing the caller owns. The
// ownership and image-limit checks run in middleware before this handler.
func UploadListingImage(c *fiber.Ctx) error {
	owner := c.Locals("owner").(*model.Owner)

	listingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image file provided",
		})
	}

	if err := validation.ValidateImage(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	url, err := storage.UploadListingImage(file, owner.ID, uint(listingID))
	if err != nil {
		log.Printf("Could not upload listing image: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload image",
		})
	}

	var imageCount int64
	database.GetDB().Model(&model.ListingImage{}).
		Where("listing_id = ?", listingID).
		Count(&imageCount)

	image := model.ListingImage{
		ListingID: uint(listingID),
		URL:       url,
		IsCover:   imageCount == 0,
		Order:     int(imageCount),
	}

	if err := database.GetDB().Create(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save image record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(image)
}

// DeleteUploadedImage removes a photo from both storage and the database.
func DeleteUploadedImage(c *fiber.Ctx) error {
	owner := c.Locals("owner").(*model.Owner)

	var image model.ListingImage
	if err := database.GetDB().
		Joins("JOIN listings ON listings.id = listing_images.listing_id").
		Where("listing_images.id = ? AND listings.owner_id = ?", c.Params("image_id"), owner.ID).
		First(&image).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}

	if err := storage.DeleteListingImage(image.URL); err != nil {
		log.Printf("Could not delete image from storage: %v", err)
	}

	if err := database.GetDB().Delete(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete image",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
