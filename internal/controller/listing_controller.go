package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/subscription"
)

type ListingFeatureInput struct {
	Title  string         `json:"title"`
	Values datatypes.JSON `json:"values"`
}

type ListingInput struct {
	Title       string              `json:"title" validate:"required"`
	Type        model.VehicleType   `json:"type" validate:"required"`
	PricePerDay float64             `json:"price_per_day" validate:"required"`
	Currency    model.Currency      `json:"currency" validate:"required"`
	Description string              `json:"description" validate:"required"`

	// Location fields
	CountryCode   string `json:"country_code" validate:"required"`
	CountryName   string `json:"country_name" validate:"required"`
	StateCode     string `json:"state_code" validate:"required"`
	StateName     string `json:"state_name" validate:"required"`
	City          string `json:"city" validate:"required"`
	PickupAddress string `json:"pickup_address"`

	// Vehicle fields
	Make            string `json:"make"`
	VehicleModel    string `json:"vehicle_model"`
	Year            int    `json:"year"`
	Seats           int    `json:"seats"`
	Mileage         int    `json:"mileage"`
	Transmission    string `json:"transmission"`
	FuelType        string `json:"fuel_type"`
	AirConditioning bool   `json:"air_conditioning"`
	WithDriver      bool   `json:"with_driver"`
	SelfDrive       bool   `json:"self_drive"`

	Features []ListingFeatureInput `json:"extra_features"`
	Images   []string              `json:"images"`
}

// CreateListing publishes a new vehicle listing. The quota middleware has
// already passed, but the plan check runs once more right before the
// write; the two reads are still not atomic, so the quota is a soft limit.
func CreateListing(c *fiber.Ctx) error {
	owner := c.Locals("owner").(*model.Owner)
	input := new(ListingInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if len(input.Images) > 16 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Maximum 16 images allowed",
		})
	}

	count, err := owner.CountListings(database.GetDB())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not count listings",
		})
	}

	if !subscription.CanCreateListing(listingCatalog, owner, count) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You have reached your listing limit. Please upgrade your plan.",
		})
	}

	listing := model.Listing{
		OwnerID:         owner.ID,
		Title:           input.Title,
		Type:            input.Type,
		Status:          model.ListingStatusPending,
		PricePerDay:     input.PricePerDay,
		Currency:        input.Currency,
		Description:     input.Description,
		CountryCode:     input.CountryCode,
		CountryName:     input.CountryName,
		StateCode:       input.StateCode,
		StateName:       input.StateName,
		City:            input.City,
		PickupAddress:   input.PickupAddress,
		Make:            input.Make,
		VehicleModel:    input.VehicleModel,
		Year:            input.Year,
		Seats:           input.Seats,
		Mileage:         input.Mileage,
		Transmission:    input.Transmission,
		FuelType:        input.FuelType,
		AirConditioning: input.AirConditioning,
		WithDriver:      input.WithDriver,
		SelfDrive:       input.SelfDrive,
	}

	tx := database.GetDB().Begin()

	if err := tx.Create(&listing).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create listing",
		})
	}

	for i, feature := range input.Features {
		row := model.ListingFeature{
			ListingID: listing.ID,
			Title:     feature.Title,
			Values:    feature.Values,
			Order:     i,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save features",
			})
		}
	}

	for i, imageURL := range input.Images {
		image := model.ListingImage{
			ListingID: listing.ID,
			URL:       imageURL,
			Order:     i,
			IsCover:   i == 0,
		}
		if err := tx.Create(&image).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save images",
			})
		}
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete the listing creation",
		})
	}

	// One-shot threshold check on the new count. It fires again on every
	// creation past 80%, not just the first crossing.
	key := plan.Key(owner.CurrentPlan)
	if subscription.NearLimit(listingCatalog, key, count+1) && adminSink != nil {
		message := fmt.Sprintf("%s is at %d of %d listings on the %s plan",
			owner.BusinessName, count+1, listingCatalog.QuotaFor(key), owner.CurrentPlan)
		if err := adminSink.Append(message, model.EventLimitWarning); err != nil {
			log.Printf("Could not record limit_warning notification: %v", err)
		}
	}

	database.GetDB().Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("listing_images.order ASC")
	}).Preload("Features").First(&listing, listing.ID)

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// UpdateListing edits a listing. Edits put the listing back into the
// moderation queue.
func UpdateListing(c *fiber.Ctx) error {
	owner := c.Locals("owner").(*model.Owner)
	id := c.Params("id")
	input := new(ListingInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if len(input.Images) > 16 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Maximum 16 images allowed",
		})
	}

	var listing model.Listing
	if err := database.GetDB().First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	if listing.OwnerID != owner.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to update this listing",
		})
	}

	tx := database.GetDB().Begin()

	listing.Title = input.Title
	listing.Type = input.Type
	listing.Status = model.ListingStatusPending
	listing.PricePerDay = input.PricePerDay
	listing.Currency = input.Currency
	listing.Description = input.Description
	listing.CountryCode = input.CountryCode
	listing.CountryName = input.CountryName
	listing.StateCode = input.StateCode
	listing.StateName = input.StateName
	listing.City = input.City
	listing.PickupAddress = input.PickupAddress
	listing.Make = input.Make
	listing.VehicleModel = input.VehicleModel
	listing.Year = input.Year
	listing.Seats = input.Seats
	listing.Mileage = input.Mileage
	listing.Transmission = input.Transmission
	listing.FuelType = input.FuelType
	listing.AirConditioning = input.AirConditioning
	listing.WithDriver = input.WithDriver
	listing.SelfDrive = input.SelfDrive

	if err := tx.Save(&listing).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update listing",
		})
	}

	if err := tx.Where("listing_id = ?", listing.ID).Delete(&model.ListingImage{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update images",
		})
	}

	for i, imageURL := range input.Images {
		image := model.ListingImage{
			ListingID: listing.ID,
			URL:       imageURL,
			Order:     i,
			IsCover:   i == 0,
		}
		if err := tx.Create(&image).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save new images",
			})
		}
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete the update",
		})
	}

	database.GetDB().Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("listing_images.order ASC")
	}).Preload("Features").First(&listing, listing.ID)

	return c.JSON(listing)
}

// ListOwnerListings lists an owner's public, approved listings.
func ListOwnerListings(c *fiber.Ctx) error {
	username := c.Params("username")

	var user model.User
	if err := database.GetDB().Preload("Owner").Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Owner not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch owner",
		})
	}

	if user.Owner == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Owner not found",
		})
	}

	var listings []model.Listing
	if err := database.GetDB().
		Where("owner_id = ? AND status = ?", user.Owner.ID, model.ListingStatusApproved).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		}).
		Order("created_at desc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listings",
		})
	}

	return c.JSON(fiber.Map{
		"owner": fiber.Map{
			"username":      user.Username,
			"business_name": user.Owner.BusinessName,
			"logo_url":      user.Owner.LogoURL,
		},
		"listings": listings,
	})
}

// GetListingBySlug returns one approved listing by owner username + slug.
func GetListingBySlug(c *fiber.Ctx) error {
	username := c.Params("username")
	listingSlug := c.Params("listing_slug")

	var user model.User
	if err := database.GetDB().Preload("Owner").Where("username = ?", username).First(&user).Error; err != nil || user.Owner == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Owner not found",
		})
	}

	var listing model.Listing
	if err := database.GetDB().Where("owner_id = ? AND status = ? AND slug = ?",
		user.Owner.ID, model.ListingStatusApproved, listingSlug).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		}).
		Preload("Features").
		First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listing",
		})
	}

	return c.JSON(fiber.Map{
		"owner": fiber.Map{
			"username":      user.Username,
			"business_name": user.Owner.BusinessName,
		},
		"listing": listing,
	})
}

// BrowseListings is the public marketplace search across all owners.
func BrowseListings(c *fiber.Ctx) error {
	query := database.GetDB().
		Where("status = ?", model.ListingStatusApproved).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		})

	if vehicleType := c.Query("type"); vehicleType != "" {
		query = query.Where("type = ?", vehicleType)
	}
	if stateCode := c.Query("state"); stateCode != "" {
		query = query.Where("state_code = ?", stateCode)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if withDriver := c.Query("with_driver"); withDriver != "" {
		query = query.Where("with_driver = ?", withDriver == "true")
	}

	var listings []model.Listing
	if err := query.Order("created_at desc").Limit(100).Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listings",
		})
	}

	return c.JSON(listings)
}

// ListMyListings lists the authenticated owner's listings in any status.
func ListMyListings(c *fiber.Ctx) error {
	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required",
		})
	}

	var listings []model.Listing
	if err := database.GetDB().Where("owner_id = ?", owner.ID).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		}).
		Order("created_at desc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listings",
		})
	}

	return c.JSON(listings)
}

// DeleteListing removes a listing; the freed quota slot becomes available
// on the next creation check.
func DeleteListing(c *fiber.Ctx) error {
	owner := c.Locals("owner").(*model.Owner)
	id := c.Params("id")

	var listing model.Listing
	if err := database.GetDB().First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	if listing.OwnerID != owner.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to delete this listing",
		})
	}

	tx := database.GetDB().Begin()

	if err := tx.Delete(&listing).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete listing",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete deletion",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
