package controller

import (
	"github.com/gofiber/fiber/v2"

	"orangerides_backend/pkg/utils/location"
)

func GetCountries(c *fiber.Ctx) error {
	return c.JSON(location.GetCountries())
}

func GetStates(c *fiber.Ctx) error {
	states := location.GetStatesByCountry(c.Params("country_code"))
	if states == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No states found for country",
		})
	}
	return c.JSON(states)
}

func GetCities(c *fiber.Ctx) error {
	cities := location.GetCitiesByState(c.Params("state_code"))
	if cities == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No cities found for state",
		})
	}
	return c.JSON(cities)
}
