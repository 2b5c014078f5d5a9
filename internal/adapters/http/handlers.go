package http

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// ---- Fences ----

// ListFencesHandler returns every fence of the caller's merchant.
func ListFencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zones, err := deps.Zones.List(c.UserContext(), merchantID(c))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(zones)
	}
}

// GetFenceHandler returns a single fence.
func GetFenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := fenceID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zone, err := deps.Zones.GetByID(c.UserContext(), merchantID(c), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(zone)
	}
}

// CreateFenceHandler stores a new fence.
func CreateFenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.ZoneInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		zone, err := deps.Zones.Create(c.UserContext(), merchantID(c), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location(fmt.Sprintf("/v1/fences/%d", zone.ID))
		return c.Status(fiber.StatusCreated).JSON(zone)
	}
}

// UpdateFenceHandler replaces a fence. The body is the full representation.
func UpdateFenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := fenceID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var in domain.ZoneInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		zone, err := deps.Zones.Update(c.UserContext(), merchantID(c), id, in)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(zone)
	}
}

// DeleteFenceHandler removes a fence.
func DeleteFenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := fenceID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.Zones.Delete(c.UserContext(), merchantID(c), id); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func fenceID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("fence id must be a positive integer")
	}
	return id, nil
}

// ---- Rules & merchant ----

// ListDeliveryRulesHandler returns all delivery rules.
func ListDeliveryRulesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rules, err := deps.Rules.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(rules)
	}
}

// MerchantConfigHandler returns the merchant's map center.
func MerchantConfigHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg, err := deps.Merchants.GetConfig(c.UserContext(), merchantID(c))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(cfg)
	}
}

// ---- Delivery ----

// DeliveryCheckHandler evaluates ?lng=&lat= against the merchant's fences.
func DeliveryCheckHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		point, err := queryPoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		check, err := deps.Delivery.Check(c.UserContext(), merchantID(c), point)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(check)
	}
}

func queryPoint(c *fiber.Ctx) (domain.Coordinates, error) {
	rawLng, rawLat := c.Query("lng"), c.Query("lat")
	if rawLng == "" || rawLat == "" {
		return domain.Coordinates{}, errors.New("lng and lat are required")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return domain.Coordinates{}, errors.New("lng must be a number")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return domain.Coordinates{}, errors.New("lat must be a number")
	}
	return domain.Coordinates{lng, lat}, nil
}

// ---- Orders ----

// CreateOrderHandler creates an order after checking the delivery range.
func CreateOrderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.CreateOrderInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		order, err := deps.Orders.Create(c.UserContext(), merchantID(c), in)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/orders/" + order.ID)
		return c.Status(fiber.StatusCreated).JSON(order)
	}
}

// GetOrderHandler returns one order of the merchant.
func GetOrderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := deps.Orders.Get(c.UserContext(), merchantID(c), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(order)
	}
}

// ListOrdersHandler returns a filtered, sorted page of orders.
// Query: page, pageSize, userId, status, searchQuery, sortBy, sortDirection.
func ListOrdersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := optionalPositiveInt(c, "page")
		if err != nil {
			return errFromDomain(c, err)
		}
		pageSize, err := optionalPositiveInt(c, "pageSize")
		if err != nil {
			return errFromDomain(c, err)
		}

		q := domain.OrderListQuery{
			Page:          page,
			PageSize:      pageSize,
			UserID:        c.Query("userId"),
			Status:        c.Query("status"),
			SearchQuery:   c.Query("searchQuery"),
			SortBy:        c.Query("sortBy"),
			SortDirection: c.Query("sortDirection"),
		}
		result, err := deps.Orders.List(c.UserContext(), merchantID(c), q)
		if err != nil {
			return errFromDomain(c, err)
		}

		SetLinkHeaders(c, Pagination{
			Page:     result.CurrentPage,
			PageSize: result.PageSize,
			Total:    result.TotalCount,
		})
		return c.JSON(result)
	}
}

// optionalPositiveInt returns 0 for an absent parameter so defaults apply.
func optionalPositiveInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidPagination, key)
	}
	return v, nil
}
