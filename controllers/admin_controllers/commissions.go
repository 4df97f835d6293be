package admin_controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/venuex/controllers/entities"
	"github.com/zsmartex/venuex/controllers/helpers"
	"github.com/zsmartex/venuex/controllers/queries"
	"github.com/zsmartex/venuex/services/commission_service"
)

func (h *Handler) CreateCommission(c *fiber.Ctx) error {
	var errors = new(helpers.Errors)
	payload := new(queries.CommissionPayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_body"},
		})
	}

	helpers.Vaildate(payload, errors)

	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	commission, err := h.Commissions.ComputeCommission(c.UserContext(), payload.ReservationID, payload.OwnerID, payload.Amount)
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(201).JSON(commission.ToJSON())
}

func (h *Handler) GetCommissions(c *fiber.Ctx) error {
	var errors = new(helpers.Errors)
	params := new(queries.CommissionFilters)

	if err := c.QueryParser(params); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	helpers.Vaildate(params, errors)

	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	if params.Limit == 0 {
		params.Limit = 100
	}

	if params.Page == 0 {
		params.Page = 1
	}

	commissions, err := h.Commissions.ListCommissions(c.UserContext(), commission_service.ListFilter{
		OwnerID: params.OwnerID,
		Status:  params.Status,
		Page:    params.Page,
		Limit:   params.Limit,
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	commissions_json := make([]entities.CommissionEntity, 0, len(commissions))
	for _, commission := range commissions {
		commissions_json = append(commissions_json, commission.ToJSON())
	}

	c.Response().Header.Add("page", strconv.FormatInt(int64(params.Page), 10))
	c.Response().Header.Add("per-page", strconv.FormatInt(int64(params.Limit), 10))

	return c.Status(200).JSON(commissions_json)
}
