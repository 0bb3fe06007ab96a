// Package http exposes the transistor store and the working-point
// calculations over a small REST surface.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/domain"
	"github.com/powerlab/transistordb/internal/repository"
	"github.com/powerlab/transistordb/internal/service"
)

// Register mounts all routes on the app.
func Register(app *fiber.App, mgr *service.Manager) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	g := app.Group("/transistors")
	g.Get("/", listHandler(mgr))
	g.Get("/:name", getHandler(mgr))
	g.Put("/:name", putHandler(mgr))
	g.Delete("/:name", deleteHandler(mgr))
	g.Get("/:name/wp", wpHandler(mgr))
	g.Get("/:name/linearize", linearizeHandler(mgr))
	g.Get("/:name/coss/energy", cossEnergyHandler(mgr))
	g.Get("/:name/coss/charge", cossChargeHandler(mgr))
}

func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrOutOfRange), errors.Is(err, domain.ErrInvalidRecord):
		status = fiber.StatusBadRequest
	case errors.Is(err, repository.ErrExists):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func listHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := service.Filter{
			Name:         c.Query("name"),
			Type:         domain.DeviceType(c.Query("type")),
			Manufacturer: c.Query("manufacturer"),
		}
		items, err := mgr.List(c.Context(), f)
		if err != nil {
			return fail(c, err)
		}
		names := make([]string, 0, len(items))
		for _, t := range items {
			names = append(names, t.Name)
		}
		return c.JSON(fiber.Map{"transistors": names})
	}
}

func getHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := mgr.Load(c.Context(), c.Params("name"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	}
}

func putHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t domain.Transistor
		if err := c.BodyParser(&t); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		t.Name = c.Params("name")
		overwrite := c.QueryBool("overwrite", true)
		if err := mgr.Save(c.Context(), &t, overwrite); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func deleteHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := mgr.Delete(c.Context(), c.Params("name")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func wpHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := mgr.Load(c.Context(), c.Params("name"))
		if err != nil {
			return fail(c, err)
		}
		d := config.Quickstart()
		tj := c.QueryFloat("tj", t.Switch.TJMax-d.TJOffset)
		vg := c.QueryFloat("vg", d.VG)
		i := c.QueryFloat("i", t.ICont)
		part := domain.Part(c.Query("part", string(domain.PartBoth)))
		mode := domain.Lenient
		if c.Query("mode") == "strict" {
			mode = domain.Strict
		}
		if err := t.UpdateWP(tj, vg, i, part, mode); err != nil {
			return fail(c, err)
		}
		return c.JSON(t.WP)
	}
}

func linearizeHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := mgr.Load(c.Context(), c.Params("name"))
		if err != nil {
			return fail(c, err)
		}
		d := config.Quickstart()
		tj := c.QueryFloat("tj", t.Switch.TJMax-d.TJOffset)
		vg := c.QueryFloat("vg", d.VG)
		i := c.QueryFloat("i", t.ICont)
		part := domain.Part(c.Query("part", string(domain.PartSwitch)))
		model, err := t.CalcLinChannel(tj, vg, i, part)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(model)
	}
}

func cossEnergyHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := mgr.Load(c.Context(), c.Params("name"))
		if err != nil {
			return fail(c, err)
		}
		e, err := t.CalcVEoss()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"graph_v_eoss": e})
	}
}

func cossChargeHandler(mgr *service.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := mgr.Load(c.Context(), c.Params("name"))
		if err != nil {
			return fail(c, err)
		}
		q, err := t.CalcVQoss()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"graph_v_qoss": q})
	}
}
