package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bu-planner/backend/internal/catalog"
)

type CoursesHandler struct {
	store *catalog.Store
}

func NewCoursesHandler(store *catalog.Store) *CoursesHandler {
	return &CoursesHandler{store: store}
}

// List serves GET /api/courses/ with optional department and level filters.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	dept := c.Query("department")
	level := c.Query("level")

	if dept == "" && level == "" {
		return c.JSON(fiber.Map{
			"count":   h.store.Count(),
			"courses": h.store.All(),
		})
	}

	results := h.store.Search(catalog.SearchFilter{
		Department: dept,
		Level:      level,
	})
	return c.JSON(fiber.Map{
		"count":   len(results),
		"courses": results,
	})
}

// Get serves GET /api/courses/:id by catalog ID or course code.
func (h *CoursesHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	course, ok := h.store.Get(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}
	return c.JSON(course)
}

// Search serves GET /api/courses/search/ with free-text and field filters.
func (h *CoursesHandler) Search(c *fiber.Ctx) error {
	filter := catalog.SearchFilter{
		Query:      c.Query("q"),
		Department: c.Query("department"),
		Level:      c.Query("level"),
	}
	results := h.store.Search(filter)
	return c.JSON(fiber.Map{
		"count":   len(results),
		"courses": results,
	})
}

// ByLevel serves GET /api/courses/level/:level.
func (h *CoursesHandler) ByLevel(c *fiber.Ctx) error {
	level := c.Params("level")
	results := h.store.ByLevel(level)
	return c.JSON(fiber.Map{
		"level":   level,
		"count":   len(results),
		"courses": results,
	})
}

// Departments serves GET /api/departments/.
func (h *CoursesHandler) Departments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"departments": h.store.Departments(),
	})
}

// Subjects serves GET /api/subjects/.
func (h *CoursesHandler) Subjects(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"subjects": h.store.Subjects(),
	})
}
