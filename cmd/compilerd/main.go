package main

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	ronin "github.com/ronin-co/compiler"
	"github.com/ronin-co/compiler/internal/config"
	"github.com/ronin-co/compiler/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d)", cfg.Server.Port)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(logger.New())

	app.Post("/compile", compileHandler(cfg))

	log.Fatal(app.Listen(":" + strconv.Itoa(cfg.Server.Port)))
}

// compileRequest is the wire shape a caller posts to /compile: an ordered
// batch of single-model queries, the models they address, and optional
// compile options overriding the service defaults.
type compileRequest struct {
	Queries []queryDTO     `json:"queries"`
	Models  []schema.Model `json:"models"`
	Options *optionsDTO    `json:"options,omitempty"`
}

// queryDTO sidesteps RONIN's single-key-object wire shape (e.g.
// {"get": {"posts": {...}}}) in favour of an explicit kind/slug pair,
// until the wire codec described in spec.md §6 gets its own package.
type queryDTO struct {
	Kind         schema.QueryKind     `json:"kind"`
	ModelSlug    string               `json:"modelSlug,omitempty"`
	Instructions *schema.Instructions `json:"instructions,omitempty"`
	Meta         *schema.MetaQuery    `json:"meta,omitempty"`
}

type optionsDTO struct {
	InlineParams   *bool `json:"inlineParams,omitempty"`
	InlineDefaults *bool `json:"inlineDefaults,omitempty"`
	ExpandColumns  *bool `json:"expandColumns,omitempty"`
}

type compileResponse struct {
	Statements []schema.Statement `json:"statements"`
}

func compileHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req compileRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
		}

		opts := schema.Options{
			InlineParams:   cfg.DefaultOptions.InlineParams,
			InlineDefaults: cfg.DefaultOptions.InlineDefaults,
			ExpandColumns:  cfg.DefaultOptions.ExpandColumns,
		}
		if req.Options != nil {
			if req.Options.InlineParams != nil {
				opts.InlineParams = *req.Options.InlineParams
			}
			if req.Options.InlineDefaults != nil {
				opts.InlineDefaults = *req.Options.InlineDefaults
			}
			if req.Options.ExpandColumns != nil {
				opts.ExpandColumns = *req.Options.ExpandColumns
			}
		}

		queries := make([]*schema.Query, len(req.Queries))
		for i, q := range req.Queries {
			query := &schema.Query{Kind: q.Kind, Meta: q.Meta}
			if q.ModelSlug != "" {
				query.Models = map[string]*schema.Instructions{q.ModelSlug: q.Instructions}
			}
			queries[i] = query
		}
		models := make([]*schema.Model, len(req.Models))
		for i := range req.Models {
			models[i] = &req.Models[i]
		}

		tx, err := ronin.NewTransaction(queries, models, opts, nil)
		if err != nil {
			return err
		}
		return c.JSON(compileResponse{Statements: tx.Statements()})
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	var se *schema.Error
	if errors.As(err, &se) {
		code = fiber.StatusBadRequest
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
