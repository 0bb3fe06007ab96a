package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/database"
	"github.com/powerlab/transistordb/internal/exchange"
	httpHandlers "github.com/powerlab/transistordb/internal/http"
	"github.com/powerlab/transistordb/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	store, closeStore, err := database.OpenStore(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer closeStore()

	xc := exchange.New(config.ExchangeIndexURL(), config.ExchangeManufacturersURL(), config.ExchangeHousingTypesURL())
	mgr := service.NewManager(store, xc)
	mgr.LoadWhitelists(config.HousingTypesFile(), config.ManufacturersFile())

	app := fiber.New()
	httpHandlers.Register(app, mgr)

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
