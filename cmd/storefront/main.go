package main

import (
	"os"

	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "cart, catalog and checkout backend for the storefront app",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files loaded before the environment is read",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			cartCommand(),
			ordersCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("storefront failed")
	}
}

func setup(c *cli.Context, service string) (config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Service: service,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Output:  c.App.ErrWriter,
	})
	return cfg, log, nil
}
