package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "campus-market",
		Usage:  "campus multi-vendor marketplace backend",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrateDB,
			},
			{
				Name:  "seed-admin",
				Usage: "create an admin account, or promote an existing user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Value: "admin", EnvVars: []string{"ADMIN_USERNAME"}},
					&cli.StringFlag{Name: "email", Required: true, EnvVars: []string{"ADMIN_EMAIL"}},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: seedAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("campus-market exited")
	}
}
