// Command token issues access tokens for local development and the portals'
// mock login.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/config"
	"github.com/edutrack/edutrack/internal/pkg/auth"
	"github.com/edutrack/edutrack/internal/pkg/helpers"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "token",
		Usage: "issue an EduTrack access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "configs/config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "path to the YAML config",
			},
			&cli.StringFlag{
				Name:  "role",
				Value: string(models.RoleStudent),
				Usage: "ADMIN or STUDENT",
			},
			&cli.Int64Flag{
				Name:  "student-id",
				Usage: "student the token acts for (STUDENT role only)",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "token lifetime, defaults to auth.token_ttl",
			},
		},
		Action: issue,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Failed to issue token")
		os.Exit(1)
	}
}

func issue(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not set")
	}

	ttl := c.Duration("ttl")
	if ttl <= 0 {
		ttl = helpers.ParseDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	}

	svc := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.Auth.JWTSecret,
		AccessTokenExp: ttl,
		TokenIssuer:    cfg.Auth.Issuer,
	})

	principal := models.Principal{
		Role:      models.Role(strings.ToUpper(c.String("role"))),
		StudentID: c.Int64("student-id"),
	}
	token, expiresAt, err := svc.GenerateToken(principal)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, token)
	fmt.Fprintf(c.App.ErrWriter, "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
