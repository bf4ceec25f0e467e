package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mchmarny/namedist/pkg/config"
	"github.com/mchmarny/namedist/pkg/data"
	"github.com/mchmarny/namedist/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "namedist"
	dirMode      = 0700
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"

	envConfig = "NAMEDIST_CONFIG"
	envDB     = "NAMEDIST_DB"
	envLevel  = "NAMEDIST_LOG_LEVEL"

	debugFlagName    = "debug"
	logLevelFlagName = "log-level"
	dbFlagName       = "db"
	configFlagName   = "config"
	formatFlagName   = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(false)

	// .env is optional
	_ = godotenv.Load()

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	DBPath     string
	ConfigPath string
	Format     string
	Debug      bool
	DB         *sql.DB
	Config     *config.Config
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Build representative name distribution tables by gender and race",
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  debugFlagName,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:    logLevelFlagName,
				Usage:   "Log level [debug, info, warn, error]",
				Value:   "info",
				Sources: urfave.EnvVars(envLevel),
			},
			&urfave.StringFlag{
				Name:    dbFlagName,
				Usage:   fmt.Sprintf("Path to the Sqlite run ledger (default: $HOME/.%s/%s)", appName, data.DataFileName),
				Sources: urfave.EnvVars(envDB),
			},
			&urfave.StringFlag{
				Name:    configFlagName,
				Usage:   "Path to the pipeline config file, created with defaults when missing",
				Value:   config.FileName,
				Sources: urfave.EnvVars(envConfig),
			},
			&urfave.StringFlag{
				Name:  formatFlagName,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
		},
		Commands: []*urfave.Command{
			newBuildCmd(),
			newVariantsCmd(),
			newVerifyCmd(),
			newRunsCmd(),
			newFetchCmd(),
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			debug := cmd.Bool(debugFlagName)
			if debug {
				initLogging(true)
			} else {
				logging.SetDefaultCLILogger(cmd.String(logLevelFlagName))
			}

			format := formatJSON
			if f := cmd.String(formatFlagName); f == formatYAML || f == "yml" {
				format = formatYAML
			}

			confPath := cmd.String(configFlagName)
			conf, err := config.ReadOrCreate(confPath)
			if err != nil {
				return ctx, fmt.Errorf("loading config: %w", err)
			}

			dbPath := cmd.String(dbFlagName)
			if dbPath == "" {
				dbPath = filepath.Join(getHomeDir(), data.DataFileName)
			}

			if err := data.Init(dbPath); err != nil {
				return ctx, fmt.Errorf("initializing database: %w", err)
			}

			db, err := data.GetDB(dbPath)
			if err != nil {
				return ctx, fmt.Errorf("opening database: %w", err)
			}

			cmd.Root().Metadata[appConfigKey] = &appConfig{
				DBPath:     dbPath,
				ConfigPath: confPath,
				Format:     format,
				Debug:      debug,
				DB:         db,
				Config:     conf,
			}
			return ctx, nil
		},
		After: func(_ context.Context, cmd *urfave.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

func initLogging(debug bool) {
	level := "info"
	if debug {
		level = "debug"
	}
	logging.SetDefaultCLILogger(level)
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}
	slog.Debug("home dir", "path", home)

	dirName := "." + appName
	dirPath := filepath.Join(home, dirName)
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dirPath)
		err := os.Mkdir(dirPath, dirMode)
		if err != nil {
			slog.Debug("error creating dir", "path", dirPath, "home", home, "error", err)
			return home
		}
	}
	return dirPath
}

func writer(cmd *urfave.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func reader(cmd *urfave.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

func encode(cmd *urfave.Command, v any) error {
	w := writer(cmd)
	if getConfig(cmd).Format == formatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
