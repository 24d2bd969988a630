package main

import (
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2"

	"danilchat/chat"
	"danilchat/db"
	"danilchat/llm"
	"danilchat/ui"
	"danilchat/utils"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Danil AI v%s\n", version)
		os.Exit(0)
	}

	actualConfigPath := *configPath
	if actualConfigPath == "" {
		var err error
		actualConfigPath, err = utils.EnsureDefaultConfig()
		if err != nil {
			fmt.Printf("Failed to create default config: %v\n", err)
			os.Exit(1)
		}
	}

	config, err := utils.LoadConfig(actualConfigPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.GetLogPath(), config.Log.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info().Str("version", version).Str("config", actualConfigPath).Msg("starting Danil AI")

	database, err := db.New(config.Data.DBPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize database")
		os.Exit(1)
	}
	defer database.Close()

	logger.Info().Str("path", config.Data.DBPath).Msg("database initialized")

	engine := llm.NewEngine()
	controller, err := chat.NewController(database, engine, logger.Sub("chat"), fyne.Do)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize controller")
		os.Exit(1)
	}

	app := ui.NewApp(config, actualConfigPath, controller, database, logger.Sub("ui"))

	logger.Info().Msg("application started")
	app.Run()
	logger.Info().Msg("application stopped")
}
