package common

import (
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner draws the startup box on stdout and logs the effective settings of the run
func PrintBanner(config *Config, logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetWidth(64).
		SetBorderColor(banner.ColorCyan).
		SetBold(true)

	b.PrintTopLine()
	b.PrintCenteredText(AppName)
	b.PrintCenteredText(GetVersion())
	b.PrintSeparatorLine()
	b.PrintKeyValue("Provider", string(config.LLM.DefaultProvider), 16)
	b.PrintKeyValue("Schema", config.Analysis.SchemaVariant, 16)
	b.PrintKeyValue("Max rows", strconv.Itoa(config.Analysis.MaxInputRows), 16)
	b.PrintKeyValue("Database", config.Storage.Badger.Path, 16)
	b.PrintBottomLine()

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("provider", string(config.LLM.DefaultProvider)).
		Str("schema_variant", config.Analysis.SchemaVariant).
		Int("max_input_rows", config.Analysis.MaxInputRows).
		Str("badger_path", config.Storage.Badger.Path).
		Msg(AppName + " starting")
}
