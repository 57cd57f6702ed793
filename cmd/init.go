package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fraudsight/fraudsight/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walks through provider, model, and data settings and writes the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.RunWizard()
		exitOnError(err)

		exitOnError(cfg.Save(cfgFile))
		fmt.Printf("Config written to %s\n", cfgFile)
		fmt.Println("Next: run `fraudsight ingest` to load your data.")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
