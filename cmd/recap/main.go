package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	_ = godotenv.Load() // loads .env

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "recap",
		Short: "Generate drink consumption recaps from the Boozer event log",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(exportCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(generateCmd())
	root.AddCommand(importCmd())
	root.AddCommand(serveCmd())

	return root
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export items, users and consumptions from the database to JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport()
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify uncached items and update the classification cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify()
		},
	}
}

func generateCmd() *cobra.Command {
	var importDB bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the global recap and per-user recaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(importDB)
		},
	}

	cmd.Flags().BoolVar(&importDB, "import-db", false, "write generated recaps back into the database")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import previously generated recaps into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport()
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated recap documents over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
