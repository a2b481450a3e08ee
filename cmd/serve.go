package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicoberrocal/arenaCore/api"
	"github.com/nicoberrocal/arenaCore/config"
	"github.com/nicoberrocal/arenaCore/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API over the loaded templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		loader := config.NewLoader(dataPath)
		if _, err := loader.Templates(); err != nil {
			return fmt.Errorf("load templates: %w", err)
		}

		var store *storage.DB
		if dbPath != "" {
			db, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			store = db
		}

		server := api.NewServer(loader, store, log)
		return server.ListenAndServe(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}
