package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"escrutinio/internal/models"
	"escrutinio/internal/party"
	"escrutinio/internal/results"
)

var (
	onceContest string
	onceNoStore bool
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single poll cycle and print the snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var metadata party.Store
		if !cfg.DisablePartyStore && !onceNoStore {
			pb, err := openPocketBase()
			if err != nil {
				return err
			}
			defer pb.Close()
			metadata = pb.Parties()
		}

		manager, err := buildManager(metadata)
		if err != nil {
			return err
		}
		id := onceContest
		if id == "" {
			id = cfg.Contests[0].ID
		}
		p, err := manager.Get(id)
		if err != nil {
			return err
		}

		snap, err := p.RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		out := struct {
			*models.Snapshot
			Comparison map[models.GeoKey]models.Comparison `json:"comparison"`
			Winners    map[models.GeoKey]models.Winner     `json:"winners"`
		}{
			Snapshot:   snap,
			Comparison: results.CompareAll(snap),
			Winners:    results.Winners(p.Contest(), snap.Current),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return nil
	},
}

func init() {
	onceCmd.Flags().StringVar(&onceContest, "contest", "", "contest id (defaults to the first configured)")
	onceCmd.Flags().BoolVar(&onceNoStore, "no-store", false, "resolve parties from the static table only")
}
