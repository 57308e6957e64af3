package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"escrutinio/internal/models"
)

var partiesCmd = &cobra.Command{
	Use:   "parties",
	Short: "Manage the party metadata store",
}

var partiesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Insert or update parties from a YAML list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read parties file: %w", err)
		}
		var parties []models.Party
		if err := yaml.Unmarshal(data, &parties); err != nil {
			return fmt.Errorf("parse parties yaml: %w", err)
		}

		// Validate all parties before saving
		for i, p := range parties {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("invalid party at index %d: %w", i, err)
			}
		}

		pb, err := openPocketBase()
		if err != nil {
			return err
		}
		defer pb.Close()

		var saved int
		for i := range parties {
			if err := pb.Parties().SaveParty(&parties[i]); err != nil {
				logger.Error("failed to save party", zap.String("party", parties[i].Abbreviation), zap.Error(err))
				continue
			}
			saved++
		}
		logger.Info("parties imported", zap.Int("submitted", len(parties)), zap.Int("saved", saved))
		if saved != len(parties) {
			return fmt.Errorf("saved %d of %d parties", saved, len(parties))
		}
		return nil
	},
}

var partiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stored parties",
	RunE: func(cmd *cobra.Command, args []string) error {
		pb, err := openPocketBase()
		if err != nil {
			return err
		}
		defer pb.Close()

		parties, err := pb.Parties().ListParties()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ABBREVIATION\tNAME\tCOLOR\tIDEOLOGY")
		for _, p := range parties {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\n", p.Abbreviation, p.Name, p.Color, p.Ideology)
		}
		return tw.Flush()
	},
}

func init() {
	partiesCmd.AddCommand(partiesImportCmd, partiesListCmd)
}
