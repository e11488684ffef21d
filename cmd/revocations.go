/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tudao164/KiemThuPhanMem/config"
	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/db"
	"github.com/tudao164/KiemThuPhanMem/internal/store"
)

var revocationsCmd = &cobra.Command{
	Use:   "revocations",
	Short: "Inspect and maintain the token revocation ledger",
}

var revocationsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete ledger entries for tokens that have already expired",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		ledger := auth.NewLedger(store.NewRevocationRepository(dbConn))
		removed, err := ledger.Prune(ctx, time.Now())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revocationsCmd)
	revocationsCmd.AddCommand(revocationsPruneCmd)
}
