/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/recipebook/apiserver/config"
	"github.com/recipebook/apiserver/internal/db"
	"github.com/recipebook/apiserver/internal/seed"
	"github.com/recipebook/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var seedOpts seed.Options

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with fake users and recipes",
	Long: `Deletes every recipe and user, then creates fake ones. Each seeded user
can log in with the password "<username>password".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		res, err := seed.Run(cmd.Context(), store.NewUserRepository(dbConn), store.NewRecipeRepository(dbConn), seedOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users and %d recipes\n", len(res.Users), len(res.Recipes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedOpts.Users, "users", seed.DefaultUsers, "number of users to create")
	seedCmd.Flags().IntVar(&seedOpts.Recipes, "recipes", seed.DefaultRecipes, "number of recipes to create")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 0, "random seed (0 picks one)")
}
