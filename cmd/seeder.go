package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/user"
	"github.com/spf13/cobra"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with one account per role",
	Long:  `Seed the database with sample accounts for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		ctx := context.Background()
		for _, role := range coreuser.Roles {
			email := fmt.Sprintf("%s@couture.local", role)
			name := fmt.Sprintf("Seeded %s", role)

			_, err := deps.Users.Register(ctx, user.RegisterDTO{
				Email:    email,
				Password: seedPassword,
				FullName: &name,
				Role:     string(role),
			})
			if errors.Is(err, internal.ErrEmailAlreadyRegistered) {
				fmt.Println("user already exists:", email)
				continue
			}
			if err != nil {
				log.Fatalf("failed to seed %s user: %v", role, err)
			}
			fmt.Printf("Seeded %s user: %s\n", role, email)
		}
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "couture-password", "password given to every seeded account")
}
