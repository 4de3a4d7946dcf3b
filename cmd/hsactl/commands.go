package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/usecase"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/catalogsource"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/repository/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the Postgres schema",
		Long:  `Create the accounts, claims and claim_audit tables in POSTGRES_DSN. Safe to run repeatedly.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			db, err := postgres.OpenDB(cfg.PostgresDSN)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer db.Close()

			if err := postgres.EnsureSchema(cmd.Context(), db); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the service catalog",
	}
	cmd.AddCommand(catalogValidateCmd())
	return cmd
}

func catalogValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a catalog file and report problems",
		Long: `Load the catalog from --file (or CATALOG_PATH, or the built-in list) and check
that every entry has a name and that names are unique ignoring case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := file
			if path == "" {
				path = loadConfig().CatalogPath
			}
			cat, err := catalogsource.Load(path)
			if err != nil {
				return err
			}

			source := path
			if source == "" {
				source = "built-in"
			}
			qualified := 0
			for _, entry := range cat.Entries() {
				if entry.IRSQualified {
					qualified++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s: %d entries, %d IRS-qualified\n", source, cat.Len(), qualified)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog file (.yaml, .yml or .xlsx)")
	return cmd
}

func matchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Show how the catalog matcher resolves a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				path = loadConfig().CatalogPath
			}
			cat, err := catalogsource.Load(path)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cat.Match(strings.Join(args, " ")))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog file (.yaml, .yml or .xlsx)")
	return cmd
}

// seedAccountCmd creates fixture accounts. It is not a deposit API: an owner
// gets exactly one account and the balance is set once.
func seedAccountCmd() *cobra.Command {
	var (
		owner   string
		balance string
		card    string
	)

	cmd := &cobra.Command{
		Use:   "seed-account",
		Short: "Create a fixture account with an opening balance",
		Long: `Create an account in the Postgres store the API reads. The memory backend is
refused because its accounts would vanish with this process; for memory
deployments list accounts in ACCOUNTS_SEED_PATH instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner = strings.TrimSpace(owner)
			if owner == "" {
				return errors.New("--owner is required")
			}
			amount, err := decimal.NewFromString(strings.TrimSpace(balance))
			if err != nil {
				return fmt.Errorf("parse --balance: %w", err)
			}
			if amount.IsNegative() {
				return errors.New("--balance must not be negative")
			}
			if !amount.Equal(amount.Round(domain.CentPlaces)) {
				return errors.New("--balance must be in whole cents")
			}

			cfg := loadConfig()
			if err := cfg.RequireSharedStorage("seed-account"); err != nil {
				return err
			}
			app, err := openApp(cmd.Context(), cfg, "hsactl")
			if err != nil {
				return err
			}
			defer app.Close()

			cardNumber := usecase.NormalizeCardNumber(card)
			account := &domain.Account{
				ID:         uuid.NewString(),
				OwnerID:    owner,
				Balance:    amount.Round(domain.CentPlaces),
				CardNumber: cardNumber,
				CardIssued: cardNumber != "",
			}
			if err := app.Accounts.CreateAccount(cmd.Context(), account); err != nil {
				return fmt.Errorf("create account: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id the API receives in X-User-Id")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance, e.g. 500.00")
	cmd.Flags().StringVar(&card, "card", "", "card number to issue to the account")
	return cmd
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <claim-id>",
		Short: "Print the stored event trail of a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := cfg.RequireSharedStorage("audit"); err != nil {
				return err
			}
			app, err := openApp(cmd.Context(), cfg, "hsactl")
			if err != nil {
				return err
			}
			defer app.Close()

			events, err := app.AuditLog.ListAudit(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("list audit: %w", err)
			}
			if events == nil {
				events = []domain.ClaimEvent{}
			}
			return printJSON(cmd.OutOrStdout(), events)
		},
	}
}
