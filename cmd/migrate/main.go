package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"time"

	"chat-service/config"
	"chat-service/internal/domain/user"
	"chat-service/internal/repository"
	"chat-service/internal/services"
	"chat-service/pkg/database"
	"chat-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var log *logger.Logger

func main() {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Chat service database and operator tool",
		Long:  "Applies schema migrations, reports schema status, mirrors users and issues test tokens.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logger.New(logger.DevelopmentMode)
		},
		SilenceUsage: true,
	}

	root.AddCommand(upCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(seedUserCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, dialect repository.Dialect) error {
				if err := repository.RunMigrations(ctx, db, dialect, log); err != nil {
					return err
				}
				log.Infof("schema is at version %d", repository.SchemaVersion)
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show schema version and table row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, dialect repository.Dialect) error {
				version, err := repository.CurrentSchemaVersion(ctx, db)
				if err != nil {
					return err
				}
				fmt.Printf("schema version: %d (latest %d)\n", version, repository.SchemaVersion)
				if version == 0 {
					return nil
				}
				counts, err := repository.TableCounts(ctx, db)
				if err != nil {
					return err
				}
				tables := make([]string, 0, len(counts))
				for t := range counts {
					tables = append(tables, t)
				}
				sort.Strings(tables)
				for _, t := range tables {
					fmt.Printf("  %-14s %d\n", t, counts[t])
				}
				return nil
			})
		},
	}
}

func seedUserCmd() *cobra.Command {
	var (
		id, name, email, avatar string
	)
	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Insert or update a user in the local directory mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := uuid.New()
			if id != "" {
				parsed, err := uuid.Parse(id)
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
				userID = parsed
			}
			u := user.User{ID: userID, Name: name, Email: email, CreatedAt: time.Now()}
			if avatar != "" {
				u.AvatarURL = sql.NullString{String: avatar, Valid: true}
			}
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, dialect repository.Dialect) error {
				if err := repository.NewUserRepository(db, dialect).UpsertUser(ctx, u); err != nil {
					return err
				}
				fmt.Println(u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "user id (random when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar url")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func tokenCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token for a user (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			token, ttl, err := services.NewAuthService(cfg.Auth).IssueAccessToken(id)
			if err != nil {
				return err
			}
			fmt.Println(token)
			log.Infof("token for %s expires in %ds", id, ttl)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the token is issued for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func withDB(ctx context.Context, fn func(ctx context.Context, db *sql.DB, dialect repository.Dialect) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db, repository.Dialect(cfg.Database.Driver))
}
