package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/entities"
)

// CreateAdminCommand seeds an administrator account straight into the
// database, for bootstrapping a fresh deployment.
type CreateAdminCommand struct {
	Email        string
	Password     string
	FullName     string
	Phone        string
	DatabasePath string
	BcryptCost   int
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Administrator email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Administrator password (required, min 6 characters)")
	fs.StringVar(&cmd.FullName, "name", "Administrator", "Full name shown in the users table")
	fs.StringVar(&cmd.Phone, "phone", "0000000000", "Phone number")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the application database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 12, "bcrypt cost for the password hash")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account in the local database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -email admin@example.com -password changeme1\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	fmt.Printf("Database: %s\n", absDBPath)

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(cmd.Password, cmd.BcryptCost)
	if err != nil {
		return err
	}

	repo := users.NewRepository(db.DB)
	admin := &entities.User{
		FullName:     cmd.FullName,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		Role:         entities.UserRoleAdmin,
		PasswordHash: hash,
	}
	if err := repo.Create(admin); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	fmt.Printf("Administrator %s created (id %d)\n", admin.Email, admin.ID)
	return nil
}
