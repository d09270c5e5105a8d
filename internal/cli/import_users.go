package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookstore/internal/client"
)

// ImportUsersCommand uploads a spreadsheet of users to a running
// backend through the bulk-create endpoint.
type ImportUsersCommand struct {
	FilePath        string
	ServerURL       string
	Email           string
	Password        string
	DefaultPassword string
}

func NewImportUsersCommand() *ImportUsersCommand {
	return &ImportUsersCommand{}
}

func (cmd *ImportUsersCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-users", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the .xlsx file (required)")
	fs.StringVar(&cmd.ServerURL, "url", "http://localhost:8188", "Base URL of the running server")
	fs.StringVar(&cmd.Email, "email", "", "Administrator email to log in with (required)")
	fs.StringVar(&cmd.Password, "password", "", "Administrator password (required)")
	fs.StringVar(&cmd.DefaultPassword, "default-password", "123456789", "Password assigned to every imported account")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-users -file <path.xlsx> -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Bulk-import users from a spreadsheet. The first row of each sheet\n")
		fmt.Fprintf(os.Stderr, "names the columns; fullName, email and phone are recognized.\n")
		fmt.Fprintf(os.Stderr, "Every imported account gets the default password.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s import-users -file users.xlsx -email admin@example.com -password changeme1\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if cmd.Email == "" || cmd.Password == "" {
		return fmt.Errorf("required flags -email and -password not provided")
	}

	return nil
}

func (cmd *ImportUsersCommand) Run() error {
	fmt.Println("User Import")
	fmt.Println("===========")

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer file.Close()

	ctx := context.Background()
	c := client.NewClient(cmd.ServerURL)
	if _, err := c.Login(ctx, cmd.Email, cmd.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer c.Logout(ctx)

	table := client.NewTableController(c.ListUsers)
	counts, err := c.ImportUsers(ctx, table, file, cmd.DefaultPassword)
	if err != nil {
		return err
	}

	fmt.Printf("Imported: %d\n", counts.CountSuccess)
	fmt.Printf("Rejected: %d\n", counts.CountError)
	fmt.Printf("Users in table: %d\n", table.Total())
	return nil
}
