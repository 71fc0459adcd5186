package admins

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a console user, optionally with an administrator profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate required flags
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}
		if roleFlag != "" {
			if err := validateRole(roleFlag); err != nil {
				return err
			}
		}

		password := passwordFlag
		if stdinFlag {
			// Read password from stdin
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		ctx := context.Background()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		// Check if email already exists
		existing, err := s.users.GetByEmail(ctx, emailFlag)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("user with email %q already exists", emailFlag)
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user := &models.User{Email: emailFlag, PasswordHash: hash}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if roleFlag != "" {
			name := nameFlag
			if name == "" {
				name = user.Email
			}
			profile := &models.AdministratorProfile{ID: user.ID, FullName: name, Role: roleFlag}
			if err := s.profiles.Upsert(ctx, profile); err != nil {
				return fmt.Errorf("user created but granting the profile failed: %w", err)
			}
		}

		fmt.Println("User created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Email: %s\n", user.Email)
		if roleFlag != "" {
			fmt.Printf("Role: %s\n", roleFlag)
		} else {
			fmt.Println("Role: none (cannot open the console until granted)")
		}
		fmt.Println("----------------------------------------")
		return nil
	},
}
