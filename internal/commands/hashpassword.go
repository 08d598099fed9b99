package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/klabast/wb-services/abfuhr-termine/internal/app"
)

var (
	hashOverwrite      bool
	hashInsecureUnmask bool
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Create the auth file protecting manual reloads",
	Long: `Creates an auth file with a hashed password (Argon2id).

The file holds a single username:hash line and is written read-only.
Its path is taken from auth_file (env ABFUHR_AUTH_FILE or AUTH_FILE,
default: auth.secret next to the binary).`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)

	hashPasswordCmd.Flags().BoolVar(&hashOverwrite, "overwrite", false, "Overwrite existing auth file without asking")
	hashPasswordCmd.Flags().BoolVar(&hashInsecureUnmask, "insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	authFile := viper.GetString("auth_file")

	fmt.Print("Enter username: ")
	var username string
	if _, err := fmt.Scanln(&username); err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	if hashInsecureUnmask {
		fmt.Fprintf(os.Stderr, "⚠️  WARNING: Password will be visible on screen!\n")
		fmt.Print("Enter password:   ")
		if _, err := fmt.Scanln(&password); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		fmt.Print("Confirm password: ")
		if _, err := fmt.Scanln(&passwordConfirm); err != nil {
			return fmt.Errorf("reading password confirmation: %w", err)
		}
	} else {
		var err error
		if password, err = readPasswordWithMask("Enter password:   "); err != nil {
			return err
		}
		if passwordConfirm, err = readPasswordWithMask("Confirm password: "); err != nil {
			return err
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	err := app.CreateAuthFile(authFile, username, password, hashOverwrite)
	if errors.Is(err, app.ErrAuthFileExists) {
		fmt.Printf("Auth file %s already exists. Overwrite? [y/N]: ", authFile)
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
		err = app.CreateAuthFile(authFile, username, password, true)
	}
	if err != nil {
		return err
	}

	fmt.Printf("✅ Auth file created: %s\n", authFile)
	fmt.Printf("   User: %s\n", username)
	return nil
}

var errInterrupted = errors.New("interrupted")

// readPasswordWithMask reads a password echoing one asterisk per character.
// Without a raw-capable terminal it falls back to hidden input.
func readPasswordWithMask(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		password, err := term.ReadPassword(fd)
		fmt.Println()
		return string(password), err
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	var password []rune
	reader := bufio.NewReader(os.Stdin)
	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			fmt.Print("\r\n")
			return string(password), nil
		}

		switch char {
		case '\n', '\r':
			fmt.Print("\r\n")
			return string(password), nil
		case 127, 8: // backspace, delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Print("\b \b")
			}
		case 3: // ctrl+c
			fmt.Print("\r\n")
			return "", errInterrupted
		default:
			if char >= 32 && char != 127 {
				password = append(password, char)
				fmt.Print("*")
			}
		}
	}
}
