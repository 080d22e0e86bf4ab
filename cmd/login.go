package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianfbeck/plex-cli/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUser          string
	loginPasswordStdin bool
	loginToken         string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your Plex account",
	Long: `Sign in to plex.tv and store the account token.

Pass --token to store an existing token instead of signing in. --server
is remembered as the default media server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, dir, err := getClient(false)
		if err != nil {
			return err
		}

		if loginToken != "" {
			cfg.Token = strings.TrimSpace(loginToken)
			if err := config.Save(dir, cfg); err != nil {
				return err
			}
			printInfo("Token saved\n")
			return nil
		}

		username := loginUser
		if username == "" && !noInput {
			username = promptLine(fmt.Sprintf("Username or email [%s]: ", cfg.LastUsername), cfg.LastUsername)
		}
		if username == "" {
			return exitError(2, fmt.Errorf("username is required"))
		}

		password, err := readPassword(loginPasswordStdin)
		if err != nil {
			return err
		}
		if password == "" {
			return exitError(2, fmt.Errorf("password is required"))
		}

		resp, err := client.SignIn(ctx, username, password)
		if err != nil {
			return apiError(err)
		}

		cfg.Token = resp.User.AuthToken
		cfg.LastUsername = username
		if err := config.Save(dir, cfg); err != nil {
			return err
		}

		name := resp.User.Username
		if name == "" {
			name = resp.User.Email
		}
		printInfo("Logged in as %s\n", name)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginUser, "user", "", "Username or email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read password from stdin")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Store this token instead of signing in")
	rootCmd.AddCommand(loginCmd)
}

func readPassword(fromStdin bool) (string, error) {
	if fromStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	if noInput {
		return "", exitError(2, fmt.Errorf("password required; use --password-stdin"))
	}
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pw)), nil
}

func promptLine(label, fallback string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback
	}
	return line
}
