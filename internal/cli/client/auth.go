package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication credentials",
		Long:  "Login, logout, and check authentication status for the clauselens CLI",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var apiToken string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with API token",
		Long:  "Store API token and URL in global config (~/.config/clauselens/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(apiToken, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiToken, "api-token", "", "API token")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear credentials",
		Long:  "Remove stored credentials from global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout()
		},
	}

	return cmd
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Display current authentication source and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAuthStatus(outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runAuthLogin(apiToken, apiURL string) error {
	if apiToken == "" {
		fmt.Print("Enter API token: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API token: %w", err)
		}
		apiToken = strings.TrimSpace(input)
	}

	if apiToken == "" {
		return fmt.Errorf("API token is required")
	}

	config := &GlobalConfig{
		APIToken: apiToken,
		APIURL:   apiURL,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Println("Successfully logged in")
	return nil
}

func runAuthLogout() error {
	if err := DeleteGlobalConfig(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Println("Successfully logged out")
	return nil
}

func runAuthStatus(outputJSON bool) error {
	source, apiToken, apiURL := GetCredentialSource("", "")

	if outputJSON {
		status := map[string]interface{}{
			"authenticated": source != SourceNone,
			"source":        string(source),
		}
		if source != SourceNone {
			status["api_token"] = maskToken(apiToken)
			status["api_url"] = apiURL
		}

		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if source == SourceNone {
		fmt.Println("Not authenticated")
		fmt.Println("Run 'clauselens auth login' or set CLAUSELENS_API_TOKEN")
		return nil
	}

	fmt.Printf("Authenticated (source: %s)\n", source)
	fmt.Printf("API Token: %s\n", maskToken(apiToken))
	fmt.Printf("API URL: %s\n", apiURL)
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
