package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Sign in, register, or sign out of the task server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the task server",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the task server",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func promptEmail() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(email), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(passwordBytes), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	email, err := promptEmail()
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	fmt.Println("🔄 Signing in...")
	if err := app.Session.Login(cmd.Context(), email, password); err != nil {
		return err
	}

	fmt.Printf("✅ Signed in as %s\n", email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	email, err := promptEmail()
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm Password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	if err := app.Session.Register(cmd.Context(), email, password); err != nil {
		return err
	}

	fmt.Println("✅ Account created and signed in!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Session.IsAuthenticated() {
		fmt.Println("Not signed in.")
		return nil
	}

	if err := app.Session.Logout(); err != nil {
		return err
	}

	fmt.Println("✅ Signed out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Session.IsAuthenticated() {
		fmt.Println("Not signed in.")
		return nil
	}

	user := app.Session.User()
	fmt.Printf("Signed in as %s\n", user.Email)
	fmt.Printf("Server: %s\n", app.Config.ServerURL)
	return nil
}
