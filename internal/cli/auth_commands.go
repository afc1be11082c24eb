package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/stokai/internal/auth"
	"github.com/example/stokai/internal/models"
)

var loginPhone string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a session with a phone number",
	RunE:  runLogin,
}

var (
	signupPhone string
	signupName  string
	signupEmail string
	signupCode  string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account",
	RunE:  runSignup,
}

var verifyCode string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Confirm the pending one-time passcode",
	RunE:  runVerify,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear local state",
	RunE:  runLogout,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the authenticated user's profile",
	RunE:  runProfile,
}

var (
	profileUpdateName    string
	profileUpdateEmail   string
	profileUpdateAddress string
	profileUpdateCountry string
)

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE:  runProfileUpdate,
}

func init() {
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "phone number")
	_ = loginCmd.MarkFlagRequired("phone")

	signupCmd.Flags().StringVar(&signupPhone, "phone", "", "phone number")
	signupCmd.Flags().StringVar(&signupName, "name", "", "full name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "email address")
	signupCmd.Flags().StringVar(&signupCode, "code", "", "country dialing code")
	_ = signupCmd.MarkFlagRequired("phone")
	_ = signupCmd.MarkFlagRequired("name")

	verifyCmd.Flags().StringVar(&verifyCode, "code", "", "one-time passcode")
	_ = verifyCmd.MarkFlagRequired("code")

	profileUpdateCmd.Flags().StringVar(&profileUpdateName, "name", "", "full name")
	profileUpdateCmd.Flags().StringVar(&profileUpdateEmail, "email", "", "email address")
	profileUpdateCmd.Flags().StringVar(&profileUpdateAddress, "address", "", "street address")
	profileUpdateCmd.Flags().StringVar(&profileUpdateCountry, "country", "", "country")
	profileCmd.AddCommand(profileUpdateCmd)

	rootCmd.AddCommand(loginCmd, signupCmd, verifyCmd, logoutCmd, profileCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	if err := app.session.Login(cmd.Context(), loginPhone); err != nil {
		return err
	}
	return reportSession(app.session.State())
}

func runSignup(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	payload := auth.SignUpData{
		Mob:      signupPhone,
		FullName: signupName,
		Email:    signupEmail,
		Code:     signupCode,
	}
	if err := app.session.SignUp(cmd.Context(), payload); err != nil {
		return err
	}
	return reportSession(app.session.State())
}

func runVerify(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	if err := app.session.VerifyOTP(cmd.Context(), verifyCode); err != nil {
		return err
	}

	fmt.Println("Phone number verified; you are signed in.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	app.session.Logout(cmd.Context())
	app.cart.Clear()
	fmt.Println("Signed out.")
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	user, err := app.session.GetProfile(cmd.Context())
	if err != nil {
		return err
	}
	printUser(user)
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	patch := models.ProfilePatch{}
	set := func(dst **string, value string) {
		if value != "" {
			v := value
			*dst = &v
		}
	}
	set(&patch.Name, profileUpdateName)
	set(&patch.Email, profileUpdateEmail)
	set(&patch.Address, profileUpdateAddress)
	set(&patch.Country, profileUpdateCountry)

	user, err := app.session.UpdateProfile(cmd.Context(), patch)
	if err != nil {
		return err
	}
	printUser(user)
	return nil
}

func reportSession(state auth.State) error {
	switch state.Status {
	case auth.StatusPendingOTP:
		fmt.Println("A one-time passcode is required to finish signing in.")
		if state.Challenge != nil && state.Challenge.Value != 0 {
			fmt.Printf("Passcode (non-production backend): %06d\n", state.Challenge.Value)
		}
		fmt.Println("Run `storectl verify --code <passcode>`.")
	case auth.StatusAuthenticated:
		fmt.Println("Signed in.")
	default:
		fmt.Println("Not signed in.")
	}
	return nil
}

func printUser(user *models.User) {
	fmt.Printf("ID:      %s\n", user.ID)
	fmt.Printf("Name:    %s\n", user.Name)
	fmt.Printf("Phone:   %s%s\n", user.Code, user.Phone)
	fmt.Printf("Email:   %s\n", user.Email)
	if user.Address != "" {
		fmt.Printf("Address: %s\n", user.Address)
	}
	if user.Country != "" {
		fmt.Printf("Country: %s\n", user.Country)
	}
}
