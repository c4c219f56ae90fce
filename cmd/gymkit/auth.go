package main

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/service/gymapi"
)

var (
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE:  login,
	}
	signupCmd = &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE:  signup,
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE:  logout,
	}
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Report whether this device is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, map[string]bool{"authenticated": gymkit.Auth.IsAuthenticated(ctx)})
		},
	}
	profileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Show or update the signed-in profile",
		Args:  cobra.NoArgs,
		RunE:  profile,
	}

	authEmail    string
	authPassword string
	authGym      string
	signupName   string
	signupPhone  string
	logoutAll    bool
	logoutOthers bool
	profileName  string
	profileEmail string
	profilePhone string
)

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "邮箱")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "密码，留空则交互输入")
		c.Flags().StringVarP(&authGym, "gym", "g", "", "登录到指定健身房")
	}
	signupCmd.Flags().StringVarP(&signupName, "name", "n", "", "姓名")
	signupCmd.Flags().StringVar(&signupPhone, "phone", "", "电话")

	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "退出所有设备")
	logoutCmd.Flags().BoolVar(&logoutOthers, "others", false, "退出其他设备，保留当前会话")
	logoutCmd.MarkFlagsMutuallyExclusive("all", "others")

	profileCmd.Flags().StringVar(&profileName, "name", "", "新姓名")
	profileCmd.Flags().StringVar(&profileEmail, "email", "", "新邮箱")
	profileCmd.Flags().StringVar(&profilePhone, "phone", "", "新电话")
}

func ask(value *string, prompt survey.Prompt, opts ...survey.AskOpt) error {
	if *value != "" {
		return nil
	}
	return survey.AskOne(prompt, value, opts...)
}

func login(cmd *cobra.Command, args []string) error {
	if err := ask(&authEmail, &survey.Input{Message: "Email:"}, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	if err := ask(&authPassword, &survey.Password{Message: "Password:"}, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	user, err := gymkit.Auth.Login(ctx, model.Credentials{Email: authEmail, Password: authPassword}, authGym)
	if err != nil {
		return err
	}
	return printJSON(cmd, user)
}

func signup(cmd *cobra.Command, args []string) error {
	if err := ask(&signupName, &survey.Input{Message: "Name:"}, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	if err := ask(&authEmail, &survey.Input{Message: "Email:"}, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	var confirmation string
	if authPassword == "" {
		qs := []*survey.Question{
			{Name: "password", Prompt: &survey.Password{Message: "Password:"}, Validate: survey.MinLength(8)},
			{Name: "confirmation", Prompt: &survey.Password{Message: "Repeat password:"}, Validate: survey.Required},
		}
		answers := struct {
			Password     string `survey:"password"`
			Confirmation string `survey:"confirmation"`
		}{}
		if err := survey.Ask(qs, &answers); err != nil {
			return err
		}
		authPassword, confirmation = answers.Password, answers.Confirmation
	} else {
		confirmation = authPassword
	}

	user, err := gymkit.Auth.Signup(ctx, model.SignupRequest{
		Name:                 signupName,
		Email:                authEmail,
		Phone:                signupPhone,
		Password:             authPassword,
		PasswordConfirmation: confirmation,
	}, authGym)
	if err != nil {
		return err
	}
	return printJSON(cmd, user)
}

func logout(cmd *cobra.Command, args []string) error {
	switch {
	case logoutAll:
		return gymkit.Auth.LogoutAll(ctx)
	case logoutOthers:
		return gymkit.Auth.LogoutOthers(ctx)
	default:
		return gymkit.Auth.Logout(ctx)
	}
}

func profile(cmd *cobra.Command, args []string) error {
	user, err := gymkit.Auth.Profile(ctx)
	if err != nil {
		return err
	}
	if profileName == "" && profileEmail == "" && profilePhone == "" {
		return printJSON(cmd, user)
	}

	upd, err := gymapi.ProfileUpdateOf(*user)
	if err != nil {
		return err
	}
	if profileName != "" {
		upd.Name = profileName
	}
	if profileEmail != "" {
		upd.Email = profileEmail
	}
	if profilePhone != "" {
		upd.Phone = profilePhone
	}
	user, err = gymkit.Auth.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	return printJSON(cmd, user)
}
