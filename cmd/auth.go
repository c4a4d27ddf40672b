package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/careerflow/internal/supabase"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to sync history with Supabase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, false)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a Supabase account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().String("email", "", "Account email")
		c.Flags().String("password", "", "Account password")
		c.MarkFlagRequired("email")
		c.MarkFlagRequired("password")
	}
}

func authenticate(cmd *cobra.Command, signUp bool) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)
	if err != nil {
		return err
	}
	auth := supabase.NewAuth(client)

	var sess *supabase.Session
	if signUp {
		sess, err = auth.SignUp(email, password)
	} else {
		sess, err = auth.SignIn(email, password)
	}
	if err != nil {
		return err
	}

	path, err := supabase.DefaultSessionPath()
	if err != nil {
		return err
	}
	if err := supabase.SaveSession(path, sess); err != nil {
		return err
	}

	logger.Info("signed in", "user_id", sess.UserID)
	fmt.Printf("Signed in as %s\n", sess.Email)
	return nil
}
