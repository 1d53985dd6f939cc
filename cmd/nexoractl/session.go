package main

import (
	"fmt"
	"net/http"
	"strings"

	"nexora/internal/models"

	"github.com/guonaihong/gout"
	"github.com/spf13/cobra"
)

type signInResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Error   string       `json:"error"`
	Details string       `json:"details"`
}

type meResponse struct {
	User  *models.User `json:"user"`
	Admin bool         `json:"admin"`
	Error string       `json:"error"`
}

func (c *cli) newLoginCmd() *cobra.Command {
	var idToken string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange a Google ID token for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(idToken) == "" {
				return fmt.Errorf("--id-token is required")
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			var rsp signInResponse
			var code int
			err := gout.New(c.httpClient).POST(c.server() + "/api/auth/google").
				WithContext(ctx).
				SetJSON(gout.H{"idToken": idToken}).
				BindJSON(&rsp).
				Code(&code).
				Do()
			if err != nil {
				return fmt.Errorf("sign-in request failed: %w", err)
			}
			if code != http.StatusOK || rsp.User == nil {
				return fmt.Errorf("sign-in rejected (%d): %s %s", code, rsp.Error, rsp.Details)
			}

			subscribed := false
			sub := c.session.Subscribe(func(user *models.User) {
				if subscribed && user != nil {
					fmt.Fprintf(c.out, "Signed in as %s\n", user.Email)
				}
			})
			defer sub.Close()
			subscribed = true
			c.session.SignIn(rsp.User, rsp.Token)

			c.v.Set("token", rsp.Token)
			c.v.Set("user_id", rsp.User.ID)
			c.v.Set("email", rsp.User.Email)
			return c.saveConfig()
		},
	}
	cmd.Flags().StringVar(&idToken, "id-token", "", "Google ID token")
	return cmd
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := c.session.Subscribe(func(user *models.User) {
				if user == nil {
					fmt.Fprintln(c.out, "Signed out")
				}
			})
			defer sub.Close()
			c.session.SignOut()

			c.v.Set("token", "")
			c.v.Set("user_id", "")
			c.v.Set("email", "")
			return c.saveConfig()
		},
	}
}

func (c *cli) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			var rsp meResponse
			var code int
			err := gout.New(c.httpClient).GET(c.server() + "/api/auth/me").
				WithContext(ctx).
				SetHeader(gout.H{"Authorization": "Bearer " + c.session.Token()}).
				BindJSON(&rsp).
				Code(&code).
				Do()
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			if code != http.StatusOK || rsp.User == nil {
				return fmt.Errorf("session rejected (%d): %s", code, rsp.Error)
			}

			role := "shopper"
			if rsp.Admin {
				role = "admin"
			}
			fmt.Fprintf(c.out, "%s <%s> (%s)\n", rsp.User.Name, rsp.User.Email, role)
			return nil
		},
	}
}
