// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lispendens/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change your account details",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			p, err := a.profile(ctx)
			if err != nil {
				return err
			}
			printProfile(out, p)
			return nil
		})
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile details",
	Long: `Update reads the current profile, applies the flags that were given,
and writes it back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			p, err := a.profile(ctx)
			if err != nil {
				return err
			}
			applyProfileFlags(cmd, &p)

			sess, err := a.session.Require(ctx, "update-details")
			if err != nil {
				return err
			}
			if err := a.session.Observe(ctx, a.client.UpdateDetails(ctx, sess.AccessToken, p)); err != nil {
				return err
			}
			fmt.Fprintln(out, "Profile updated.")
			printProfile(out, p)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change account settings such as your name or password",
	Long: `Set sends account fields to update-profile, e.g.

  lispendens profile set --field password=new --field password_confirmation=new`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, _ := cmd.Flags().GetStringToString("field")
		if len(fields) == 0 {
			return fmt.Errorf("give at least one --field name=value")
		}
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.accounts.UpdateProfile(ctx, fields); err != nil {
				return err
			}
			fmt.Fprintln(out, "Account updated.")
			return nil
		})
	},
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete your account and all local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this permanently deletes your account; pass --yes to confirm")
		}
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.accounts.DeleteAccount(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Account deleted.")
			return nil
		})
	},
}

// profile reads the signed-in user's profile.
func (a *portalApp) profile(ctx context.Context) (types.Profile, error) {
	sess, err := a.session.Require(ctx, "update-details")
	if err != nil {
		return types.Profile{}, err
	}
	p, err := a.client.GetDetails(ctx, sess.AccessToken)
	if err != nil {
		return types.Profile{}, a.session.Observe(ctx, err)
	}
	return p, nil
}

var profileFlags = []struct {
	name  string
	usage string
	field func(*types.Profile) *string
}{
	{"first-name", "first name", func(p *types.Profile) *string { return &p.FirstName }},
	{"last-name", "last name", func(p *types.Profile) *string { return &p.LastName }},
	{"company-name", "company name", func(p *types.Profile) *string { return &p.CompanyName }},
	{"email", "email", func(p *types.Profile) *string { return &p.Email }},
	{"phone", "phone number", func(p *types.Profile) *string { return &p.Phone }},
	{"address", "postal address", func(p *types.Profile) *string { return &p.Address }},
}

func applyProfileFlags(cmd *cobra.Command, p *types.Profile) {
	for _, pf := range profileFlags {
		if cmd.Flags().Changed(pf.name) {
			v, _ := cmd.Flags().GetString(pf.name)
			*pf.field(p) = v
		}
	}
}

func init() {
	for _, pf := range profileFlags {
		profileUpdateCmd.Flags().String(pf.name, "", pf.usage)
	}
	profileSetCmd.Flags().StringToString("field", nil, "account field as name=value (repeatable)")
	deleteAccountCmd.Flags().Bool("yes", false, "confirm deletion")
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileSetCmd)

	rootCmd.AddCommand(profileCmd, deleteAccountCmd)
}
