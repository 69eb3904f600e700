package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/users"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	Example: `  financehubctl user create --email ana@dezuca.com --name "Ana Pérez" \
    --role gerente_tienda --store 3f1c... --password 'Segura#2024'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		email, _ := flags.GetString("email")
		name, _ := flags.GetString("name")
		role, _ := flags.GetString("role")
		store, _ := flags.GetString("store")
		password, _ := flags.GetString("password")
		perms, _ := flags.GetStringSlice("permission")

		extra := make([]rbac.Permission, 0, len(perms))
		for _, p := range perms {
			extra = append(extra, rbac.Permission(p))
		}

		rt, err := openRuntime(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer rt.Close()
		svc := rt.services()
		if err := svc.Settings.Load(cmd.Context()); err != nil {
			return err
		}
		created, err := svc.Users.Create(cmd.Context(), systemPrincipal, users.CreateInput{
			Email:           email,
			FullName:        name,
			Role:            rbac.Role(role),
			AssignedStoreID: store,
			Permissions:     extra,
			Password:        password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s created with id %s\n", created.Email, created.ID)
		return nil
	},
}

func init() {
	flags := userCreateCmd.Flags()
	flags.String("email", "", "Login email")
	flags.String("name", "", "Full name")
	flags.String("role", string(rbac.RoleCajero), "Role: director, admin_contable, gerente_tienda, cajero or asistente_admin")
	flags.String("store", "", "Assigned store id for store-scoped roles")
	flags.String("password", "", "Initial password")
	flags.StringSlice("permission", nil, "Extra permission granted on top of the role, repeatable")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
