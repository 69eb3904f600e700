package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/financehub/financehub/internal/app"
	"github.com/financehub/financehub/internal/platform/db"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/stores"
	"github.com/financehub/financehub/internal/users"
)

type seedUser struct {
	email string
	name  string
	role  rbac.Role
	store string
}

var seedStores = []stores.StoreInput{
	{Name: "Tienda Centro", Location: "Centro", OpeningHours: "08:00-20:00"},
	{Name: "Tienda Norte", Location: "Norte", OpeningHours: "08:00-20:00"},
}

var seedUsers = []seedUser{
	{"admin@financehub.com", "Administrador General", rbac.RoleDirector, ""},
	{"contable@financehub.com", "Administración Contable", rbac.RoleAdminContable, ""},
	{"gerente.centro@financehub.com", "Gerente Centro", rbac.RoleGerenteTienda, "Tienda Centro"},
	{"gerente.norte@financehub.com", "Gerente Norte", rbac.RoleGerenteTienda, "Tienda Norte"},
	{"cajero.centro@financehub.com", "Cajero Centro", rbac.RoleCajero, "Tienda Centro"},
	{"asistente@financehub.com", "Asistente Administrativo", rbac.RoleAsistenteAdmin, ""},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo stores and accounts when missing",
	Long: `seed applies the schema, then creates the demo stores and one account per
role. Existing stores and accounts are left untouched, so the command can run
repeatedly.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, _ := cmd.Flags().GetString("password")
		rt, err := openRuntime(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := db.Migrate(cmd.Context(), rt.pool); err != nil {
			return err
		}
		svc := rt.services()
		if err := svc.Settings.Load(cmd.Context()); err != nil {
			return err
		}
		return seed(cmd.Context(), cmd.OutOrStdout(), svc, password)
	},
}

func init() {
	seedCmd.Flags().String("password", "Financehub#2024", "Password given to every seeded account")
	rootCmd.AddCommand(seedCmd)
}

func seed(ctx context.Context, out io.Writer, svc *app.Services, password string) error {
	existing, err := svc.Stores.List(ctx, systemPrincipal, false)
	if err != nil {
		return err
	}
	byName := make(map[string]string, len(existing))
	for _, s := range existing {
		byName[strings.ToLower(s.Name)] = s.ID
	}
	for _, in := range seedStores {
		if _, ok := byName[strings.ToLower(in.Name)]; ok {
			continue
		}
		created, err := svc.Stores.Create(ctx, systemPrincipal, in)
		if err != nil {
			return fmt.Errorf("seed store %s: %w", in.Name, err)
		}
		byName[strings.ToLower(created.Name)] = created.ID
		fmt.Fprintf(out, "store %s created (%s)\n", created.Name, created.ID)
	}

	for _, u := range seedUsers {
		_, err := svc.Users.GetByEmail(ctx, u.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, users.ErrUserNotFound) {
			return err
		}
		in := users.CreateInput{Email: u.email, FullName: u.name, Role: u.role, Password: password}
		if u.store != "" {
			in.AssignedStoreID = byName[strings.ToLower(u.store)]
		}
		created, err := svc.Users.Create(ctx, systemPrincipal, in)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
		fmt.Fprintf(out, "user %s created (%s)\n", created.Email, created.Role)
	}
	return nil
}
