package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage console accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		page, err := listPage[console.User](cmd, client, "users")
		if err != nil {
			return err
		}

		return render(outputFormat(cmd), page, func() {
			t := newTable("ID", "EMAIL", "NAME", "ROLES", "ACTIVE")
			for _, u := range page.Items {
				t.addRow(u.ID, u.Email, u.FirstName+" "+u.LastName,
					strings.Join(u.RoleNames(), ","), fmt.Sprintf("%t", u.IsActive))
			}
			t.render()
			pageFooter(page.PageIndex, page.TotalPages, page.TotalCount)
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		user, err := client.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(outputFormat(cmd), user, func() {
			info("ID:     %s", user.ID)
			info("Email:  %s", user.Email)
			info("Name:   %s %s", user.FirstName, user.LastName)
			info("Roles:  %s", strings.Join(user.RoleNames(), ", "))
			info("Active: %t", user.IsActive)
		})
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")
		password, _ := cmd.Flags().GetString("password")
		roleIDs, _ := cmd.Flags().GetStringSlice("role")

		user, err := client.CreateUser(cmd.Context(), console.CreateUserRequest{
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			Password:  password,
			RoleIDs:   roleIDs,
		})
		if err != nil {
			if console.IsValidation(err) {
				return fmt.Errorf("invalid input: %w", err)
			}
			return err
		}

		success("Created user %s (%s)", user.Email, user.ID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}
		if err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		success("Deleted user %s", args[0])
		return nil
	},
}

var usersRolesCmd = &cobra.Command{
	Use:   "roles <id>",
	Short: "Add or remove a role on an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		add, _ := cmd.Flags().GetString("add")
		remove, _ := cmd.Flags().GetString("remove")
		switch {
		case add != "" && remove != "":
			return fmt.Errorf("use either --add or --remove, not both")
		case add != "":
			if err := client.PatchUserRoles(cmd.Context(), args[0], console.RoleOpAdd, add); err != nil {
				return err
			}
			success("Added role %s", add)
		case remove != "":
			if err := client.PatchUserRoles(cmd.Context(), args[0], console.RoleOpRemove, remove); err != nil {
				return err
			}
			success("Removed role %s", remove)
		default:
			return fmt.Errorf("one of --add or --remove is required")
		}
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the role catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}
		roles, err := client.Roles(cmd.Context())
		if err != nil {
			return err
		}
		return render(outputFormat(cmd), roles, func() {
			t := newTable("ID", "NAME", "DEFAULT")
			for _, r := range roles {
				t.addRow(r.ID, r.Name, fmt.Sprintf("%t", r.IsDefault))
			}
			t.render()
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(rolesCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersRolesCmd)

	addListFlags(usersListCmd, "email")

	usersCreateCmd.Flags().String("email", "", "Email address")
	usersCreateCmd.Flags().String("first-name", "", "First name")
	usersCreateCmd.Flags().String("last-name", "", "Last name")
	usersCreateCmd.Flags().String("password", "", "Initial password")
	usersCreateCmd.Flags().StringSlice("role", nil, "Role ID to assign (repeatable)")
	usersCreateCmd.MarkFlagRequired("email")
	usersCreateCmd.MarkFlagRequired("password")

	usersRolesCmd.Flags().String("add", "", "Role ID to add")
	usersRolesCmd.Flags().String("remove", "", "Role ID to remove")
}
