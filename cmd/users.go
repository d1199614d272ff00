package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"room-access-control/internal/registry"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the RFID user registry",
	Long:  `List, import and export the user registry that maps RFID cards to people.`,
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered users",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		users, err := registry.NewService(provider).List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list users: %v\n", err)
			os.Exit(1)
		}

		if len(users) == 0 {
			fmt.Println("No users registered")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tCARD UUID\tUSER ID\tNAME\tEMAIL\tROLE")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				u.ID, u.UUID, u.UserID, u.Name, u.Email, u.Role)
		}
		w.Flush()
		fmt.Printf("\nTotal users: %d\n", len(users))
	},
}

var importUsersCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import users from a CSV file",
	Long: `Import users from a CSV file with columns uuid, user_id, first_name,
last_name, email and optionally role. UTF-8 and UTF-16 with BOM are accepted.
Rows that collide with existing records are skipped.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		result, err := registry.NewService(provider).ImportCSV(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Imported %d user(s), skipped %d\n", result.Imported, result.Skipped)
	},
}

var exportUsersCmd = &cobra.Command{
	Use:   "export [file.csv]",
	Short: "Export the user registry as CSV",
	Long:  `Export all active users as CSV. Writes to stdout unless a file is given.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		out := os.Stdout
		if len(args) > 0 {
			f, err := os.Create(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if err := registry.NewService(provider).ExportCSV(ctx, out); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var removeUserCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a registered user",
	Long:  `Soft delete a user record. The card stops resolving but the row is kept for history.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			fmt.Fprintln(os.Stderr, "id must be a positive integer")
			os.Exit(1)
		}

		if err := registry.NewService(provider).Remove(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove user %d: %v\n", id, err)
			os.Exit(1)
		}
		fmt.Printf("User %d removed\n", id)
	},
}

func init() {
	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(importUsersCmd)
	usersCmd.AddCommand(exportUsersCmd)
	usersCmd.AddCommand(removeUserCmd)
	rootCmd.AddCommand(usersCmd)
}
