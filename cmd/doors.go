package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"room-access-control/internal/storage"
	"room-access-control/internal/utils"

	"github.com/spf13/cobra"
)

var doorsCmd = &cobra.Command{
	Use:   "doors",
	Short: "Manage doors",
	Long:  `Create, list, and delete doors, and issue signed reader ids for door controllers.`,
}

var doorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all doors",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		doors, err := provider.ListDoors(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing doors: %v\n", err)
			os.Exit(1)
		}

		if len(doors) == 0 {
			fmt.Println("No doors found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROOM\tCREATED AT")
		for _, d := range doors {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.ID, d.Name, d.Room, d.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
	},
}

var doorsCreateCmd = &cobra.Command{
	Use:   "create <name> <room>",
	Short: "Create a new door",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := storage.Door{
			Name:      args[0],
			Room:      args[1],
			CreatedAt: time.Now(),
		}

		if err := provider.CreateDoor(ctx, d); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating door: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Door '%s' for room '%s' created successfully.\n", d.Name, d.Room)
	},
}

var doorsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a door by ID",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid ID: %v\n", err)
			os.Exit(1)
		}

		if err := provider.DeleteDoor(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting door: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Door ID %d deleted successfully.\n", id)
	},
}

var doorsReaderIDCmd = &cobra.Command{
	Use:   "reader-id",
	Short: "Issue a signed reader id for a door controller",
	Long: `Generate a reader id to configure on a door controller. The id carries
an HMAC signature derived from the server secret, so the server can verify
it on every poll without a database lookup.`,
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.Secret == "" {
			fmt.Fprintln(os.Stderr, "SECRET must be configured before issuing reader ids")
			os.Exit(1)
		}

		readerID, err := utils.GenerateReaderID([]byte(cfg.Secret))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating reader id: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(readerID)
	},
}

func init() {
	rootCmd.AddCommand(doorsCmd)
	doorsCmd.AddCommand(doorsListCmd)
	doorsCmd.AddCommand(doorsCreateCmd)
	doorsCmd.AddCommand(doorsDeleteCmd)
	doorsCmd.AddCommand(doorsReaderIDCmd)
}
