package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strings"
	"text/tabwriter"

	"room-access-control/internal/booking"
	"room-access-control/internal/identity"
	"room-access-control/internal/storage"

	"github.com/spf13/cobra"
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Manage room bookings",
	Long:  `Manage room bookings, including listing, approving, and rejecting booking requests.`,
}

// getActiveUser returns a string identifying who is performing the action
// Format: username@hostname
func getActiveUser() string {
	username := "unknown"
	if currentUser, err := user.Current(); err == nil {
		username = currentUser.Username
	}

	hostname := "unknown"
	// Check environment variable first for SSH sessions
	if h := os.Getenv("SSH_CLIENT"); h != "" {
		sshClient := strings.Split(h, " ")
		if len(sshClient) > 0 {
			hostname = sshClient[0]
		}
	} else if h, err := os.Hostname(); err == nil {
		hostname = h
	}

	return fmt.Sprintf("%s@%s", username, hostname)
}

// operatorIdentity is the identity CLI actions run under. The console is a
// trusted surface, so it carries approval rights regardless of email domain.
func operatorIdentity() identity.Identity {
	return identity.Identity{
		SubjectID: "cli",
		Email:     getActiveUser(),
		Role:      "admin",
	}
}

// bookingService builds the workflow service wired to the CLI provider.
func bookingService() *booking.Service {
	policy := identity.NewPolicy(cfg.Policy.MemberSuffix, cfg.Policy.ApproverSuffix)
	policy.ApproverRoles = append(policy.ApproverRoles, "admin")
	return booking.NewService(provider, policy, cfg.Booking.Quota)
}

var bookingsListCmd = &cobra.Command{
	Use:   "list [status]",
	Short: "List bookings",
	Long:  `List bookings by status. Valid statuses: pending, approved, rejected, all. Defaults to pending.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Default to pending status
		filter := storage.BookingStatusPending
		all := false
		if len(args) > 0 {
			switch args[0] {
			case "pending":
				filter = storage.BookingStatusPending
			case "approved":
				filter = storage.BookingStatusApproved
			case "rejected":
				filter = storage.BookingStatusRejected
			case "all":
				all = true
			default:
				slog.Error("Invalid status", "status", args[0])
				fmt.Println("Valid statuses: pending, approved, rejected, all")
				os.Exit(1)
			}
		}

		bookings, err := provider.ListAllBookings(ctx)
		if err != nil {
			slog.Error("Failed to list bookings", "error", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tROOM\tDATE\tTIME\tOWNER\tSTATUS\tAPPROVED BY\tREMARK")
		count := 0
		for _, b := range bookings {
			if !all && b.Status != filter {
				continue
			}
			count++
			fmt.Fprintf(w, "%d\t%s\t%s\t%s-%s\t%s\t%s\t%s\t%s\n",
				b.ID,
				b.Room,
				b.Date,
				b.StartTime, b.EndTime,
				b.OwnerName(),
				b.Status,
				b.ApprovedBy,
				b.Remark,
			)
		}
		w.Flush()

		if count == 0 {
			if all {
				fmt.Println("No bookings found")
			} else {
				fmt.Printf("No %s bookings found\n", filter)
			}
		}
	},
}

var bookingsApproveCmd = &cobra.Command{
	Use:   "approve <booking_id> [remark]",
	Short: "Approve a pending booking",
	Long:  `Approve a pending booking. Fails if the slot now overlaps another approved booking.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		id, err := booking.ParseBookingID(args[0])
		if err != nil {
			slog.Error("Invalid booking id", "booking_id", args[0], "error", err)
			os.Exit(1)
		}
		remark := ""
		if len(args) > 1 {
			remark = args[1]
		}

		if err := bookingService().Approve(ctx, operatorIdentity(), id, remark); err != nil {
			slog.Error("Failed to approve booking", "booking_id", id, "error", err)
			fmt.Printf("Could not approve booking %d: %v\n", id, err)
			os.Exit(1)
		}

		fmt.Printf("Booking %d approved by %s\n", id, getActiveUser())
	},
}

var bookingsRejectCmd = &cobra.Command{
	Use:   "reject <booking_id> [remark]",
	Short: "Reject a booking",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		id, err := booking.ParseBookingID(args[0])
		if err != nil {
			slog.Error("Invalid booking id", "booking_id", args[0], "error", err)
			os.Exit(1)
		}
		remark := ""
		if len(args) > 1 {
			remark = args[1]
		}

		if err := bookingService().Reject(ctx, operatorIdentity(), id, remark); err != nil {
			slog.Error("Failed to reject booking", "booking_id", id, "error", err)
			fmt.Printf("Could not reject booking %d: %v\n", id, err)
			os.Exit(1)
		}

		fmt.Printf("Booking %d rejected by %s\n", id, getActiveUser())
	},
}

var bookingsDeleteCmd = &cobra.Command{
	Use:   "delete <booking_id>",
	Short: "Delete a booking",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		id, err := booking.ParseBookingID(args[0])
		if err != nil {
			slog.Error("Invalid booking id", "booking_id", args[0], "error", err)
			os.Exit(1)
		}

		if err := bookingService().Delete(ctx, operatorIdentity(), id); err != nil {
			slog.Error("Failed to delete booking", "booking_id", id, "error", err)
			fmt.Printf("Could not delete booking %d: %v\n", id, err)
			os.Exit(1)
		}

		fmt.Printf("Booking %d deleted\n", id)
	},
}

func init() {
	bookingsCmd.AddCommand(bookingsListCmd)
	bookingsCmd.AddCommand(bookingsApproveCmd)
	bookingsCmd.AddCommand(bookingsRejectCmd)
	bookingsCmd.AddCommand(bookingsDeleteCmd)
	rootCmd.AddCommand(bookingsCmd)
}
