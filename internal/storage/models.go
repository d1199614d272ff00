package storage

import "time"

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusApproved BookingStatus = "approved"
	BookingStatusRejected BookingStatus = "rejected"
)

// Booking is a room booking request moving through the approval workflow.
// Date is a YYYY-MM-DD string, StartTime/EndTime are zero-padded HH:MM
// strings compared lexically within the same room and date.
type Booking struct {
	ID         int64         `db:"id" json:"id"`
	OwnerID    string        `db:"owner_id" json:"owner_id"`
	OwnerEmail string        `db:"owner_email" json:"owner_email"`
	Room       string        `db:"room" json:"room"`
	Date       string        `db:"date" json:"date"`
	StartTime  string        `db:"start_time" json:"start_time"`
	EndTime    string        `db:"end_time" json:"end_time"`
	Detail     string        `db:"detail" json:"detail,omitempty"`
	Status     BookingStatus `db:"status" json:"status"`
	ApprovedBy string        `db:"approved_by" json:"approved_by,omitempty"`
	Remark     string        `db:"remark" json:"remark,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingWithOwner joins the owner's registry name onto a booking for
// the admin listing.
type BookingWithOwner struct {
	Booking
	FirstName string `db:"first_name" json:"first_name,omitempty"`
	LastName  string `db:"last_name" json:"last_name,omitempty"`
}

// OwnerName returns a display name, falling back to the email snapshot.
func (b *BookingWithOwner) OwnerName() string {
	if b.FirstName == "" {
		return b.OwnerEmail
	}
	return b.FirstName + " " + b.LastName
}

// User is a registry entry keyed by RFID tag UUID. Registry deletion is a
// soft delete, unlike bookings which are removed outright.
type User struct {
	ID        int64     `db:"id" json:"id"`
	UUID      string    `db:"uuid" json:"uuid"`
	UserID    string    `db:"user_id" json:"user_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	IsDeleted bool      `db:"is_deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AdminUser is a credentialed account for the admin console.
type AdminUser struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
}

// Door is a registered doorway that readers poll for commands.
type Door struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Room      string     `db:"room" json:"room"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at,omitempty" json:"-"`
}
