package users

import "time"

// DefaultStorageQuota is the storage ceiling assigned to new owners (5 GiB).
const DefaultStorageQuota = int64(5 << 30)

// User is a file owner. StorageQuota/StorageUsed are the owner's ledger:
// StorageUsed is maintained in the same transaction as every file write
// and delete, so it always equals the sum of the owner's stored bytes.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	Role         string    `json:"role"`
	StorageQuota int64     `json:"storageQuota"`
	StorageUsed  int64     `json:"storageUsed"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == "admin" }
