package audit

import "time"

// UserRoleChangeLog is append-only; rows are removed only by the retention job.
type UserRoleChangeLog struct {
	ID              int64     `gorm:"primaryKey"`
	UserID          int64     `gorm:"column:user_id;not null;index"`
	PreviousRoleID  int64     `gorm:"column:previous_role_id;not null"`
	NewRoleID       int64     `gorm:"column:new_role_id;not null"`
	ChangedByUserID int64     `gorm:"column:changed_by_user_id;not null"`
	Reason          string    `gorm:"column:reason;size:500"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
}

func (UserRoleChangeLog) TableName() string {
	return "user_role_change_logs"
}

// PasswordChangeLog stores the previous hash for forensic purposes only;
// it is never used for verification.
type PasswordChangeLog struct {
	ID                   int64     `gorm:"primaryKey"`
	UserID               int64     `gorm:"column:user_id;not null;index"`
	ChangedByUserID      int64     `gorm:"column:changed_by_user_id;not null"`
	ChangeType           string    `gorm:"column:change_type;not null"`
	IPAddress            string    `gorm:"column:ip_address"`
	UserAgent            string    `gorm:"column:user_agent"`
	PreviousPasswordHash string    `gorm:"column:previous_password_hash"`
	CreatedAt            time.Time `gorm:"column:created_at;index"`
}

func (PasswordChangeLog) TableName() string {
	return "password_change_logs"
}

type PasswordHistory struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

func (PasswordHistory) TableName() string {
	return "password_histories"
}
