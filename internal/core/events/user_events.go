package events

// User lifecycle event types consumed by the notification module.
const (
	UserRegistered      = "user.registered"
	UserRoleChanged     = "user.role_changed"
	UserPasswordChanged = "user.password_changed"
)

func NewUserRegisteredEvent(userID int64, username, email string) BaseEvent {
	return NewBaseEvent(UserRegistered, map[string]interface{}{
		"user_id":  userID,
		"username": username,
		"email":    email,
	})
}

func NewUserRoleChangedEvent(userID int64, username, email, previousRole, newRole, changedBy string) BaseEvent {
	return NewBaseEvent(UserRoleChanged, map[string]interface{}{
		"user_id":       userID,
		"username":      username,
		"email":         email,
		"previous_role": previousRole,
		"new_role":      newRole,
		"changed_by":    changedBy,
	})
}

func NewUserPasswordChangedEvent(userID int64, username, email string) BaseEvent {
	return NewBaseEvent(UserPasswordChanged, map[string]interface{}{
		"user_id":  userID,
		"username": username,
		"email":    email,
	})
}
