package model

// Claims and gin context keys set by the JWT middleware.
const (
	UserUIDKey  = "uid"
	UserNameKey = "username"
)
