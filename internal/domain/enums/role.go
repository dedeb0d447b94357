package enums

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)
