package dto

type LogoutResponse struct {
	OK bool `json:"ok"`
}
