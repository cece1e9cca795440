package types

// LoginRequest 登录请求.
type LoginRequest struct {
	Email    string `json:"email"    form:"email"    rule:"required"`
	Password string `json:"password" form:"password" rule:"required"`
}

// LoginResponse 登录成功响应.
type LoginResponse struct {
	OK    bool   `json:"ok"`
	Email string `json:"email"`
}

// MeResponse 当前会话信息，匿名时 email 为 null.
type MeResponse struct {
	IsAdmin bool    `json:"isAdmin"`
	Email   *string `json:"email"`
}

// OKResponse 无数据的成功响应.
type OKResponse struct {
	OK bool `json:"ok"`
}
