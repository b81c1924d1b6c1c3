package types

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Gender          string `json:"gender"`
	DOB             string `json:"dob"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Gender *string `json:"gender,omitempty"`
	DOB    *string `json:"dob,omitempty"`
}

type Profile struct {
	ID         int     `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Gender     string  `json:"gender"`
	DOB        *string `json:"dob,omitempty"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	DateJoined string  `json:"date_joined"`
}

type AuthResponse struct {
	Message string  `json:"message"`
	User    Profile `json:"user"`
	Token   string  `json:"token,omitempty"`
}
