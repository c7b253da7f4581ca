// Модели REST-бэкенда портала (JSON как есть, без преобразований).
package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	JobRole        string `json:"jobRole"`
	LicenseNumber  string `json:"licenseNumber"`
	Extension      string `json:"extension"`
	InstituteName  string `json:"instituteName"`
	AddressLine1   string `json:"addressLine1"`
	TownCity       string `json:"townCity"`
	Country        string `json:"country"`
	MedicineSearch string `json:"medicineSearch"`
}

// AuthResponse — ответ signin/signup/refresh/activate-account.
// Часть ручек отдаёт токены в snake_case.
type AuthResponse struct {
	Message         string `json:"message,omitempty"`
	AccessToken     string `json:"accessToken,omitempty"`
	RefreshToken    string `json:"refreshToken,omitempty"`
	AccessTokenAlt  string `json:"access_token,omitempty"`
	RefreshTokenAlt string `json:"refresh_token,omitempty"`
	User            *User  `json:"user,omitempty"`
}

// Tokens возвращает пару с учётом обоих вариантов именования.
func (r AuthResponse) Tokens() (access, refresh string) {
	access, refresh = r.AccessToken, r.RefreshToken
	if access == "" {
		access = r.AccessTokenAlt
	}
	if refresh == "" {
		refresh = r.RefreshTokenAlt
	}

	return access, refresh
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Code string `json:"code"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// User — профиль пользователя. Name может отсутствовать: тогда его собирают из First/LastName.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// DisplayName — Name или "First Last".
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}

	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// ProfileUpdate — частичное обновление профиля (PUT /auth/profile).
type ProfileUpdate struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
}
