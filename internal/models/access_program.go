package models

type AccessProgram struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Company           string `json:"company"`
	Status            string `json:"status"`
	Description       string `json:"description"`
	EstimatedDelivery string `json:"estimatedDelivery"`
	Slug              string `json:"slug"`
	Price             string `json:"price"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

type Patient struct {
	ID        int    `json:"id"`
	PatientID string `json:"patientId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	ProgramID *int   `json:"programId,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// PatientInput — тело создания (POST) и частичного обновления (PATCH) пациента.
type PatientInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	DOB       string `json:"dob,omitempty"`
	Gender    string `json:"gender,omitempty"`
	PatientID string `json:"patientId,omitempty"`
	ProgramID int    `json:"programId,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
}
