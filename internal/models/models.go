package models

// Trainer is the backend's representation of a trainer as surfaced to
// clients: identity plus the code used for linking.
type Trainer struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	TrainerCode string `json:"trainer_code,omitempty"`
}

// IntakeRecord is one logged food intake, re-serialized before forwarding so
// the backend always receives correctly typed numeric fields.
type IntakeRecord struct {
	UserID      string   `json:"user_id"`
	ProductName string   `json:"product_name"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Fiber       *float64 `json:"fiber,omitempty"`
	Sugar       *float64 `json:"sugar,omitempty"`
	Sodium      *float64 `json:"sodium,omitempty"`
	MealType    string   `json:"meal_type,omitempty"`
	IntakeDate  string   `json:"intake_date,omitempty"`
	IntakeTime  string   `json:"intake_time,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
}

// TrainerStatus is the reshaped /client/check-trainer response.
type TrainerStatus struct {
	HasTrainer bool      `json:"has_trainer"`
	Trainers   []Trainer `json:"trainers"`
	Trainer    *Trainer  `json:"trainer,omitempty"`
}
