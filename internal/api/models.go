package api

// Student is the server-owned record for a guardian's child. It is fetched on
// every home load and never persisted.
type Student struct {
	StudentID         string  `json:"student_id"`
	Name              string  `json:"name"`
	ClassGrade        string  `json:"class_grade"`
	ClassGradeDisplay string  `json:"class_grade_display"`
	PhoneNumber       *string `json:"phone_number"`
	Email             *string `json:"email"`
	AddressText       string  `json:"address_text"`
	Coordinates       *string `json:"coordinates"`
	LocationUpdatedAt *string `json:"location_updated_at"`
	GuardianName      string  `json:"guardian_name"`
	RoutePlan         *string `json:"route_plan"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	IsActive          bool    `json:"is_active"`
}

type googleLoginResponse struct {
	AuthURL string `json:"auth_url"`
}
