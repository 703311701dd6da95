package directory

// Role tells teachers and students apart
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Person is the display data of a teacher or student
type Person struct {
	ID    int64
	Name  string
	Email string
}

// PersonResponse - GET /teachers, GET /students
type PersonResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewPersonResponse(p Person) PersonResponse {
	return PersonResponse{ID: p.ID, Name: p.Name, Email: p.Email}
}
