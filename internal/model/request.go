package model

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,contains=@"`
	Password string `json:"password" validate:"min=6"`
	Role     Role   `json:"-" validate:"oneof=student teacher"`
}

type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required"`
}

// GradeForm carries the raw form values; Grade stays a string until it has
// been checked for emptiness and parsed.
type GradeForm struct {
	CourseID  string `validate:"required"`
	StudentID string `validate:"required"`
	Grade     string `validate:"required"`
}

type CreateGradeRequest struct {
	CourseID  string  `json:"courseId"`
	StudentID string  `json:"studentId"`
	Grade     float64 `json:"grade" validate:"gte=0,lte=10"`
}

type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InputInfo struct {
	Courses  []Option `json:"courses"`
	Students []Option `json:"students"`
}

type CourseSummary struct {
	CourseID   string  `json:"courseId"`
	CourseName string  `json:"courseName"`
	Average    float64 `json:"average"`
	GradeCount int     `json:"gradeCount"`
}

type StudentInfo struct {
	StudentID      string          `json:"studentId"`
	CourseCount    int             `json:"courseCount"`
	OverallAverage float64         `json:"overallAverage"`
	Summaries      []CourseSummary `json:"summaries"`
}
