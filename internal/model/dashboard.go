package model

type Tier string

const (
	TierGood    Tier = "good"
	TierWarning Tier = "warning"
	TierPoor    Tier = "poor"
)

// PassingAverage is the lowest average counted as passing.
const PassingAverage = 7.0

type CourseView struct {
	CourseSummary
	AverageText string  `json:"averageText"`
	Percentage  float64 `json:"percentage"`
	Tier        Tier    `json:"tier"`
}

type StudentDashboard struct {
	Identity       Identity     `json:"identity"`
	StudentID      string       `json:"studentId"`
	CourseCount    int          `json:"courseCount"`
	OverallAverage string       `json:"overallAverage"`
	Courses        []CourseView `json:"courses"`
	TotalGrades    int          `json:"totalGrades"`
	PassingCourses int          `json:"passingCourses"`
	PassingRatio   float64      `json:"passingRatio"`
}

type TeacherDashboard struct {
	Identity Identity `json:"identity"`
}
