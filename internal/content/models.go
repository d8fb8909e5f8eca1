package content

// Course, Lesson and Chapter are the content entities assessments attach to.
// Their CRUD lives elsewhere; this package only exposes the active-entity
// lookups the registry and the completion aggregator depend on.

type Course struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"` // active|archived
}

type Lesson struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Position int    `json:"position"`
}

type Chapter struct {
	ID       string `json:"id"`
	LessonID string `json:"lesson_id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Position int    `json:"position"`
}
