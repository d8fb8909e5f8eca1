package assess

type Choice struct {
	ID        string `json:"id,omitempty"`
	LabelHTML string `json:"label_html,omitempty"`
}

type Question struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"` // mcq_single, mcq_multi, true_false, short_word
	PromptHTML string   `json:"prompt_html,omitempty"`
	Choices    []Choice `json:"choices,omitempty"`
	AnswerKey  []string `json:"answer_key,omitempty"`
	Points     float64  `json:"points"`
}

// Assessment is the stored definition. Ids are small integers allocated
// lowest-unused-first; a fork records its origin in BasedOnAssessmentID.
type Assessment struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Questions           []Question `json:"questions"`
	CreatedBy           string     `json:"created_by,omitempty"` // empty for legacy definitions
	BasedOnAssessmentID *int64     `json:"based_on_assessment_id,omitempty"`
	CreatedAt           int64      `json:"created_at,omitempty"`
	UpdatedAt           int64      `json:"updated_at,omitempty"`
}

// StudentView strips answer keys before a definition leaves the server.
func (a Assessment) StudentView() Assessment {
	out := a
	out.Questions = make([]Question, len(a.Questions))
	copy(out.Questions, a.Questions)
	for i := range out.Questions {
		out.Questions[i].AnswerKey = nil
	}
	return out
}
