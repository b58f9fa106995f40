package generation

import (
	"bytes"
	"fmt"
	"text/template"
)

// Prompt templates shared by all generator implementations. The response
// format instructions must stay in lockstep with the envelope types in
// sanitize.go; the sanitizer rejects anything that deviates from them.
const syllabusPromptTemplate = `You are designing a study syllabus for the subject below.

Subject: {{.ProjectName}}
{{- if .Level}}
Learner level: {{.Level}}
{{- end}}
{{- if .Notes}}
Learner notes: {{.Notes}}
{{- end}}
{{- if .SourceText}}

Base the syllabus on this source material:
{{.SourceText}}
{{- end}}

List the distinct concepts a learner must master, ordered from foundational
to advanced. Produce between 20 and 30 concepts. Each concept name must be
short, at most 50 characters, and must not repeat another entry.

Respond with a single JSON object and nothing else, in exactly this shape:
{"syllabus": ["First Concept", "Second Concept"]}`

const quizPromptTemplate = `You are writing a quiz for a learner studying: {{.ProjectName}}
{{- if .Level}}
Learner level: {{.Level}}
{{- end}}

The syllabus for this subject is:
{{- range .Syllabus}}
- {{.}}
{{- end}}
{{- if .FocusConcepts}}

This quiz must concentrate on the learner's weak areas. Draw every question
from these concepts:
{{- range .FocusConcepts}}
- {{.}}
{{- end}}
{{- end}}

Write exactly {{.ItemCount}} questions, mixing multiple choice and
true/false formats.

Respond with a single JSON object and nothing else, in exactly this shape:
{"quiz": [{"id": 1, "type": "MCQ", "question_text": "...", "options": ["A", "B", "C", "D"], "correct_answer": "A", "primary_concept": "...", "detailed_explanation": "..."}]}

Rules for every question:
- "id" is a unique integer, numbered from 1.
- "type" is "MCQ" or "T/F".
- "options" holds exactly 4 choices for MCQ and exactly ["True", "False"] for T/F.
- "correct_answer" repeats one of the options verbatim.
- "primary_concept" is copied verbatim from the syllabus above.
- "detailed_explanation" teaches why the answer is correct.
- Do not add any other keys.`

const analogyPromptTemplate = `A learner studying {{.ProjectName}}{{if .Level}} at {{.Level}} level{{end}} is stuck on this concept:

{{.Concept}}

Explain it with one vivid analogy from everyday life, in at most four
sentences.

Respond with a single JSON object and nothing else, in exactly this shape:
{"analogy": "..."}`

var (
	syllabusPrompt = template.Must(template.New("syllabus").Parse(syllabusPromptTemplate))
	quizPrompt     = template.Must(template.New("quiz").Parse(quizPromptTemplate))
	analogyPrompt  = template.Must(template.New("analogy").Parse(analogyPromptTemplate))
)

// BuildSyllabusPrompt renders the syllabus generation prompt.
func BuildSyllabusPrompt(req SyllabusRequest) (string, error) {
	return render(syllabusPrompt, req)
}

// BuildQuizPrompt renders the quiz generation prompt. The same template
// serves focused and general rounds; a round is focused exactly when
// FocusConcepts is non-empty.
func BuildQuizPrompt(req QuizRequest) (string, error) {
	return render(quizPrompt, req)
}

// BuildAnalogyPrompt renders the analogy prompt.
func BuildAnalogyPrompt(req AnalogyRequest) (string, error) {
	return render(analogyPrompt, req)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: rendering %s prompt: %v", ErrInvalidConfig, tmpl.Name(), err)
	}
	return buf.String(), nil
}
