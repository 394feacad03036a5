package content

import "github.com/abhisek/eduagent/internal/llm"

const demoContent = `{
"explanation": "Plants make their own food in a process called photosynthesis. Their leaves catch sunlight and use it to turn water and air into sugar.\n\nThe sugar gives the plant energy to grow. While they do this, plants let out oxygen, which people and animals need to breathe.",
"mcqs": [
{ "question": "What do plants use to make food?", "options": ["A) Sunlight", "B) Sand", "C) Plastic", "D) Music"], "answer": "A" },
{ "question": "Which gas do plants give off?", "options": ["A) Smoke", "B) Oxygen", "C) Steam", "D) Helium"], "answer": "B" },
{ "question": "Which part of the plant catches sunlight?", "options": ["A) Roots", "B) Seeds", "C) Leaves", "D) Bark"], "answer": "C" }
]
}`

const demoReview = `{"status": "pass", "feedback": []}`

// SeedDemo registers canned answers on a mock provider so the server and
// studio can run without a model.
func SeedDemo(m *llm.MockProvider) {
	m.SetPurposeResponse(PurposeGenerate, llm.MockText(demoContent))
	m.SetPurposeResponse(PurposeRefine, llm.MockText(demoContent))
	m.SetPurposeResponse(PurposeReview, llm.MockText(demoReview))
}
