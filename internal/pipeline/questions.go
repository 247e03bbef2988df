package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

const questionsSystemPromptTmpl = `You are an expert question generator for product information.

Your task: Generate %d diverse, user-focused questions about the given product with accurate answers.

REQUIREMENTS:
1. Generate EXACTLY %d or more questions
2. Each question must have a clear, accurate answer based ONLY on the provided product data
3. Distribute questions across these categories: %s
4. Questions should be natural and user-focused (what real customers would ask)
5. Answers must be factual, concise, and derived from product information
6. If data is missing for a question, provide a generic but helpful answer

OUTPUT FORMAT (strict JSON):
{
  "questions": [
    {
      "question_text": "Question here?",
      "answer": "Answer here based on product data.",
      "category": "One of the valid categories",
      "related_fields": ["field1", "field2"],
      "priority": "high/medium/low"
    }
  ]
}

VALID CATEGORIES: %s

Return ONLY the JSON object, no other text.`

// rawQuestion is the wire shape of one generated question entry.
type rawQuestion struct {
	QuestionText  string   `json:"question_text"`
	Answer        string   `json:"answer"`
	Category      string   `json:"category"`
	RelatedFields []string `json:"related_fields"`
	Priority      string   `json:"priority"`
}

// QuestionsStep asks the completer for categorized question/answer pairs and
// validates each one. Invalid entries are dropped with a warning; producing
// fewer than minQuestions valid entries is also only a warning.
func QuestionsStep(ctx context.Context, st model.State, c Completer, minQuestions int) (model.Delta, error) {
	if st.Product == nil {
		return model.Delta{}, missingDependency("questions: no product model in state")
	}

	categories := strings.Join(model.QuestionCategories, ", ")
	system := fmt.Sprintf(questionsSystemPromptTmpl, minQuestions, minQuestions, categories, categories)
	user := fmt.Sprintf("Product Information:\n%s\n\nGenerate %d comprehensive questions with answers for this product.",
		productContext(st.Product), minQuestions)

	reply, usage, err := c.Complete(ctx, system, user)
	if err != nil {
		return model.Delta{Usage: usage}, eris.Wrap(err, "questions: completion")
	}

	var payload struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &payload); err != nil {
		return model.Delta{Usage: usage}, generationParseError(eris.Wrap(err, "questions: decode reply"))
	}

	var warnings []string
	questions := make([]model.Question, 0, len(payload.Questions))
	for _, rq := range payload.Questions {
		q, err := model.NewQuestion(rq.QuestionText, rq.Answer, rq.Category, rq.RelatedFields, model.Priority(rq.Priority), "llm")
		if err != nil {
			warnings = append(warnings, "questions: skipping invalid question: "+err.Error())
			zap.L().Warn("skipping invalid question", zap.Error(err))
			continue
		}
		questions = append(questions, *q)
	}

	if len(questions) < minQuestions {
		warnings = append(warnings, fmt.Sprintf("questions: generated %d questions, expected %d", len(questions), minQuestions))
	}

	byCategory := model.GroupByCategory(questions)
	zap.L().Info("generated questions",
		zap.Int("count", len(questions)),
		zap.Int("categories", len(byCategory)),
	)

	return model.Delta{
		Questions:  questions,
		ByCategory: byCategory,
		Warnings:   warnings,
		Usage:      usage,
	}, nil
}
