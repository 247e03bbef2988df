package model

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
)

// BlockType identifies the kind of content a block carries.
type BlockType string

const (
	BlockOverview    BlockType = "overview"
	BlockBenefits    BlockType = "benefits"
	BlockUsage       BlockType = "usage"
	BlockIngredients BlockType = "ingredients"
	BlockSafety      BlockType = "safety"
	BlockPrice       BlockType = "price"
	BlockComparison  BlockType = "comparison"
	BlockFAQAnswer   BlockType = "faq_answer"
)

// AllBlockTypes returns the closed set of valid block types.
func AllBlockTypes() []BlockType {
	return []BlockType{
		BlockOverview, BlockBenefits, BlockUsage, BlockIngredients,
		BlockSafety, BlockPrice, BlockComparison, BlockFAQAnswer,
	}
}

// BlockFormat describes how block content is encoded.
type BlockFormat string

const (
	FormatPlainText  BlockFormat = "plain_text"
	FormatStructured BlockFormat = "structured_data"
	FormatMarkdown   BlockFormat = "markdown"
	FormatHTML       BlockFormat = "html"
)

// BlockStatus describes how complete the generated content is.
type BlockStatus string

const (
	StatusBlockComplete BlockStatus = "complete"
	StatusBlockPartial  BlockStatus = "partial"
	StatusBlockMissing  BlockStatus = "missing"
	StatusBlockError    BlockStatus = "error"
)

// ContentBlock is one reusable piece of derived content. Content is either a
// plain string or a string-keyed structure. Blocks are immutable after
// construction.
type ContentBlock struct {
	ID           string      `json:"block_id"`
	Type         BlockType   `json:"block_type"`
	Content      any         `json:"content"`
	SourceFields []string    `json:"source_fields"`
	Format       BlockFormat `json:"format"`
	Dependencies []string    `json:"dependencies,omitempty"`
	Reusable     bool        `json:"reusable"`
	Status       BlockStatus `json:"validation_status"`
	GeneratedBy  string      `json:"generated_by"`
	CreatedAt    time.Time   `json:"created_at"`
	TokenCount   int         `json:"token_count,omitempty"`
}

// BlockParams carries the inputs to NewContentBlock. Format defaults to
// plain_text and Status to complete when left empty.
type BlockParams struct {
	ID           string
	Type         BlockType
	Content      any
	SourceFields []string
	Format       BlockFormat
	Dependencies []string
	Reusable     bool
	Status       BlockStatus
	GeneratedBy  string
}

// NewContentBlock validates the closed enumerations and constructs a block.
// Out-of-enumeration type, format, or status values fail immediately.
func NewContentBlock(p BlockParams) (*ContentBlock, error) {
	if !validBlockType(p.Type) {
		return nil, eris.Errorf("content block: invalid block_type %q", p.Type)
	}
	if p.Format == "" {
		p.Format = FormatPlainText
	}
	switch p.Format {
	case FormatPlainText, FormatStructured, FormatMarkdown, FormatHTML:
	default:
		return nil, eris.Errorf("content block: invalid format %q", p.Format)
	}
	if p.Status == "" {
		p.Status = StatusBlockComplete
	}
	switch p.Status {
	case StatusBlockComplete, StatusBlockPartial, StatusBlockMissing, StatusBlockError:
	default:
		return nil, eris.Errorf("content block: invalid validation_status %q", p.Status)
	}
	if p.GeneratedBy == "" {
		p.GeneratedBy = "content_blocks"
	}

	b := &ContentBlock{
		ID:           p.ID,
		Type:         p.Type,
		Content:      p.Content,
		SourceFields: p.SourceFields,
		Format:       p.Format,
		Dependencies: p.Dependencies,
		Reusable:     p.Reusable,
		Status:       p.Status,
		GeneratedBy:  p.GeneratedBy,
		CreatedAt:    time.Now().UTC(),
	}
	if text, ok := p.Content.(string); ok {
		// Rough approximation: one token per four characters.
		b.TokenCount = len(text) / 4
	}
	return b, nil
}

func validBlockType(t BlockType) bool {
	for _, v := range AllBlockTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Text returns the block's content as display text: the string itself for
// plain content, or the structure's formatted_text entry when present.
func (b *ContentBlock) Text() string {
	if b == nil {
		return ""
	}
	switch c := b.Content.(type) {
	case string:
		return c
	case map[string]any:
		if s, ok := c["formatted_text"].(string); ok {
			return s
		}
	}
	return ""
}

// StructuredContent returns the content as a string-keyed structure, or nil.
func (b *ContentBlock) StructuredContent() map[string]any {
	if b == nil {
		return nil
	}
	m, _ := b.Content.(map[string]any)
	return m
}

// BlockSet holds the content blocks produced by the block-generation step:
// one block per type, plus the per-question faq_answer blocks.
type BlockSet struct {
	Blocks     map[BlockType]*ContentBlock `json:"blocks"`
	FAQAnswers []*ContentBlock             `json:"faq_answers,omitempty"`
}

// Get returns the block for a type, or nil.
func (s *BlockSet) Get(t BlockType) *ContentBlock {
	if s == nil {
		return nil
	}
	return s.Blocks[t]
}

// TypesUsed lists the block kinds present, sorted, with "faq_answers"
// appended when answer blocks exist. Used for page metadata.
func (s *BlockSet) TypesUsed() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Blocks)+1)
	for t := range s.Blocks {
		out = append(out, string(t))
	}
	sort.Strings(out)
	if len(s.FAQAnswers) > 0 {
		out = append(out, "faq_answers")
	}
	return out
}
