package tool

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// KnowledgeBaseToolName is the name the knowledge-base tool is declared under.
const KnowledgeBaseToolName = "search_kb"

//go:embed kb.json
var defaultKnowledgeBase []byte

// Record is one question/answer entry of a knowledge base.
type Record struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// KnowledgeBase is a small, read-only question/answer corpus.
type KnowledgeBase struct {
	Records []Record `json:"records"`
}

// ParseKnowledgeBase decodes a {"records": [...]} document.
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("tool: parse knowledge base: %w", err)
	}
	return &kb, nil
}

// LoadKnowledgeBase reads a knowledge base from a JSON file.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tool: read knowledge base: %w", err)
	}
	return ParseKnowledgeBase(data)
}

// DefaultKnowledgeBase returns the built-in store policy corpus.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := ParseKnowledgeBase(defaultKnowledgeBase)
	if err != nil {
		panic(err)
	}
	return kb
}

// Lookup returns the whole corpus. The query is not used for filtering;
// selecting the relevant record is left to the model.
func (kb *KnowledgeBase) Lookup(string) *KnowledgeBase {
	return &KnowledgeBase{Records: slices.Clone(kb.Records)}
}

// SearchArgs are the arguments of the knowledge-base tool.
type SearchArgs struct {
	Question string `json:"question" jsonschema:"description=The user's question"`
}

// NewKnowledgeBaseTool returns the search_kb tool backed by kb.
func NewKnowledgeBaseTool(kb *KnowledgeBase) Registration {
	return Func(KnowledgeBaseToolName, "Get the answer to the user's question from the knowledge base.",
		func(_ context.Context, args SearchArgs) (*KnowledgeBase, error) {
			return kb.Lookup(args.Question), nil
		})
}
