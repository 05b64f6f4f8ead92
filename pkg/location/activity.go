package location

import (
	"strings"

	"github.com/tsawler/prose/v3"
)

// ActivityType identifies what kind of work an access was part of.
type ActivityType string

const (
	ActivityUnknown     ActivityType = "unknown"
	ActivityReading     ActivityType = "reading"
	ActivityWriting     ActivityType = "writing"
	ActivityDebugging   ActivityType = "debugging"
	ActivityRefactoring ActivityType = "refactoring"
	ActivityReviewing   ActivityType = "reviewing"
)

// InferenceSource records which signal produced an activity classification.
type InferenceSource string

const (
	SourceExplicit InferenceSource = "explicit"
	SourceKeyword  InferenceSource = "keyword"
	SourceTool     InferenceSource = "tool"
	SourceDefault  InferenceSource = "default"
)

// Inference confidence per source path
const (
	confidenceExplicit = 1.0
	confidenceKeyword  = 0.9
	confidenceTool     = 0.5
)

// ActivityInference is an activity classification with its provenance.
type ActivityInference struct {
	Type       ActivityType    `json:"type"`
	Confidence float64         `json:"confidence"`
	Source     InferenceSource `json:"source"`
}

// activityKeywords maps context tokens to activity types. Matching is
// case-insensitive over prose-tokenized context.
var activityKeywords = map[string]ActivityType{
	"read":    ActivityReading,
	"reading": ActivityReading,
	"view":    ActivityReading,
	"viewing": ActivityReading,
	"browse":  ActivityReading,
	"open":    ActivityReading,
	"inspect": ActivityReading,

	"write":     ActivityWriting,
	"writing":   ActivityWriting,
	"edit":      ActivityWriting,
	"editing":   ActivityWriting,
	"create":    ActivityWriting,
	"creating":  ActivityWriting,
	"implement": ActivityWriting,
	"add":       ActivityWriting,

	"debug":     ActivityDebugging,
	"debugging": ActivityDebugging,
	"fix":       ActivityDebugging,
	"fixing":    ActivityDebugging,
	"bug":       ActivityDebugging,
	"error":     ActivityDebugging,
	"crash":     ActivityDebugging,
	"trace":     ActivityDebugging,

	"refactor":    ActivityRefactoring,
	"refactoring": ActivityRefactoring,
	"rename":      ActivityRefactoring,
	"restructure": ActivityRefactoring,
	"cleanup":     ActivityRefactoring,
	"extract":     ActivityRefactoring,

	"review":    ActivityReviewing,
	"reviewing": ActivityReviewing,
	"approve":   ActivityReviewing,
	"comment":   ActivityReviewing,
	"diff":      ActivityReviewing,
}

// toolHints maps tool-name substrings to activity types, the weakest
// signal. Ordered so overlapping names resolve the same way every call.
var toolHints = []struct {
	hint     string
	activity ActivityType
}{
	{"write", ActivityWriting},
	{"edit", ActivityWriting},
	{"patch", ActivityWriting},
	{"debug", ActivityDebugging},
	{"test", ActivityDebugging},
	{"review", ActivityReviewing},
	{"lint", ActivityReviewing},
	{"read", ActivityReading},
	{"cat", ActivityReading},
	{"grep", ActivityReading},
	{"search", ActivityReading},
}

// InferActivityType classifies what the caller was doing at a location.
// Precedence: explicit caller value > keyword match in the context string >
// tool-name hint > Unknown. Confidence is fixed per path.
func InferActivityType(explicit ActivityType, context, toolName string) ActivityInference {
	if explicit != "" && explicit != ActivityUnknown {
		return ActivityInference{Type: explicit, Confidence: confidenceExplicit, Source: SourceExplicit}
	}

	if context != "" {
		for _, token := range tokenize(context) {
			if activity, ok := activityKeywords[token]; ok {
				return ActivityInference{Type: activity, Confidence: confidenceKeyword, Source: SourceKeyword}
			}
		}
	}

	if toolName != "" {
		toolLower := strings.ToLower(toolName)
		for _, h := range toolHints {
			if strings.Contains(toolLower, h.hint) {
				return ActivityInference{Type: h.activity, Confidence: confidenceTool, Source: SourceTool}
			}
		}
	}

	return ActivityInference{Type: ActivityUnknown, Source: SourceDefault}
}

// tokenize lowercases and splits the context string using the prose
// tokenizer, falling back to whitespace fields if tokenization fails.
func tokenize(context string) []string {
	doc, err := prose.NewDocument(context,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return strings.Fields(strings.ToLower(context))
	}

	tokens := doc.Tokens()
	result := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		result = append(result, strings.ToLower(tok.Text))
	}
	return result
}
