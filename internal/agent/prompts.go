package agent

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/inspector/internal/defects"
)

// Stage identifies a capability call that carries its own instructions.
type Stage string

// Capability stages.
const (
	StageClassifyText  Stage = "classify_text"
	StageClassifyImage Stage = "classify_image"
	StageSummarize     Stage = "summarize"
)

const classifyTextInstructions = `You are a building inspector reviewing a single inspection note.

Assign the one defect category from the allowed list that best describes the note. Choose "none" when the note describes no defect or when no listed category fits. Never invent a category that is not in the list.`

const classifyImageInstructions = `You are a building inspector reviewing a single inspection photograph.

Identify every defect category from the allowed list that is clearly visible. Choose "none" only when no listed defect is visible. Never invent a category that is not in the list.`

const summarizeInstructions = `You are a building inspector writing a plain-language summary for a property owner.

Use only the facts provided. Always state the risk category and name the most severe defects first.`

const classifyTextFormat = `Respond with a JSON object matching this exact structure:

{
  "category": "<category>",
  "confidence": <number between 0 and 1>
}

Always respond with valid JSON, no markdown fencing.`

const classifyImageFormat = `Respond with a JSON object matching this exact structure:

{
  "labels": [
    {"category": "<category>", "confidence": <number between 0 and 1>}
  ]
}

List each category at most once. Always respond with valid JSON, no markdown fencing.`

var instructions = map[Stage]string{
	StageClassifyText:  classifyTextInstructions,
	StageClassifyImage: classifyImageInstructions,
	StageSummarize:     summarizeInstructions,
}

var responseFormats = map[Stage]string{
	StageClassifyText:  classifyTextFormat,
	StageClassifyImage: classifyImageFormat,
}

// SystemPrompt composes the instructions and response format for stage with the allowed
// vocabulary.
func SystemPrompt(stage Stage, vocabulary []defects.Category) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", fmt.Errorf("unknown stage %q", stage)
	}

	var b strings.Builder
	b.WriteString(text)

	if len(vocabulary) > 0 {
		b.WriteString("\n\nAllowed categories:\n")
		for _, c := range vocabulary {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if format, ok := responseFormats[stage]; ok {
		b.WriteString("\n")
		b.WriteString(format)
	}

	return b.String(), nil
}
