package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/job-harvester/internal/prompts"
)

// ExtractionSchema describes a JSON object the model should extract from text.
type ExtractionSchema struct {
	Name        string
	Description string // task preamble
	Fields      []SchemaField
}

// SchemaField is one key of the expected JSON output.
type SchemaField struct {
	Name        string
	Type        string // type hint shown to the model, e.g. `["string"]`
	Description string
	Required    bool
}

// BuildExtractionPrompt renders schema and inputText into a single prompt.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		fmt.Fprintf(&sb, "  %q: %s%s", field.Name, typeHint, requiredHint)
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// SkillsSchema asks for the key skills named in a job description.
func SkillsSchema(maxSkills int) ExtractionSchema {
	template := prompts.MustGet(prompts.ExtractSkills)
	return ExtractionSchema{
		Name: "JobSkills",
		Description: prompts.Format(template, map[string]string{
			"MaxSkills": strconv.Itoa(maxSkills),
		}),
		Fields: []SchemaField{
			{
				Name:        "skills",
				Type:        `["string"]`,
				Description: "skill names, most important first",
				Required:    true,
			},
		},
	}
}
