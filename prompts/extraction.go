package prompts

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// ExtractionOutputShape is injected as {output_shape}; FString templates
// cannot carry literal braces.
const ExtractionOutputShape = `{
  "prompts": [
    {
      "title": "short descriptive title",
      "content": "the complete prompt text, verbatim",
      "category": "one of: writing, coding, analysis, roleplay, productivity, education, marketing, creative, system, other",
      "quality": 8
    }
  ],
  "analysis": {
    "summary": "one sentence describing the source",
    "relevance": 7,
    "language": "ISO 639-1 code of the prompts, e.g. en"
  }
}`

// Extraction finds reusable LLM prompts in one crawled post or repository.
// Variables: output_shape, content.
func Extraction() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(`# Your Role
You are an expert prompt engineer who curates a library of reusable LLM prompts.

# Your Task
Read the content of a forum post or code repository and extract every complete prompt it contains that someone could copy and use directly.

# Quality Rubric
Rate each prompt from 0 to 10:
- **10**: professional, complete and directly usable as is
- **7-9**: high quality with a clear goal
- **4-6**: usable but needs improvement
- **1-3**: low quality, vague or fragmentary

# Critical Requirements
1. **Verbatim**: Copy prompt text exactly; do not rewrite or merge prompts
2. **No Invention**: If the content holds no usable prompt, return an empty "prompts" array
3. **Output Format**: Return ONLY a JSON object with this exact shape:

{output_shape}

**IMPORTANT**: No explanations, no markdown code fences, no additional text.`),
		schema.UserMessage(`**Source Content**:
{content}

Extract the prompts and return the JSON object only.`),
	)
}
