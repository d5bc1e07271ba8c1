package mcpserver

// MDCFormatContract describes the canonical MDC rule file format that
// LLM consumers should follow when creating or editing rules.
const MDCFormatContract = `# MDC Rule Format Contract

Every .mdc rule file MUST follow this structure.

## Structure

` + "```" + `markdown
---
description: One-line summary of the rule   # REQUIRED - keep under 200 characters
globs:                                      # REQUIRED - non-empty list of glob patterns
  - "**/*.py"
alwaysApply: false                          # REQUIRED - boolean
tags:                                       # OPTIONAL - list of lowercase tags
  - python
version: 1.0.0                              # OPTIONAL - MAJOR.MINOR.PATCH
author: ai-coding-rules-team                # OPTIONAL
---

# Rule Title

Rule body in standard Markdown.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The opening ` + "`" + `---` + "`" + ` must be the first
   thing in the file, with a matching closing ` + "`" + `---` + "`" + ` before the body.
2. **Required keys:** ` + "`" + `description` + "`" + ` (text), ` + "`" + `globs` + "`" + ` (non-empty list),
   ` + "`" + `alwaysApply` + "`" + ` (boolean). Type mismatches fail validation.
3. **File names** match ` + "`" + `NN-lowercase-hyphens.mdc` + "`" + ` inside a rules directory
   (two-digit prefix, lowercase alphanumerics and hyphens).
4. **Headings** stay at most four levels deep and never skip a level
   (an H1 followed directly by an H3 is an error).
5. **Code fences** carry a language tag, and rules include at least one
   example block annotated with ` + "`" + `// Good` + "`" + ` or ` + "`" + `// Bad` + "`" + ` comments.
6. **Concise variants** under ` + "`" + `.concise-rules/` + "`" + ` stay within 150 lines and
   should reduce content tokens by at least 70% versus the full rule.

## Example

` + "````" + `markdown
---
description: Python error handling conventions
globs:
  - "**/*.py"
alwaysApply: false
tags:
  - python
version: 1.0.0
---

# Python Error Handling

## Exceptions

` + "```" + `python
# Good
raise ValueError(f"invalid port: {port}")

# Bad
raise Exception("error")
` + "```" + `
` + "````" + `
`
