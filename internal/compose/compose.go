// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose builds the natural-language instructions handed to the
// text-generation engine. Composition is pure: no side effects, no
// external calls, deterministic for a given input.
// Implements: prd002-composition (R1, R2, R3);
//
//	docs/ARCHITECTURE § Composition.
package compose

import (
	"bytes"
	"text/template"
)

// Mode selects the report shape.
type Mode string

const (
	// OnDemand is the detailed six-section report returned synchronously
	// from a direct request.
	OnDemand Mode = "on-demand"

	// Weekly is the condensed digest sent by the recurring scheduler.
	Weekly Mode = "weekly"
)

// promptInput carries the fields interpolated into the templates. Trends
// is embedded verbatim, error text included; the compositor performs no
// sanitization and trusts its caller for input hygiene.
type promptInput struct {
	Domain string
	Role   string
	Trends string
}

// onDemandTmpl is the six-section report instruction.
var onDemandTmpl = template.Must(template.New("on-demand").Parse(`You are a professional AI assistant. Generate a detailed, structured, and actionable intelligence report
for a professional who works as a **{{.Role}}** in the **{{.Domain}}** domain.

Include the following sections exactly as listed:

1. Current Trends and Updates
   - Incorporate these recent trends from the web:
   {{.Trends}}
   - Emerging technologies, tools, or methods affecting the domain.
   - Shifts in customer behavior, regulations, or market trends.

2. Role-Relevant Practices / Tools
   - Methods, frameworks, or workflows that improve productivity.
   - Software, platforms, or tools commonly adopted in the field.

3. AI & Automation Opportunities
   - Explain how AI or automation is being used to improve efficiency.
   - For every AI tool mentioned, provide:
     - Name of the tool
     - Detailed explanation of its function and purpose
     - A link where the user can try or explore the tool

4. Skills & Learning Paths
   - Core skills everyone in this domain should know.
   - Emerging skills that give an edge.
   - Suggested learning resources (courses, articles, tutorials).

5. Future Outlook
   - Trends that are likely to shape the domain in the next 1-5 years.
   - Opportunities and challenges to watch out for.

6. Actionable Insights
   - Concrete steps the user can take to stay ahead (learning, networking, experimenting).

Make the answer factual, insightful, easy to read, and professional.
Highlight AI tools clearly and explain their purpose in detail.
`))

// weeklyTmpl is the condensed digest instruction.
var weeklyTmpl = template.Must(template.New("weekly").Parse(`Generate a concise weekly intelligence update for a {{.Role}} in the {{.Domain}} domain.
Include:
- Key trends this week ({{.Trends}})
- New tools or frameworks
- Notable AI or automation use cases
- Skills or courses worth learning
`))

// Compose renders the prompt for one (domain, role, trends) tuple in the
// requested mode. Unknown modes render as OnDemand.
func Compose(domain, role, trends string, mode Mode) string {
	t := onDemandTmpl
	if mode == Weekly {
		t = weeklyTmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, promptInput{Domain: domain, Role: role, Trends: trends}); err != nil {
		// Static templates over plain string fields cannot fail to execute.
		panic(err)
	}
	return buf.String()
}
