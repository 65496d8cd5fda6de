// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// stageSpec binds a stage to its role instructions, sampling temperature,
// input template, and progress messages.
type stageSpec struct {
	stage        Stage
	instructions string
	temperature  float32
	input        *template.Template
	running      string
	done         string
}

// promptData is the data every input template executes against. Stage
// outputs not yet produced are left empty; renderInput fills only those a
// stage is allowed to read.
type promptData struct {
	Input     types.BriefInput
	Research  string
	Strategy  string
	Creative  string
	Compiled  string
	Reference string
}

const researchInstructions = `You are a senior market research analyst working to IPA (Institute of Practitioners in Advertising) best-practice standards.

Poor briefs with no strategic grounding waste a large share of advertising budgets. Your research gives the brief its grounding.

For the product or brand and campaign goal you are given, cover:

1. **Market Landscape**: current state of the market, size, growth, and key dynamics.
2. **Competitor Insights**: main competitors, their positioning, share of voice, and recent moves.
3. **Audience Demographics & Psychographics**: the likely target customers. The audience must differ meaningfully from the general population, be large enough to meet the objective, and be one the brand has a right to win.
4. **Cultural & Category Tensions**: cultural moments, category conventions worth challenging, and consumer pain points.
5. **Trends**: relevant industry, behavioural, or technology trends.

Establish the why before anyone considers the how. Be specific, evidence-based, and concise, and give each section a clear heading.`

const strategyInstructions = `You are a brand strategist at a leading advertising agency, trained in the IPA effectiveness framework and the BetterBriefs methodology.

Principles:
- Define the strategic problem before any tactics.
- The single-minded proposition is ONE key message. It is not a tagline and does not try to be creative; it points at where the creative answer lies. Support it with relevant proof points only.
- Make binary choices explicit: acquisition, upsell, or frequency.
- The audience is never "everyone". It must be distinct, sizeable, and winnable.
- Business, marketing, and communications objectives must be linked and logical.

From the research findings, produce:
1. **Why This Brief Exists**: the business problem or opportunity.
2. **Campaign Objective**: one clear, measurable objective.
3. **Target Audience**: a vivid portrait with demographics, psychographics, behaviours, media habits, and a day-in-the-life sketch.
4. **Insight**: the human truth that unlocks the creative opportunity.
5. **Single-Minded Proposition**: one compelling thought.
6. **Reasons to Believe**: two or three proof points supporting the proposition.
7. **Desired Response**: what the audience should think, feel, and do.
8. **Success Metrics**: three to five measurable KPIs tied to the objective.

Be decisive and specific. Avoid vague language.`

const creativeInstructions = `You are an award-winning creative director who works to IPA creative effectiveness evidence and Cannes Lions standards.

Principles:
- Creative quality is the biggest multiplier of business effect.
- Consistency across executions compounds performance.
- Memorable characters, storytelling, and distinctive brand assets drive long-term effect.
- Push the work up the Creative Ladder toward fame.
- Emotion beats information for long-term brand building.

From the strategic direction, produce:
1. **Tone & Voice**: personality, language style, emotional register.
2. **Visual Direction**: look and feel, palette, imagery, art direction, and brand assets to build.
3. **Tagline Options**: three to five campaign line candidates.
4. **The Big Idea**: one creative concept that brings the proposition to life in a fame-worthy way.
5. **Content Formats & Channels**: specific deliverables with rationale.
6. **Brand Guidelines Notes**: guardrails for consistency.

Be bold, original, and precise.`

const reviewInstructions = `You are a senior creative strategist and IPA Effectiveness Awards judge. You review creative briefs before they reach the creative team.

Evaluate against:
1. **Strategic Clarity**: one clear objective, strategy stated before tactics.
2. **Single-Minded Proposition**: one compelling thought, not a list and not a tagline.
3. **Target Audience**: vividly defined and distinct from the general population.
4. **Insight Quality**: a genuine human truth that opens a creative opportunity.
5. **Creative Ambition**: sets up award-worthy work and favours emotion for brand building.
6. **Clarity & Brevity**: clear, concise, jargon-free language.
7. **Measurability**: specific success metrics tied to the objective.
8. **Desired Response**: clear think, feel, and do.

Produce:
1. **Score**: overall quality from 0 to 100, written as "Score: N/100".
2. **IPA Checklist**: pass or fail for each criterion above.
3. **Strengths**: what works.
4. **Improvements**: specific changes needed.
5. **Revised Brief**: an improved version under a "## Revised Brief" heading.

The revised brief must tighten the language, sharpen the proposition, and close any gaps.`

var compileInstructionsTmpl = template.Must(template.New("compile-instructions").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`You are a senior account director who assembles creative briefs to IPA best-practice standards.

- A brief is a roadmap for creative thinking, not a shopping list.
- Use clear, simple language.
- Focus on ONE problem or opportunity.
- The Single-Minded Proposition is the heart of the brief.

The brief MUST use exactly these sections, in this order, each as a level-two Markdown heading ("## Section"):

{{range $i, $s := .}}{{inc $i}}. {{$s.Title}}
{{end}}
Write "Not specified" under Budget & Timing Notes when no budget or timing is known. Write in professional, jargon-free language; the brief should be ready to hand to a creative team.`))

var researchInputTmpl = template.Must(template.New("research").Parse(`Please conduct background research for the following creative brief:

Product / Brand: {{.Input.Subject}}
Campaign Goal: {{.Input.Goal}}
{{- with .Input.Sector}}
Industry: {{.}}
{{- end}}
{{- with .Input.Notes}}
Additional Context: {{.}}
{{- end}}
{{- with .Reference}}

--- REFERENCE: AWARD-WINNING CAMPAIGN INSIGHTS ---
Use the following insights from Cannes Lions award-winning campaigns as inspiration and benchmarks:

{{.}}
{{- end}}`))

var strategyInputTmpl = template.Must(template.New("strategy").Parse(`Campaign Goal: {{.Input.Goal}}

Research Findings:
{{.Research}}

Based on the above research, define the strategic direction for this creative brief following IPA best-practice standards.
{{- with .Reference}}

--- REFERENCE: AWARD-WINNING STRATEGY EXAMPLES ---
Draw on these Cannes Lions-winning strategic approaches as benchmarks:

{{.}}
{{- end}}`))

var creativeInputTmpl = template.Must(template.New("creative").Parse(`Brand / Product: {{.Input.Subject}}

Strategic Direction:
{{.Strategy}}

Develop the creative direction for this campaign.
{{- with .Reference}}

--- REFERENCE: CANNES LIONS AWARD-WINNING CREATIVE ---
Use these award-winning creative approaches as inspiration and benchmarks for the calibre of work expected:

{{.}}
{{- end}}`))

var compileInputTmpl = template.Must(template.New("compile").Parse(`Brand / Product: {{.Input.Subject}}
Campaign Goal: {{.Input.Goal}}

--- RESEARCH ---
{{.Research}}

--- STRATEGY ---
{{.Strategy}}

--- CREATIVE DIRECTION ---
{{.Creative}}

Compile these inputs into a polished, professional creative brief following the IPA-standard structure.`))

var reviewInputTmpl = template.Must(template.New("review").Parse(`Please review and improve the following creative brief against IPA best-practice standards:

{{.Compiled}}
{{- with .Reference}}

--- REFERENCE: CANNES LIONS BENCHMARKS ---
Compare the brief against these award-winning examples for quality calibration:

{{.}}
{{- end}}`))

// stageSpecs is the fixed run order. It must match Stages.
var stageSpecs = []stageSpec{
	{
		stage:        StageResearch,
		instructions: researchInstructions,
		temperature:  0.7,
		input:        researchInputTmpl,
		running:      "Gathering market context, competitors, audience data...",
		done:         "Research complete",
	},
	{
		stage:        StageStrategy,
		instructions: strategyInstructions,
		temperature:  0.7,
		input:        strategyInputTmpl,
		running:      "Defining objectives, insight, single-minded proposition...",
		done:         "Strategy complete",
	},
	{
		stage:        StageCreative,
		instructions: creativeInstructions,
		temperature:  0.9,
		input:        creativeInputTmpl,
		running:      "Shaping the big idea, tone, visuals, taglines...",
		done:         "Creative direction complete",
	},
	{
		stage:        StageCompile,
		instructions: mustRender(compileInstructionsTmpl, BriefSections),
		temperature:  0.5,
		input:        compileInputTmpl,
		running:      "Assembling the IPA-standard creative brief...",
		done:         "Brief compiled",
	},
	{
		stage:        StageReview,
		instructions: reviewInstructions,
		temperature:  0.4,
		input:        reviewInputTmpl,
		running:      "Evaluating against IPA criteria and Cannes benchmarks...",
		done:         "Review complete",
	},
}

// renderInput builds the user content for spec from the caller's input, the
// outputs of earlier stages, and the stage's reference.
func renderInput(spec stageSpec, in types.BriefInput, outputs *Outputs, ref Reference) (string, error) {
	data := promptData{Input: in, Reference: referenceText(ref)}

	var err error
	switch spec.stage {
	case StageStrategy:
		data.Research, err = outputs.require(StageResearch)
	case StageCreative:
		data.Strategy, err = outputs.require(StageStrategy)
	case StageCompile:
		if data.Research, err = outputs.require(StageResearch); err != nil {
			break
		}
		if data.Strategy, err = outputs.require(StageStrategy); err != nil {
			break
		}
		data.Creative, err = outputs.require(StageCreative)
	case StageReview:
		data.Compiled, err = outputs.require(StageCompile)
	}
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := spec.input.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s input: %w", spec.stage, err)
	}
	return buf.String(), nil
}

func mustRender(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}
