// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"text/template"
)

// synthesisPromptTmpl asks the composer for the review. Sources that
// returned nothing are listed in .Missing so the review says so.
var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`Generate a comprehensive literature review on {{.Topic}} based on the following sources:

{{.Web}}
{{.Preprints}}
{{.Trials}}
Please provide a well-structured literature review that:
1. Synthesizes the main findings and themes
2. Identifies key research directions
3. Includes proper citations with clickable links
4. Concludes with future research directions

Important links to include:
- ClinicalTrials.gov links with NCT IDs should use format: {{.LinkBase}}/ct2/show/NCTXXXXXXXX
- arXiv links for academic papers

For the References section, use these exact formats:
For arXiv papers: Author(s), "Title", [arXiv:XXXX.XXXXX](https://arxiv.org/abs/XXXX.XXXXX)
For clinical trials: "Title", [NCT ID: NCTXXXXXXXX]({{.LinkBase}}/ct2/show/NCTXXXXXXXX)

If no results were found in a particular source, please mention that in your review.
{{- range .Missing}}
No results were found in {{.}}.
{{- end}}
`))

type promptData struct {
	Topic     string
	Web       string
	Preprints string
	Trials    string
	LinkBase  string
	Missing   []string
}

// RenderPrompt builds the synthesis prompt from a review's records.
func RenderPrompt(topic string, rev Review, linkBase string) (string, error) {
	data := promptData{
		Topic:     topic,
		Web:       WebBlock(topic, rev.Web),
		Preprints: PreprintBlock(topic, rev.Preprints),
		Trials:    TrialBlock(topic, rev.Trials),
		LinkBase:  linkBase,
	}
	if len(rev.Web) == 0 {
		data.Missing = append(data.Missing, "Google search")
	}
	if len(rev.Preprints) == 0 {
		data.Missing = append(data.Missing, "arXiv")
	}
	if len(rev.Trials) == 0 {
		data.Missing = append(data.Missing, "ClinicalTrials.gov")
	}

	var buf bytes.Buffer
	if err := synthesisPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
