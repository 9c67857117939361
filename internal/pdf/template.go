package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/kemalcalak/Resume-Builder/internal/database"
)

const fallbackThemeColor = "#e11d48"

var resumeTemplate = template.Must(template.New("resume").Funcs(template.FuncMap{
	"month":    formatMonth,
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	"safeCSS":  func(s string) template.CSS { return template.CSS(s) },
}).Parse(resumeHTML))

// The CSP keeps the page offline: rich text from the editor can carry markup,
// but nothing may load or execute while Chromium prints it.
const resumeHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta http-equiv="Content-Security-Policy" content="default-src 'none'; style-src 'unsafe-inline'; img-src data:">
<title>{{.Doc.Title}}</title>
<style>
  @page { size: A4; margin: 14mm 16mm; }
  body { margin: 0; font-family: Helvetica, Arial, sans-serif; font-size: 10.5pt; color: #1f2937; }
  .sheet { border-top: 6px solid {{.Theme | safeCSS}}; padding-top: 12px; }
  h1 { margin: 0; text-align: center; font-size: 20pt; color: {{.Theme | safeCSS}}; }
  .job { text-align: center; font-weight: 600; margin: 2px 0 6px; }
  .contact { display: flex; justify-content: space-between; flex-wrap: wrap; font-size: 9pt; color: {{.Theme | safeCSS}}; }
  .contact span { margin-right: 8px; }
  section { margin-top: 12px; page-break-inside: avoid; }
  h2 { margin: 0; font-size: 11.5pt; color: {{.Theme | safeCSS}}; }
  hr { border: 0; border-top: 1.5px solid {{.Theme | safeCSS}}; margin: 2px 0 6px; }
  .row { display: flex; justify-content: space-between; }
  .title { font-weight: 700; color: {{.Theme | safeCSS}}; }
  .muted { color: #4b5563; font-size: 9.5pt; }
  .rich ul { margin: 4px 0 8px 18px; padding: 0; }
</style>
</head>
<body>
<div class="sheet">
{{with .Doc.PersonalInfo}}
  <h1>{{.FirstName}} {{.LastName}}</h1>
  {{if .JobTitle}}<div class="job">{{.JobTitle}}</div>{{end}}
  <div class="contact">
    {{if .Address}}<span>{{.Address}}</span>{{end}}
    {{if .Phone}}<span>{{.Phone}}</span>{{end}}
    {{if .Email}}<span>{{.Email}}</span>{{end}}
    {{if .Website}}<span>{{.Website}}</span>{{end}}
    {{if .Linkedin}}<span>{{.Linkedin}}</span>{{end}}
    {{if .Github}}<span>{{.Github}}</span>{{end}}
    {{if .Medium}}<span>{{.Medium}}</span>{{end}}
  </div>
{{else}}
  <h1>{{.Doc.Title}}</h1>
{{end}}

{{if .Doc.Summary}}
<section><h2>Summary</h2><hr><div>{{.Doc.Summary}}</div></section>
{{end}}

{{if .Doc.Experiences}}
<section><h2>Experience</h2><hr>
{{range .Doc.Experiences}}
  <div class="row"><span class="title">{{.Title}}</span><span class="muted">{{.City}}{{if and .City .State}} - {{end}}{{.State}}</span></div>
  <div class="row"><span class="muted">{{.CompanyName}}</span>
    <span class="muted">{{month .StartDate}}{{if .StartDate}} - {{end}}{{if .CurrentlyWorking}}Present{{else}}{{month .EndDate}}{{end}}</span></div>
  <div class="rich">{{safeHTML .WorkSummary}}</div>
{{end}}
</section>
{{end}}

{{if .Doc.Projects}}
<section><h2>Projects</h2><hr>
{{range .Doc.Projects}}
  <div class="row"><span class="title">{{.ProjectName}}</span>
    <span class="muted">{{month .StartDate}}{{if and .StartDate .EndDate}} - {{end}}{{month .EndDate}}</span></div>
  <div class="rich">{{safeHTML .ProjectSummary}}</div>
{{end}}
</section>
{{end}}

{{if .Doc.Educations}}
<section><h2>Education</h2><hr>
{{range .Doc.Educations}}
  <div class="row"><span class="title">{{.UniversityName}}</span>
    <span class="muted">{{month .StartDate}}{{if and .StartDate .EndDate}} - {{end}}{{month .EndDate}}</span></div>
  <div class="muted">{{.Degree}}{{if and .Degree .Major}} - {{end}}{{.Major}}</div>
  <div class="rich">{{safeHTML .Description}}</div>
{{end}}
</section>
{{end}}

{{if .Doc.Certificates}}
<section><h2>Certificates</h2><hr>
{{range .Doc.Certificates}}
  <div class="row"><span class="title">{{.CertificateName}}</span><span class="muted">{{month .IssueDate}}</span></div>
  <div class="muted">{{.WhoGave}}{{if and .WhoGave .Teacher}} - {{end}}{{.Teacher}}</div>
{{end}}
</section>
{{end}}
</div>
</body>
</html>`

// RenderDocumentHTML renders the printable resume page for doc.
func RenderDocumentHTML(doc *database.Document) (string, error) {
	theme := doc.ThemeColor
	if !isHexColor(theme) {
		theme = fallbackThemeColor
	}

	var buf bytes.Buffer
	err := resumeTemplate.Execute(&buf, struct {
		Doc   *database.Document
		Theme string
	}{Doc: doc, Theme: theme})
	if err != nil {
		return "", fmt.Errorf("render resume template: %w", err)
	}
	return buf.String(), nil
}

// formatMonth prints ISO dates as "Jan 2022"; anything else is shown verbatim.
func formatMonth(v string) string {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return v
	}
	return t.Format("Jan 2006")
}

func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
