package render

import "html/template"

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("bibliography").Parse(htmlTemplate))
}

// templateData holds data for the HTML template.
type templateData struct {
	Locale        string
	Title         string
	Subtitle      string
	HeadingLines  []string
	Stylesheet    string
	Items         []item
	TotalItems    int
	CitationStyle string
	GeneratedAt   string
}

// item is one rendered bibliography entry.
type item struct {
	Key      string
	Title    string
	Citation template.HTML
	Fallback bool
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="{{.Locale}}">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
{{- if .Stylesheet}}
    <link rel="stylesheet" href="{{.Stylesheet}}">
{{- end}}
</head>
<body>
    <h1>{{range $i, $line := .HeadingLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</h1>
{{- if .Subtitle}}

    <h2>{{.Subtitle}}</h2>
{{- end}}

    <div class="bibliography">
{{- range .Items}}
        <div class="bibliography-item{{if .Fallback}} fallback{{end}}" data-key="{{.Key}}">
            <span class="citation">{{.Citation}}</span>
        </div>
{{- end}}
    </div>

    <div class="footer">
        <p>Generated on {{.GeneratedAt}} | {{.TotalItems}} items | {{.CitationStyle}} style</p>
    </div>
</body>
</html>
`
