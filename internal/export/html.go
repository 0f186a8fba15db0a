package export

import (
	"fmt"
	"html/template"
	"strings"

	"poddigest/internal/storage"
)

var htmlFuncs = template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}

var htmlTemplate = template.Must(template.New("digest").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Podcast Digest - {{.Date}}</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: 0.5rem; }
h2 { color: #444; margin-top: 2rem; }
blockquote { border-left: 3px solid #bbb; margin-left: 0; padding-left: 1rem; color: #555; }
.meta { color: #777; font-size: 0.9rem; }
.tags span { background: #eef; border-radius: 3px; padding: 0.1rem 0.4rem; margin-right: 0.3rem; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Podcast Digest - {{.Date}}</h1>
<p class="meta">{{.Total}} episode(s) processed.</p>
{{range .Groups}}
<h2>{{.Podcast}}</h2>
{{range .Summaries}}
<h3>{{.EpisodeTitle}}</h3>
{{if .Summary}}<p>{{.Summary}}</p>{{end}}
{{if .KeyTopics}}<p class="tags">{{range .KeyTopics}}<span>{{.}}</span>{{end}}</p>{{end}}
{{range .Quotes}}<blockquote>{{.}}</blockquote>{{end}}
{{if .Companies}}<p class="meta">Companies: {{join .Companies}}</p>{{end}}
{{end}}
{{end}}
</body>
</html>
`))

type htmlData struct {
	Date   string
	Total  int
	Groups []podcastGroup
}

func renderHTML(summaries []storage.Summary, date string) (string, error) {
	var b strings.Builder
	err := htmlTemplate.Execute(&b, htmlData{
		Date:   date,
		Total:  len(summaries),
		Groups: groupByPodcast(summaries),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render HTML digest: %w", err)
	}
	return b.String(), nil
}
