package layout

import (
	"fmt"
	"html/template"
	"io"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"></script>
</head>
<body>
{{template "node" .Root}}
<script>
const placeholders = {{.Placeholders}};
</script>
</body>
</html>
{{define "node"}}
{{- if eq .Kind "container"}}<div class="{{.Class}}">{{range .Children}}{{template "node" .}}{{end}}</div>
{{- else if eq .Kind "heading"}}<h4 class="{{.Class}}">{{.Text}}</h4>
{{- else if eq .Kind "dropdown"}}<select id="{{.ID}}" class="{{.Class}}">{{$v := .Value}}{{range .Options}}<option value="{{.Value}}"{{if eq .Value $v}} selected{{end}}>{{.Label}}</option>{{end}}</select>
{{- else if eq .Kind "title"}}<h5 id="{{.ID}}"{{if .Tooltip}} title="{{.Tooltip}}"{{end}}>{{.Text}}</h5>
{{- else if eq .Kind "placeholder"}}<div id="{{.ID}}"{{if .Class}} class="{{.Class}}"{{end}}{{if .Loading}} data-loading="circle"{{end}}></div>
{{- end}}
{{- end}}`))

// WriteHTML renders a minimal page shell for the tree.
func WriteHTML(w io.Writer, title string, root Node) error {
	err := page.Execute(w, struct {
		Title        string
		Root         Node
		Placeholders []string
	}{title, root, Placeholders(root)})
	if err != nil {
		return fmt.Errorf("layout html: %w", err)
	}
	return nil
}
