package api

import (
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

func openAPIPath() string {
	if p := os.Getenv("OPENAPI_PATH"); p != "" {
		return p
	}
	return "openapi/openapi.yaml"
}

func (s *Server) handleOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(openAPIPath())
	if err != nil {
		writeProblem(w, http.StatusNotFound, "spec not found", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

func (s *Server) handleOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(openAPIPath())
	if err != nil {
		writeProblem(w, http.StatusNotFound, "spec not found", err.Error())
		return
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		writeProblem(w, http.StatusInternalServerError, "spec unreadable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

const docsPage = `<!DOCTYPE html>
<html>
<head>
  <title>droneplan API</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>body { margin: 0; padding: 0; }</style>
</head>
<body>
  <redoc spec-url="/openapi.json"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(docsPage))
}
