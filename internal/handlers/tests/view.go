package tests

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
)

// testsTable renders an assignment's test records as the same tabular
// view the grading UI scrapes; column order matters to its consumers.
var testsTable = template.Must(template.New("tests").Parse(`<table border="1">
<tr><th>ID</th><th>Name</th><th>Description</th><th>Command</th><th>Response Status</th><th>Response Body</th><th>Author</th><th>Public</th><th>Visibility</th><th>Is Default</th><th>Created At</th><th>Times Ran</th><th>Times Ran Successfully</th><th>Num Students Ran</th><th>Num Students Ran Successfully</th></tr>
{{range .}}<tr><td>{{.ID}}</td><td>{{.Name}}</td><td>{{.Description}}</td><td>{{.Command}}</td><td>{{.ExpectedStatus}}</td><td>{{.ExpectedBody}}</td><td>{{.Author}}</td><td>{{.Public}}</td><td>{{.Visibility}}</td><td>{{.IsDefault}}</td><td>{{.CreatedAt}}</td><td>{{.TimesRan}}</td><td>{{.TimesRanSuccessfully}}</td><td>{{.NumStudentsRan}}</td><td>{{.NumStudentsRanSuccessfully}}</td></tr>
{{end}}</table>
`))

// ViewTests renders all test records of one assignment as an HTML table
func (h *TestsHandler) ViewTests(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentName := vars["assignmentName"]

	tests, err := h.assignmentService.GetAllTests(r.Context(), assignmentName)
	if err != nil {
		h.logger.Error("Failed to fetch tests for view", "assignment", assignmentName, "error", err)
		http.Error(w, "Error fetching tests from database", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := testsTable.Execute(w, tests); err != nil {
		h.logger.Error("Failed to render tests view", "assignment", assignmentName, "error", err)
	}
}
