package testutil

import (
	"fmt"
	"html"
)

// ErrorPageHTML generates the kind of HTML error page a document server or a
// proxy in front of it returns instead of a PDF.
func ErrorPageHTML(title, heading string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>%s</title>
</head>
<body>
	<h1>%s</h1>
	<p>The requested resource could not be delivered.</p>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(heading))
}

// PDFBody returns a small document whose bytes identify id.
func PDFBody(id int) []byte {
	return fmt.Appendf(nil, "%%PDF-1.4\n%% document %d\n%%%%EOF\n", id)
}
