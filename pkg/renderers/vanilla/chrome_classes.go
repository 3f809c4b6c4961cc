package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassContainer ChromeClass = "formpreview-container"
	ClassHeader    ChromeClass = "formpreview-header"
	ClassNotice    ChromeClass = "formpreview-notice"
	ClassForm      ChromeClass = "formpreview-form"
	ClassField     ChromeClass = "formpreview-field"
	ClassActions   ChromeClass = "formpreview-actions"
	ClassErrors    ChromeClass = "formpreview-errors"
)

// chromeClasses is exposed to form.tmpl as "classes".
func chromeClasses() map[string]string {
	return map[string]string{
		"container": string(ClassContainer),
		"header":    string(ClassHeader),
		"notice":    string(ClassNotice),
		"form":      string(ClassForm),
		"actions":   string(ClassActions),
		"errors":    string(ClassErrors),
	}
}
