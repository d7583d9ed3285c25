package report

import "strings"

// Filename returns the download name for a report dated date
func Filename(date string) string {
	return "medical_report_" + strings.ReplaceAll(date, "/", "-") + ".pdf"
}
