package archetype

// IssueAt creates an Issue at path whose message is err's text.
// Validators that build their own Issues use it to match what Cast reports.
func IssueAt(path, code string, err error) Issue {
	return Issue{Path: path, Code: code, Message: err.Error(), Cause: err}
}
