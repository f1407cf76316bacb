package model

import (
	"fmt"
	"regexp"
)

var sharedLinkPattern = regexp.MustCompile(`^https?://[\w/:%#$&?()~.=+\-]+`)

// ValidationError reports a value that failed a shape check.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// FileInfo is a changed file paired with the link that will be posted to Slack.
type FileInfo struct {
	Filepath   string
	SharedLink string
}

// NewFileInfo returns a *ValidationError when sharedLink does not start with a URL.
func NewFileInfo(filepath, sharedLink string) (FileInfo, error) {
	if !sharedLinkPattern.MatchString(sharedLink) {
		return FileInfo{}, &ValidationError{Field: "shared_link", Value: sharedLink}
	}
	return FileInfo{Filepath: filepath, SharedLink: sharedLink}, nil
}

// LinkToken renders the file as Slack link markup, showing the path as the link text.
func (f FileInfo) LinkToken() string {
	return "<" + f.SharedLink + "|" + f.Filepath + ">"
}
