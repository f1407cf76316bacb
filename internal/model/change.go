package model

// EntryKind mirrors the ".tag" Dropbox reports for a list_folder entry.
type EntryKind string

const (
	EntryKindFile    EntryKind = "file"
	EntryKindFolder  EntryKind = "folder"
	EntryKindDeleted EntryKind = "deleted"
)

// ChangeEntry is one filesystem event from a list_folder page.
type ChangeEntry struct {
	Kind EntryKind
	Path string
}

func (e ChangeEntry) IsFile() bool {
	return e.Kind == EntryKindFile
}
