package smbproto

// FileAttributes is the [MS-FSCC] 2.6 FileAttributes bitfield reported by
// SMB2 QUERY_INFO responses. SMB2Collaborator derives smbclient.Info.IsHidden
// from this field.
type FileAttributes uint32

const (
	FileAttributeReadonly FileAttributes = 0x00000001
	FileAttributeHidden   FileAttributes = 0x00000002
	FileAttributeSystem   FileAttributes = 0x00000004
	FileAttributeDirectory FileAttributes = 0x00000010
	FileAttributeArchive  FileAttributes = 0x00000020
	FileAttributeNormal   FileAttributes = 0x00000080
	FileAttributeReparsePoint FileAttributes = 0x00000400
)

// IsDirectory reports whether the directory bit is set.
func (a FileAttributes) IsDirectory() bool {
	return a&FileAttributeDirectory != 0
}

// IsHidden reports whether the hidden bit is set.
func (a FileAttributes) IsHidden() bool {
	return a&FileAttributeHidden != 0
}

// IsReadonly reports whether the read-only bit is set.
func (a FileAttributes) IsReadonly() bool {
	return a&FileAttributeReadonly != 0
}
