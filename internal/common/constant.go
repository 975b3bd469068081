package common

// FolderDelimiter separates folder segments inside object keys.
const FolderDelimiter = "/"

// DefaultContentType is stored when an upload does not declare one.
const DefaultContentType = "application/octet-stream"

// DirectoryContentType marks zero-byte folder placeholder objects.
const DirectoryContentType = "application/x-directory"
