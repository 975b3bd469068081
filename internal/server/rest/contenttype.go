package rest

import (
	"path"
	"strings"

	"github.com/dmitrijs2005/archdrive/internal/common"
)

// previewTypes is the fixed extension table used for inline previews. It is
// kept explicit so results do not depend on the host's mime database.
var previewTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"ico":  "image/x-icon",

	"txt":  "text/plain;charset=UTF-8",
	"md":   "text/markdown;charset=UTF-8",
	"json": "application/json;charset=UTF-8",
	"xml":  "application/xml;charset=UTF-8",
	"html": "text/html;charset=UTF-8",
	"htm":  "text/html;charset=UTF-8",
	"css":  "text/css;charset=UTF-8",
	"js":   "application/javascript;charset=UTF-8",
	"ts":   "application/typescript;charset=UTF-8",
	"java": "text/x-java-source;charset=UTF-8",
	"py":   "text/x-python;charset=UTF-8",
	"sql":  "application/sql;charset=UTF-8",
	"yaml": "application/x-yaml;charset=UTF-8",
	"yml":  "application/x-yaml;charset=UTF-8",

	"pdf": "application/pdf",

	"mp4":  "video/mp4",
	"webm": "video/webm",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"wmv":  "video/x-ms-wmv",

	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"aac":  "audio/aac",
	"flac": "audio/flac",
}

func previewContentType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ct, ok := previewTypes[ext]; ok {
		return ct
	}
	return common.DefaultContentType
}
