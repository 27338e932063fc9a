package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 文件上传相关常量
const (
	MimeVideo = "video/"
	MimeImage = "image/"
)

var (
	AllowedStoryMediaExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".mp4", ".mov", ".webm"}
)
